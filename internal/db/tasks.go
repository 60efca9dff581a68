package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/tgienger/tasknest/internal/models"
	"go.uber.org/zap"
)

const taskColumns = `id, title, description, due_date, priority, status, created_at,
	category_id, project_id, parent_task_id,
	COALESCE(completion_percentage, 0) AS completion_percentage`

// TaskRepo stores tasks
type TaskRepo struct {
	executor
}

func NewTaskRepo(db *DB) *TaskRepo {
	return &TaskRepo{executor{db: db}}
}

// WithTx returns a repository that runs every statement on tx
func (r *TaskRepo) WithTx(tx *sqlx.Tx) *TaskRepo {
	return &TaskRepo{executor{db: r.db, tx: tx}}
}

// Insert creates a task. Only title, description, due_date, priority, status,
// created_at and category_id are written; project and parent links are set
// with a follow-up Update.
func (r *TaskRepo) Insert(ctx context.Context, t models.NewTask) (Result, error) {
	if err := t.Validate(); err != nil {
		return Result{}, err
	}

	res, err := r.q().ExecContext(ctx, `
		INSERT INTO tasks (title, description, due_date, priority, status, created_at, category_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.Title, t.Description, t.DueDate, t.Priority, t.Status, r.db.timestamp(), t.CategoryID)
	if err != nil {
		return Result{}, r.db.fail("insert", "task", err)
	}

	out, err := insertResult(res)
	if err != nil {
		return Result{}, r.db.fail("insert", "task", err)
	}
	return out, nil
}

// GetAll returns every task, newest first
func (r *TaskRepo) GetAll(ctx context.Context) ([]models.Task, error) {
	return r.list(ctx, "get all", `
		SELECT `+taskColumns+` FROM tasks
		ORDER BY created_at DESC, id DESC
	`)
}

// GetByID returns the task or an error wrapping models.ErrNotFound
func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	tasks, err := r.list(ctx, "get", `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	return &tasks[0], nil
}

// Update writes the fields set in patch and returns the number of rows changed
func (r *TaskRepo) Update(ctx context.Context, id int64, patch models.TaskPatch) (int64, error) {
	var a assignments
	set(&a, "title", patch.Title)
	setNullable(&a, "description", patch.Description)
	setNullable(&a, "due_date", patch.DueDate)
	set(&a, "priority", patch.Priority)
	set(&a, "status", patch.Status)
	setNullable(&a, "category_id", patch.CategoryID)
	setNullable(&a, "project_id", patch.ProjectID)
	setNullable(&a, "parent_task_id", patch.ParentTaskID)
	set(&a, "completion_percentage", patch.CompletionPercentage)

	if a.empty() {
		return 0, models.ErrNoFieldsToUpdate
	}
	if err := patch.Validate(); err != nil {
		return 0, err
	}
	if patch.ParentTaskID != nil && !patch.ParentTaskID.Null && patch.ParentTaskID.Value == id {
		return 0, fmt.Errorf("%w: task cannot be its own parent", models.ErrValidation)
	}

	query, args := a.statement("tasks", id)
	return r.exec(ctx, "update", id, query, args...)
}

// Delete removes a task. Its tag associations go with it (tag usage counts are
// decremented) and its subtasks are detached rather than deleted.
func (r *TaskRepo) Delete(ctx context.Context, id int64) (int64, error) {
	var deleted int64
	err := r.atomic(ctx, func(q sqlx.ExtContext) error {
		steps := []string{
			`UPDATE tags SET usage_count = MAX(usage_count - 1, 0)
			 WHERE id IN (SELECT tag_id FROM task_tags WHERE task_id = ?)`,
			`DELETE FROM task_tags WHERE task_id = ?`,
			`UPDATE tasks SET parent_task_id = NULL WHERE parent_task_id = ?`,
		}
		for _, stmt := range steps {
			if _, err := q.ExecContext(ctx, stmt, id); err != nil {
				return r.db.fail("delete", "task", err, zap.Int64("id", id))
			}
		}

		res, err := q.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
		if err != nil {
			return r.db.fail("delete", "task", err, zap.Int64("id", id))
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Search matches text against title or description, newest first
func (r *TaskRepo) Search(ctx context.Context, text string) ([]models.Task, error) {
	pattern := "%" + text + "%"
	return r.list(ctx, "search", `
		SELECT `+taskColumns+` FROM tasks
		WHERE title LIKE ? OR description LIKE ?
		ORDER BY created_at DESC, id DESC
	`, pattern, pattern)
}

func (r *TaskRepo) GetByCategory(ctx context.Context, categoryID int64) ([]models.Task, error) {
	return r.list(ctx, "get by category", `
		SELECT `+taskColumns+` FROM tasks
		WHERE category_id = ?
		ORDER BY created_at DESC, id DESC
	`, categoryID)
}

func (r *TaskRepo) GetByProject(ctx context.Context, projectID int64) ([]models.Task, error) {
	return r.list(ctx, "get by project", `
		SELECT `+taskColumns+` FROM tasks
		WHERE project_id = ?
		ORDER BY created_at DESC, id DESC
	`, projectID)
}

// GetByTag returns the tasks associated with a tag
func (r *TaskRepo) GetByTag(ctx context.Context, tagID int64) ([]models.Task, error) {
	return r.list(ctx, "get by tag", `
		SELECT t.id, t.title, t.description, t.due_date, t.priority, t.status, t.created_at,
			t.category_id, t.project_id, t.parent_task_id,
			COALESCE(t.completion_percentage, 0) AS completion_percentage
		FROM tasks t
		JOIN task_tags tt ON t.id = tt.task_id
		WHERE tt.tag_id = ?
		ORDER BY t.created_at DESC, t.id DESC
	`, tagID)
}

// GetSubtasks returns the immediate subtasks of a task in creation order
func (r *TaskRepo) GetSubtasks(ctx context.Context, parentID int64) ([]models.Task, error) {
	return r.list(ctx, "get subtasks", `
		SELECT `+taskColumns+` FROM tasks
		WHERE parent_task_id = ?
		ORDER BY created_at ASC, id ASC
	`, parentID)
}

// UpdateCompletion stores a completion percentage and nothing else; it never
// recomputes parents.
func (r *TaskRepo) UpdateCompletion(ctx context.Context, id int64, pct int) (int64, error) {
	if err := models.ValidateCompletion(pct); err != nil {
		return 0, err
	}
	return r.exec(ctx, "update completion", id,
		"UPDATE tasks SET completion_percentage = ? WHERE id = ?", pct, id)
}

// UpdateCategory sets or clears (nil) the task's category
func (r *TaskRepo) UpdateCategory(ctx context.Context, taskID int64, categoryID *int64) (int64, error) {
	return r.exec(ctx, "update category", taskID,
		"UPDATE tasks SET category_id = ? WHERE id = ?", categoryID, taskID)
}

// UpdateProject sets or clears (nil) the task's project
func (r *TaskRepo) UpdateProject(ctx context.Context, taskID int64, projectID *int64) (int64, error) {
	return r.exec(ctx, "update project", taskID,
		"UPDATE tasks SET project_id = ? WHERE id = ?", projectID, taskID)
}

// Stats counts tasks by status and priority
func (r *TaskRepo) Stats(ctx context.Context) (models.TaskStats, error) {
	var rows []struct {
		Status   models.TaskStatus `db:"status"`
		Priority models.Priority   `db:"priority"`
		N        int               `db:"n"`
	}
	err := sqlx.SelectContext(ctx, r.q(), &rows, `
		SELECT status, priority, COUNT(*) AS n FROM tasks GROUP BY status, priority
	`)
	if err != nil {
		return models.TaskStats{}, r.db.fail("stats", "task", err)
	}

	stats := models.TaskStats{ByPriority: map[models.Priority]int{}}
	for _, row := range rows {
		stats.Total += row.N
		stats.ByPriority[row.Priority] += row.N
		if row.Status == models.StatusCompleted {
			stats.Completed += row.N
		} else {
			stats.Pending += row.N
		}
	}
	return stats, nil
}

func (r *TaskRepo) list(ctx context.Context, op, query string, args ...any) ([]models.Task, error) {
	tasks := []models.Task{}
	if err := sqlx.SelectContext(ctx, r.q(), &tasks, query, args...); err != nil {
		return nil, r.db.fail(op, "task", err)
	}
	return tasks, nil
}

func (r *TaskRepo) exec(ctx context.Context, op string, id int64, query string, args ...any) (int64, error) {
	res, err := r.q().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, r.db.fail(op, "task", err, zap.Int64("id", id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, r.db.fail(op, "task", err, zap.Int64("id", id))
	}
	return n, nil
}
