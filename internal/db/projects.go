package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/tgienger/tasknest/internal/models"
	"go.uber.org/zap"
)

const projectColumns = "id, name, description, start_date, end_date, status, color, created_at"

// ProjectRepo stores projects
type ProjectRepo struct {
	executor
}

func NewProjectRepo(db *DB) *ProjectRepo {
	return &ProjectRepo{executor{db: db}}
}

func (r *ProjectRepo) WithTx(tx *sqlx.Tx) *ProjectRepo {
	return &ProjectRepo{executor{db: r.db, tx: tx}}
}

// Insert creates a project. An empty status defaults to not_started.
func (r *ProjectRepo) Insert(ctx context.Context, p models.Project) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if p.Status == "" {
		p.Status = models.ProjectNotStarted
	}

	res, err := r.q().ExecContext(ctx, `
		INSERT INTO projects (name, description, start_date, end_date, status, color, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Name, p.Description, p.StartDate, p.EndDate, p.Status, p.Color, r.db.timestamp())
	if err != nil {
		return Result{}, r.db.fail("insert", "project", err)
	}

	out, err := insertResult(res)
	if err != nil {
		return Result{}, r.db.fail("insert", "project", err)
	}
	return out, nil
}

// GetAll returns all projects, newest first
func (r *ProjectRepo) GetAll(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	err := sqlx.SelectContext(ctx, r.q(), &projects,
		"SELECT "+projectColumns+" FROM projects ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, r.db.fail("get all", "project", err)
	}
	return projects, nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	projects := []models.Project{}
	err := sqlx.SelectContext(ctx, r.q(), &projects,
		"SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	if err != nil {
		return nil, r.db.fail("get", "project", err, zap.Int64("id", id))
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("project %d: %w", id, models.ErrNotFound)
	}
	return &projects[0], nil
}

func (r *ProjectRepo) Update(ctx context.Context, id int64, patch models.ProjectPatch) (int64, error) {
	var a assignments
	set(&a, "name", patch.Name)
	setNullable(&a, "description", patch.Description)
	setNullable(&a, "start_date", patch.StartDate)
	setNullable(&a, "end_date", patch.EndDate)
	set(&a, "status", patch.Status)
	setNullable(&a, "color", patch.Color)

	if a.empty() {
		return 0, models.ErrNoFieldsToUpdate
	}
	if err := patch.Validate(); err != nil {
		return 0, err
	}

	query, args := a.statement("projects", id)
	res, err := r.q().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, r.db.fail("update", "project", err, zap.Int64("id", id))
	}
	return res.RowsAffected()
}

// Delete clears project_id on the project's tasks, then deletes the project.
// Both happen or neither does.
func (r *ProjectRepo) Delete(ctx context.Context, id int64) (int64, error) {
	return deleteNullifying(ctx, r.executor, "project", "projects", "project_id", id)
}

// Progress averages the effective completion of the project's tasks. It is
// computed on read and never stored.
func (r *ProjectRepo) Progress(ctx context.Context, id int64) (int, error) {
	tasks, err := (&TaskRepo{r.executor}).GetByProject(ctx, id)
	if err != nil {
		return 0, err
	}
	return AggregateCompletion(tasks), nil
}
