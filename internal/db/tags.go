package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/tgienger/tasknest/internal/models"
	"go.uber.org/zap"
)

const tagColumns = "id, name, color, usage_count"

// TagRepo stores tags and their task associations
type TagRepo struct {
	executor
}

func NewTagRepo(db *DB) *TagRepo {
	return &TagRepo{executor{db: db}}
}

func (r *TagRepo) WithTx(tx *sqlx.Tx) *TagRepo {
	return &TagRepo{executor{db: r.db, tx: tx}}
}

// Insert creates a tag with a zero usage count
func (r *TagRepo) Insert(ctx context.Context, t models.Tag) (Result, error) {
	if err := t.Validate(); err != nil {
		return Result{}, err
	}

	res, err := r.q().ExecContext(ctx,
		"INSERT INTO tags (name, color, usage_count) VALUES (?, ?, 0)", t.Name, t.Color)
	if err != nil {
		return Result{}, r.db.fail("insert", "tag", err)
	}

	out, err := insertResult(res)
	if err != nil {
		return Result{}, r.db.fail("insert", "tag", err)
	}
	return out, nil
}

// GetAll returns all tags ordered by name
func (r *TagRepo) GetAll(ctx context.Context) ([]models.Tag, error) {
	return r.list(ctx, "get all", "SELECT "+tagColumns+" FROM tags ORDER BY name, id")
}

func (r *TagRepo) GetByID(ctx context.Context, id int64) (*models.Tag, error) {
	tags, err := r.list(ctx, "get", "SELECT "+tagColumns+" FROM tags WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("tag %d: %w", id, models.ErrNotFound)
	}
	return &tags[0], nil
}

// GetForTask returns all tags for a task
func (r *TagRepo) GetForTask(ctx context.Context, taskID int64) ([]models.Tag, error) {
	return r.list(ctx, "get for task", `
		SELECT t.id, t.name, t.color, t.usage_count
		FROM tags t
		JOIN task_tags tt ON t.id = tt.tag_id
		WHERE tt.task_id = ?
		ORDER BY t.name, t.id
	`, taskID)
}

func (r *TagRepo) Update(ctx context.Context, id int64, patch models.TagPatch) (int64, error) {
	var a assignments
	set(&a, "name", patch.Name)
	set(&a, "color", patch.Color)

	if a.empty() {
		return 0, models.ErrNoFieldsToUpdate
	}
	if err := patch.Validate(); err != nil {
		return 0, err
	}

	query, args := a.statement("tags", id)
	res, err := r.q().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, r.db.fail("update", "tag", err, zap.Int64("id", id))
	}
	return res.RowsAffected()
}

// Delete removes the tag's associations, then the tag, in one unit of work
func (r *TagRepo) Delete(ctx context.Context, id int64) (int64, error) {
	var deleted int64
	err := r.atomic(ctx, func(q sqlx.ExtContext) error {
		if _, err := q.ExecContext(ctx, "DELETE FROM task_tags WHERE tag_id = ?", id); err != nil {
			return r.db.fail("detach tasks from", "tag", err, zap.Int64("id", id))
		}

		res, err := q.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", id)
		if err != nil {
			return r.db.fail("delete", "tag", err, zap.Int64("id", id))
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// AddTagToTask associates a tag with a task and bumps its usage count.
// An existing association is left alone and reported as 0 rows affected.
func (r *TagRepo) AddTagToTask(ctx context.Context, taskID, tagID int64) (int64, error) {
	var added int64
	err := r.atomic(ctx, func(q sqlx.ExtContext) error {
		var exists int
		err := sqlx.GetContext(ctx, q, &exists,
			"SELECT COUNT(*) FROM task_tags WHERE task_id = ? AND tag_id = ?", taskID, tagID)
		if err != nil {
			return r.db.fail("check", "task tag", err, zap.Int64("task_id", taskID), zap.Int64("tag_id", tagID))
		}
		if exists > 0 {
			return nil
		}

		res, err := q.ExecContext(ctx, "INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?)", taskID, tagID)
		if err != nil {
			return r.db.fail("insert", "task tag", err, zap.Int64("task_id", taskID), zap.Int64("tag_id", tagID))
		}
		if added, err = res.RowsAffected(); err != nil {
			return err
		}

		if _, err := q.ExecContext(ctx, "UPDATE tags SET usage_count = usage_count + 1 WHERE id = ?", tagID); err != nil {
			return r.db.fail("count usage of", "tag", err, zap.Int64("id", tagID))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// RemoveTagFromTask drops an association. The usage count is decremented,
// never below zero, only when a row was actually removed.
func (r *TagRepo) RemoveTagFromTask(ctx context.Context, taskID, tagID int64) (int64, error) {
	var removed int64
	err := r.atomic(ctx, func(q sqlx.ExtContext) error {
		res, err := q.ExecContext(ctx, "DELETE FROM task_tags WHERE task_id = ? AND tag_id = ?", taskID, tagID)
		if err != nil {
			return r.db.fail("delete", "task tag", err, zap.Int64("task_id", taskID), zap.Int64("tag_id", tagID))
		}
		if removed, err = res.RowsAffected(); err != nil || removed == 0 {
			return err
		}

		_, err = q.ExecContext(ctx, "UPDATE tags SET usage_count = MAX(usage_count - 1, 0) WHERE id = ?", tagID)
		if err != nil {
			return r.db.fail("count usage of", "tag", err, zap.Int64("id", tagID))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *TagRepo) list(ctx context.Context, op, query string, args ...any) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := sqlx.SelectContext(ctx, r.q(), &tags, query, args...); err != nil {
		return nil, r.db.fail(op, "tag", err)
	}
	return tags, nil
}
