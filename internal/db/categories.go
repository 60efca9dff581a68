package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/tgienger/tasknest/internal/models"
	"go.uber.org/zap"
)

const categoryColumns = "id, name, color, icon, created_at"

// CategoryRepo stores categories
type CategoryRepo struct {
	executor
}

func NewCategoryRepo(db *DB) *CategoryRepo {
	return &CategoryRepo{executor{db: db}}
}

func (r *CategoryRepo) WithTx(tx *sqlx.Tx) *CategoryRepo {
	return &CategoryRepo{executor{db: r.db, tx: tx}}
}

// Insert creates a category; ID and CreatedAt of c are ignored
func (r *CategoryRepo) Insert(ctx context.Context, c models.Category) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}

	res, err := r.q().ExecContext(ctx, `
		INSERT INTO categories (name, color, icon, created_at) VALUES (?, ?, ?, ?)
	`, c.Name, c.Color, c.Icon, r.db.timestamp())
	if err != nil {
		return Result{}, r.db.fail("insert", "category", err)
	}

	out, err := insertResult(res)
	if err != nil {
		return Result{}, r.db.fail("insert", "category", err)
	}
	return out, nil
}

// GetAll returns all categories ordered by name
func (r *CategoryRepo) GetAll(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := sqlx.SelectContext(ctx, r.q(), &categories,
		"SELECT "+categoryColumns+" FROM categories ORDER BY name, id")
	if err != nil {
		return nil, r.db.fail("get all", "category", err)
	}
	return categories, nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	categories := []models.Category{}
	err := sqlx.SelectContext(ctx, r.q(), &categories,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	if err != nil {
		return nil, r.db.fail("get", "category", err, zap.Int64("id", id))
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("category %d: %w", id, models.ErrNotFound)
	}
	return &categories[0], nil
}

func (r *CategoryRepo) Update(ctx context.Context, id int64, patch models.CategoryPatch) (int64, error) {
	var a assignments
	set(&a, "name", patch.Name)
	set(&a, "color", patch.Color)
	setNullable(&a, "icon", patch.Icon)

	if a.empty() {
		return 0, models.ErrNoFieldsToUpdate
	}
	if err := patch.Validate(); err != nil {
		return 0, err
	}

	query, args := a.statement("categories", id)
	res, err := r.q().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, r.db.fail("update", "category", err, zap.Int64("id", id))
	}
	return res.RowsAffected()
}

// Delete clears category_id on every task in the category, then deletes the
// category. Both happen or neither does.
func (r *CategoryRepo) Delete(ctx context.Context, id int64) (int64, error) {
	return deleteNullifying(ctx, r.executor, "category", "categories", "category_id", id)
}

// deleteNullifying clears column on the tasks referencing id, then deletes the
// row from table, in one unit of work.
func deleteNullifying(ctx context.Context, e executor, entity, table, column string, id int64) (int64, error) {
	var deleted int64
	err := e.atomic(ctx, func(q sqlx.ExtContext) error {
		_, err := q.ExecContext(ctx, fmt.Sprintf("UPDATE tasks SET %s = NULL WHERE %s = ?", column, column), id)
		if err != nil {
			return e.db.fail("detach tasks from", entity, err, zap.Int64("id", id))
		}

		res, err := q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
		if err != nil {
			return e.db.fail("delete", entity, err, zap.Int64("id", id))
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
