package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tgienger/tasknest/internal/models"
)

// Filter returns the tasks matching every active constraint of f, newest first.
// An all-"all" filter with an empty search returns the same rows as GetAll.
func (r *TaskRepo) Filter(ctx context.Context, f models.Filter) ([]models.Task, error) {
	query, args, err := buildFilterQuery(f)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, "filter", query, args...)
}

func active(v string) bool {
	return v != "" && v != models.FilterAll
}

func buildFilterQuery(f models.Filter) (string, []any, error) {
	var b strings.Builder
	args := []any{}

	b.WriteString("SELECT " + taskColumns + " FROM tasks WHERE 1=1")

	if active(f.Status) {
		if !models.TaskStatus(f.Status).Valid() {
			return "", nil, fmt.Errorf("%w: unknown status filter %q", models.ErrValidation, f.Status)
		}
		b.WriteString(" AND status = ?")
		args = append(args, f.Status)
	}

	if active(f.Priority) {
		if !models.Priority(f.Priority).Valid() {
			return "", nil, fmt.Errorf("%w: unknown priority filter %q", models.ErrValidation, f.Priority)
		}
		b.WriteString(" AND priority = ?")
		args = append(args, f.Priority)
	}

	if f.SearchQuery != "" {
		pattern := "%" + f.SearchQuery + "%"
		b.WriteString(" AND (title LIKE ? OR description LIKE ?)")
		args = append(args, pattern, pattern)
	}

	switch f.CategoryID {
	case "", models.FilterAll:
	case models.FilterNone:
		// 0 has been stored as "no category" by older clients
		b.WriteString(" AND (category_id IS NULL OR category_id = 0)")
	default:
		id, err := strconv.ParseInt(f.CategoryID, 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w: invalid category filter %q", models.ErrValidation, f.CategoryID)
		}
		b.WriteString(" AND category_id = ?")
		args = append(args, id)
	}

	b.WriteString(" ORDER BY created_at DESC, id DESC")
	return b.String(), args, nil
}
