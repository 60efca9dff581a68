package db

import (
	"context"
	"math"

	"github.com/tgienger/tasknest/internal/models"
)

// CalculateParentCompletion derives the completion of parentID from its
// immediate subtasks, stores it on the parent and returns it.
//
// A completed subtask counts as 100 whatever its stored percentage; a parent
// without subtasks is 0. Grandchildren are not visited, and the write goes
// through UpdateCompletion so nothing propagates further on its own.
func (r *TaskRepo) CalculateParentCompletion(ctx context.Context, parentID int64) (int, error) {
	subtasks, err := r.GetSubtasks(ctx, parentID)
	if err != nil {
		return 0, err
	}

	pct := AggregateCompletion(subtasks)
	if _, err := r.UpdateCompletion(ctx, parentID, pct); err != nil {
		return 0, err
	}
	return pct, nil
}

// AggregateCompletion averages the effective completion of subtasks, rounded
// to the nearest integer.
func AggregateCompletion(subtasks []models.Task) int {
	if len(subtasks) == 0 {
		return 0
	}

	sum := 0
	for _, t := range subtasks {
		sum += t.EffectiveCompletion()
	}
	pct := int(math.Round(float64(sum) / float64(len(subtasks))))
	return min(max(pct, 0), 100)
}
