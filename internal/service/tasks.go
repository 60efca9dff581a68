// Package service holds the task operations the presentation layer calls.
// Each operation that can change a subtask's completion recomputes the
// immediate parent exactly once, inside the same unit of work as the change.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/tgienger/tasknest/internal/db"
	"github.com/tgienger/tasknest/internal/models"
	"go.uber.org/zap"
)

// Reminders schedules and cancels due-date reminders keyed by task id
type Reminders interface {
	Schedule(ctx context.Context, task models.Task) error
	Cancel(ctx context.Context, taskID int64) error
}

// NopReminders ignores every call
type NopReminders struct{}

func (NopReminders) Schedule(context.Context, models.Task) error { return nil }
func (NopReminders) Cancel(context.Context, int64) error         { return nil }

type TaskService struct {
	store     *db.DB
	tasks     *db.TaskRepo
	reminders Reminders
	log       *zap.Logger
}

func NewTaskService(store *db.DB, reminders Reminders) *TaskService {
	if reminders == nil {
		reminders = NopReminders{}
	}
	return &TaskService{
		store:     store,
		tasks:     db.NewTaskRepo(store),
		reminders: reminders,
		log:       store.Logger().Named("tasks"),
	}
}

// Create inserts a task and links it to its project and parent. A new subtask
// triggers one recomputation of its parent.
func (s *TaskService) Create(ctx context.Context, in models.NewTask) (*models.Task, error) {
	var created *models.Task
	err := s.store.InTx(ctx, func(tx *sqlx.Tx) error {
		tasks := s.tasks.WithTx(tx)

		res, err := tasks.Insert(ctx, in)
		if err != nil {
			return err
		}

		// The insert statement does not carry project or parent links.
		link := models.TaskPatch{}
		if in.ProjectID != nil {
			link.ProjectID = models.Set(*in.ProjectID)
		}
		if in.ParentTaskID != nil {
			link.ParentTaskID = models.Set(*in.ParentTaskID)
		}
		if link.ProjectID != nil || link.ParentTaskID != nil {
			if _, err := tasks.Update(ctx, res.ID, link); err != nil {
				return err
			}
		}

		if in.ParentTaskID != nil {
			if _, err := tasks.CalculateParentCompletion(ctx, *in.ParentTaskID); err != nil {
				return err
			}
		}

		created, err = tasks.GetByID(ctx, res.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, s.remind(ctx, *created)
}

// AddSubtask creates a task under parentID
func (s *TaskService) AddSubtask(ctx context.Context, parentID int64, in models.NewTask) (*models.Task, error) {
	if _, err := s.tasks.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	in.ParentTaskID = &parentID
	return s.Create(ctx, in)
}

// Update applies a partial update. When the patch can change the parent's
// completion, the old parent and (if different) the new parent are each
// recomputed once.
func (s *TaskService) Update(ctx context.Context, id int64, patch models.TaskPatch) (*models.Task, error) {
	var updated *models.Task
	err := s.store.InTx(ctx, func(tx *sqlx.Tx) error {
		tasks := s.tasks.WithTx(tx)

		before, err := tasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := tasks.Update(ctx, id, patch); err != nil {
			return err
		}
		if updated, err = tasks.GetByID(ctx, id); err != nil {
			return err
		}

		if patch.AffectsParentCompletion() {
			return recomputeParents(ctx, tasks, before.ParentTaskID, updated.ParentTaskID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, s.remind(ctx, *updated)
}

// ToggleStatus flips a task between pending and completed. Completing sets
// the completion to 100, reopening resets it to 0.
func (s *TaskService) ToggleStatus(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status, pct := models.StatusCompleted, 100
	if task.Status == models.StatusCompleted {
		status, pct = models.StatusPending, 0
	}
	return s.Update(ctx, id, models.TaskPatch{Status: &status, CompletionPercentage: &pct})
}

// SetCompletion stores a manual completion percentage and recomputes the parent
func (s *TaskService) SetCompletion(ctx context.Context, id int64, pct int) (*models.Task, error) {
	var updated *models.Task
	err := s.store.InTx(ctx, func(tx *sqlx.Tx) error {
		tasks := s.tasks.WithTx(tx)

		n, err := tasks.UpdateCompletion(ctx, id, pct)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("task %d: %w", id, models.ErrNotFound)
		}
		if updated, err = tasks.GetByID(ctx, id); err != nil {
			return err
		}
		return recomputeParents(ctx, tasks, updated.ParentTaskID, nil)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a task, recomputes its former parent and cancels its reminder
func (s *TaskService) Delete(ctx context.Context, id int64) (int64, error) {
	var deleted int64
	err := s.store.InTx(ctx, func(tx *sqlx.Tx) error {
		tasks := s.tasks.WithTx(tx)

		task, err := tasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if deleted, err = tasks.Delete(ctx, id); err != nil {
			return err
		}
		return recomputeParents(ctx, tasks, task.ParentTaskID, nil)
	})
	if err != nil {
		return 0, err
	}

	if err := s.reminders.Cancel(ctx, id); err != nil {
		return deleted, s.reminderErr("cancel", id, err)
	}
	return deleted, nil
}

// recomputeParents recalculates each distinct non-nil parent once
func recomputeParents(ctx context.Context, tasks *db.TaskRepo, parents ...*int64) error {
	seen := map[int64]bool{}
	for _, p := range parents {
		if p == nil || seen[*p] {
			continue
		}
		seen[*p] = true
		if _, err := tasks.CalculateParentCompletion(ctx, *p); err != nil {
			return err
		}
	}
	return nil
}

// remind cancels any reminder for the task and schedules a new one while the
// task is pending and has a due date.
func (s *TaskService) remind(ctx context.Context, task models.Task) error {
	if err := s.reminders.Cancel(ctx, task.ID); err != nil {
		return s.reminderErr("cancel", task.ID, err)
	}
	if task.DueDate == nil || task.Status == models.StatusCompleted {
		return nil
	}
	if err := s.reminders.Schedule(ctx, task); err != nil {
		return s.reminderErr("schedule", task.ID, err)
	}
	return nil
}

func (s *TaskService) reminderErr(op string, id int64, err error) error {
	s.log.Warn("reminder update failed", zap.String("op", op), zap.Int64("task_id", id), zap.Error(err))
	return errors.Join(models.ErrReminder, err)
}
