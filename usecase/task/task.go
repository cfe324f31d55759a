// Package task exposes owner-scoped task operations. Every call takes the
// authenticated identity and runs the ownership check before the repository
// sees a read or a write.
package task

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

// OwnerGuard is implemented by auth.Guard.
type OwnerGuard interface {
	AuthorizeOwner(identity, owner string) error
}

// Input carries the mutable task fields, already validated at the boundary.
type Input struct {
	Name     string
	Category string
	Time     time.Time
	Status   string
}

type UseCase struct {
	tasks  repository.TaskRepository
	stats  repository.TaskStatsRepository
	guard  OwnerGuard
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, stats repository.TaskStatsRepository, guard OwnerGuard, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		stats:  stats,
		guard:  guard,
		logger: logger,
	}
}

// ListTasks returns the caller's own tasks.
func (uc *UseCase) ListTasks(ctx context.Context, identity string, filter repository.TaskFilter) ([]domain.Task, error) {
	return uc.ListUserTasks(ctx, identity, identity, filter)
}

// ListUserTasks lists the tasks of userID, which must be the caller.
func (uc *UseCase) ListUserTasks(ctx context.Context, identity, userID string, filter repository.TaskFilter) ([]domain.Task, error) {
	if err := uc.guard.AuthorizeOwner(identity, userID); err != nil {
		return nil, err
	}
	filter.UserID = userID
	tasks, err := uc.tasks.List(ctx, filter)
	if err != nil {
		return nil, uc.storeError("list tasks", err)
	}
	return tasks, nil
}

func (uc *UseCase) GetTask(ctx context.Context, identity, id string) (*domain.Task, error) {
	return uc.owned(ctx, identity, id)
}

// CreateTask stores a task owned by identity.
func (uc *UseCase) CreateTask(ctx context.Context, identity string, in Input) (*domain.Task, error) {
	if identity == "" {
		return nil, domain.ErrMissingCredential
	}
	task := &domain.Task{
		UserID:   identity,
		Name:     in.Name,
		Category: in.Category,
		Time:     in.Time,
		Status:   in.Status,
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, uc.storeError("create task", err)
	}
	uc.logger.Debug("task created", zap.String("task_id", created.ID), zap.String("user_id", identity))
	return created, nil
}

// UpdateTask replaces the mutable fields of a task the caller owns.
func (uc *UseCase) UpdateTask(ctx context.Context, identity, id string, in Input) (*domain.Task, error) {
	task, err := uc.owned(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	task.Name = in.Name
	task.Category = in.Category
	task.Time = in.Time
	if in.Status != "" {
		task.Status = in.Status
	}
	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, uc.storeError("update task", err)
	}
	return task, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, identity, id string) error {
	if _, err := uc.owned(ctx, identity, id); err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		return uc.storeError("delete task", err)
	}
	uc.logger.Debug("task deleted", zap.String("task_id", id), zap.String("user_id", identity))
	return nil
}

// StatusStats counts userID's tasks per status.
func (uc *UseCase) StatusStats(ctx context.Context, identity, userID string) (domain.TaskStats, error) {
	if err := uc.guard.AuthorizeOwner(identity, userID); err != nil {
		return domain.TaskStats{}, err
	}
	stats, err := uc.stats.CountByStatus(ctx, userID)
	if err != nil {
		return domain.TaskStats{}, uc.storeError("count tasks by status", err)
	}
	return stats, nil
}

// CategoryStats counts userID's tasks per category. Status defaults to completed.
func (uc *UseCase) CategoryStats(ctx context.Context, identity, userID, status string, window domain.TimeWindow) (domain.CategoryCounts, error) {
	if err := uc.guard.AuthorizeOwner(identity, userID); err != nil {
		return nil, err
	}
	if status == "" {
		status = domain.TaskStatusCompleted
	}
	counts, err := uc.stats.CountByCategory(ctx, repository.CategoryFilter{
		UserID: userID,
		Status: status,
		Window: window,
	})
	if err != nil {
		return nil, uc.storeError("count tasks by category", err)
	}
	return counts, nil
}

func (uc *UseCase) owned(ctx context.Context, identity, id string) (*domain.Task, error) {
	if identity == "" {
		return nil, domain.ErrMissingCredential
	}
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, uc.storeError("get task", err)
	}
	if err := uc.guard.AuthorizeOwner(identity, task.UserID); err != nil {
		return nil, err
	}
	return task, nil
}

// storeError passes domain errors through and hides everything else behind ServiceUnavailable.
func (uc *UseCase) storeError(op string, err error) error {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	uc.logger.Error("task repository failure", zap.String("operation", op), zap.Error(err))
	return domain.Unavailable("task store unavailable", err)
}
