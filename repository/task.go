package repository

import (
	"context"

	"github.com/fastygo/tasktracker/domain"
)

type TaskFilter struct {
	UserID string
	Status string
	Limit  int
	Offset int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// List returns tasks ordered by scheduled time, newest first.
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}

type CategoryFilter struct {
	UserID string
	Status string
	Window domain.TimeWindow
}

// TaskStatsRepository serves the aggregation endpoints.
type TaskStatsRepository interface {
	CountByCategory(ctx context.Context, filter CategoryFilter) (domain.CategoryCounts, error)
	CountByStatus(ctx context.Context, userID string) (domain.TaskStats, error)
}
