package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

// TaskRepository keeps tasks in a map and implements both the CRUD and the stats contracts.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]domain.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]domain.Task)}
}

func (r *TaskRepository) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

func (r *TaskRepository) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.mu.RLock()
	tasks := make([]domain.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		if filter.UserID != "" && task.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		tasks = append(tasks, task)
	}
	r.mu.RUnlock()

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Time.Equal(tasks[j].Time) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].Time.After(tasks[j].Time)
	})

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if filter.Offset >= len(tasks) {
		return []domain.Task{}, nil
	}
	tasks = tasks[max(filter.Offset, 0):]
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (r *TaskRepository) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.UserID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	r.mu.Lock()
	r.tasks[task.ID] = *task
	r.mu.Unlock()
	return task, nil
}

func (r *TaskRepository) Update(_ context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	stored.Name = task.Name
	stored.Category = task.Category
	stored.Time = task.Time
	stored.Status = task.Status
	stored.UpdatedAt = time.Now().UTC()
	r.tasks[task.ID] = stored

	*task = stored
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *TaskRepository) CountByCategory(_ context.Context, filter repository.CategoryFilter) (domain.CategoryCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(domain.CategoryCounts)
	for _, task := range r.tasks {
		if task.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if !filter.Window.Contains(task.Time) {
			continue
		}
		counts[task.Category]++
	}
	return counts, nil
}

func (r *TaskRepository) CountByStatus(_ context.Context, userID string) (domain.TaskStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stats domain.TaskStats
	for _, task := range r.tasks {
		if task.UserID == userID {
			stats.Add(task.Status, 1)
		}
	}
	return stats, nil
}

var (
	_ repository.TaskRepository      = (*TaskRepository)(nil)
	_ repository.TaskStatsRepository = (*TaskRepository)(nil)
)
