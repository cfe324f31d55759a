package domain

import "time"

// TaskStats summarises an owner's tasks by status.
type TaskStats struct {
	Total      int `json:"total_tasks"`
	Pending    int `json:"pending_tasks"`
	InProgress int `json:"in_progress_tasks"`
	Completed  int `json:"completed_tasks"`
}

// Add counts n tasks with the given status.
func (s *TaskStats) Add(status string, n int) {
	s.Total += n
	switch status {
	case TaskStatusPending:
		s.Pending += n
	case TaskStatusInProgress:
		s.InProgress += n
	case TaskStatusCompleted:
		s.Completed += n
	}
}

// TimeWindow bounds a query on the scheduled time of tasks. Zero bounds are open.
type TimeWindow struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

// Contains reports whether t falls inside [From, To).
func (w TimeWindow) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && !t.Before(w.To) {
		return false
	}
	return true
}

// CategoryCounts maps a task category to the number of matching tasks.
type CategoryCounts map[string]int
