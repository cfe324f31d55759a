package postgres

import (
	"context"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type taskStatsRepository struct {
	db DB
}

// NewTaskStatsRepository returns the Postgres aggregation queries over tasks.
func NewTaskStatsRepository(db DB) repository.TaskStatsRepository {
	return &taskStatsRepository{db: db}
}

func (r *taskStatsRepository) CountByCategory(ctx context.Context, filter repository.CategoryFilter) (domain.CategoryCounts, error) {
	const query = `
	SELECT category, COUNT(*)
	FROM tasks
	WHERE user_id = $1
	  AND ($2 = '' OR status = $2)
	  AND ($3::timestamptz IS NULL OR time >= $3)
	  AND ($4::timestamptz IS NULL OR time < $4)
	GROUP BY category
	ORDER BY category
	`
	rows, err := r.db.Query(ctx, query,
		filter.UserID,
		filter.Status,
		nullTime(filter.Window.From),
		nullTime(filter.Window.To),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(domain.CategoryCounts)
	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}

func (r *taskStatsRepository) CountByStatus(ctx context.Context, userID string) (domain.TaskStats, error) {
	const query = `
	SELECT status, COUNT(*)
	FROM tasks
	WHERE user_id = $1
	GROUP BY status
	`
	var stats domain.TaskStats

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return domain.TaskStats{}, err
		}
		stats.Add(status, count)
	}
	return stats, rows.Err()
}
