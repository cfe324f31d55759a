package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

var taskRowColumns = []string{"id", "user_id", "name", "category", "time", "status", "created_at", "updated_at"}

func TestTaskRepository_GetByID(t *testing.T) {
	when := time.Date(2025, 7, 4, 10, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT (.+) FROM tasks WHERE id = \$1`).
		WithArgs("t1").
		WillReturnRows(pgxmock.NewRows(taskRowColumns).
			AddRow("t1", "u1", "write docs", "work", when, domain.TaskStatusPending, when, when))
	mock.ExpectQuery(`SELECT (.+) FROM tasks WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := NewTaskRepository(mock)

	task, err := repo.GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "u1", task.UserID)
	assert.Equal(t, "write docs", task.Name)
	assert.Equal(t, when, task.Time)

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_List(t *testing.T) {
	when := time.Date(2025, 7, 4, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    repository.TaskFilter
		setupMock func(mock pgxmock.PgxPoolIface)
		wantLen   int
		wantErr   bool
	}{
		{
			name:   "owner scoped with clamped limit",
			filter: repository.TaskFilter{UserID: "u1", Limit: 500},
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(taskRowColumns).
					AddRow("t2", "u1", "b", "home", when.Add(time.Hour), domain.TaskStatusCompleted, when, when).
					AddRow("t1", "u1", "a", "work", when, domain.TaskStatusPending, when, when)
				mock.ExpectQuery(`SELECT (.+) FROM tasks WHERE (.+) ORDER BY time DESC`).
					WithArgs("u1", "", 100, 0).
					WillReturnRows(rows)
			},
			wantLen: 2,
		},
		{
			name:   "empty result is an empty slice",
			filter: repository.TaskFilter{UserID: "u2", Status: domain.TaskStatusCompleted, Limit: 10, Offset: 5},
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT (.+) FROM tasks`).
					WithArgs("u2", domain.TaskStatusCompleted, 10, 5).
					WillReturnRows(pgxmock.NewRows(taskRowColumns))
			},
			wantLen: 0,
		},
		{
			name:   "query error",
			filter: repository.TaskFilter{UserID: "u1"},
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT (.+) FROM tasks`).
					WithArgs("u1", "", 100, 0).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			tasks, err := NewTaskRepository(mock).List(context.Background(), tt.filter)
			if tt.wantErr {
				require.Error(t, err)
				assert.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, tasks)
			assert.Len(t, tasks, tt.wantLen)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTaskRepository_CreateUpdateDelete(t *testing.T) {
	when := time.Date(2025, 7, 4, 10, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTaskRepository(mock)

	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs(pgxmock.AnyArg(), "u1", "write docs", "work", when, domain.TaskStatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	created, err := repo.Create(context.Background(), &domain.Task{
		UserID:   "u1",
		Name:     "write docs",
		Category: "work",
		Time:     when,
		Status:   domain.TaskStatusPending,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	mock.ExpectQuery(`UPDATE tasks`).
		WithArgs(created.ID, "write more docs", "work", when, domain.TaskStatusCompleted).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "created_at", "updated_at"}).AddRow("u1", now, now))

	created.Name = "write more docs"
	created.Status = domain.TaskStatusCompleted
	require.NoError(t, repo.Update(context.Background(), created))

	mock.ExpectQuery(`UPDATE tasks`).
		WithArgs("missing", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	assert.ErrorIs(t, repo.Update(context.Background(), &domain.Task{ID: "missing"}), domain.ErrTaskNotFound)

	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).
		WithArgs(created.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).
		WithArgs(created.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), created.ID))
	assert.ErrorIs(t, repo.Delete(context.Background(), created.ID), domain.ErrTaskNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_CreateRequiresOwner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewTaskRepository(mock).Create(context.Background(), &domain.Task{Name: "orphan"})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}
