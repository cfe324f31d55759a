package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("listing: %w", ErrTaskNotFound)
	assert.Equal(t, ErrCodeNotFound, CodeOf(wrapped))
	assert.True(t, IsDomainError(wrapped, ErrCodeNotFound))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("boom")))

	unavailable := Unavailable("store unavailable", errors.New("dial tcp: refused"))
	assert.Equal(t, ErrCodeUnavailable, CodeOf(unavailable))
	assert.Equal(t, "store unavailable", unavailable.Message)
	assert.ErrorContains(t, unavailable, "refused")
}

func TestMissingAndInvalidTokenShareCode(t *testing.T) {
	assert.Equal(t, ErrMissingCredential.Code, ErrInvalidToken.Code)
	assert.NotEqual(t, ErrMissingCredential.Message, ErrInvalidToken.Message)
}

func TestSession_IsExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, s.IsExpired(now))
	assert.False(t, s.IsExpired(now.Add(time.Minute-time.Nanosecond)))
	assert.True(t, s.IsExpired(now.Add(time.Minute)))

	var missing *Session
	assert.True(t, missing.IsExpired(now))
}

func TestTaskStats_Add(t *testing.T) {
	var stats TaskStats
	stats.Add(TaskStatusPending, 2)
	stats.Add(TaskStatusCompleted, 3)
	stats.Add(TaskStatusInProgress, 1)

	assert.Equal(t, TaskStats{Total: 6, Pending: 2, InProgress: 1, Completed: 3}, stats)
}

func TestTimeWindow_Contains(t *testing.T) {
	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	assert.True(t, TimeWindow{}.Contains(from))
	assert.True(t, TimeWindow{From: from, To: to}.Contains(from))
	assert.False(t, TimeWindow{From: from, To: to}.Contains(to))
	assert.False(t, TimeWindow{From: from}.Contains(from.Add(-time.Second)))
	assert.True(t, TimeWindow{To: to}.Contains(from.AddDate(-1, 0, 0)))
}

func TestUserProfile(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))

	u := &User{Email: "a@b.c", Nickname: "old"}
	u.ApplyProfile(Profile{Nickname: "new", Gender: "f"})
	assert.Equal(t, "new", u.Nickname)
	assert.Equal(t, "f", u.Gender)
	assert.Equal(t, "a@b.c", u.Email)

	assert.True(t, IsValidTaskStatus(TaskStatusInProgress))
	assert.False(t, IsValidTaskStatus("cancelled"))
	assert.True(t, (&Task{Status: TaskStatusCompleted}).IsCompleted())
}
