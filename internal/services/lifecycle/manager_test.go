package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestShutdown_ReverseOrderAndJoinedErrors(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	boom := errors.New("boom")

	m.Register("postgres", func(context.Context) error {
		order = append(order, "postgres")
		return nil
	})
	m.Register("sessions", func(context.Context) error {
		order = append(order, "sessions")
		return boom
	})
	m.Register("http", func(context.Context) error {
		order = append(order, "http")
		return nil
	})
	m.Register("ignored", nil)

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"http", "sessions", "postgres"}, order)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 3)
}

func TestShutdown_HooksSeeDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		<-ctx.Done()
		return ctx.Err()
	})

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestListen_StopsWithContext(t *testing.T) {
	m := New(0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	m.Listen(ctx, cancel)
	cancel()
	m.Listen(ctx, nil)
}
