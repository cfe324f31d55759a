package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/usecase/session"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 7, 4, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Save(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockStore) List(ctx context.Context) ([]domain.Session, error) {
	args := m.Called(ctx)
	sessions, _ := args.Get(0).([]domain.Session)
	return sessions, args.Error(1)
}

func (m *mockStore) Close() error { return nil }

// heldStore is a map-backed store whose Save blocks for one token until released.
type heldStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session

	holdToken string
	entered   chan struct{}
	release   chan struct{}
}

func newHeldStore(holdToken string) *heldStore {
	return &heldStore{
		sessions:  make(map[string]domain.Session),
		holdToken: holdToken,
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
}

func (h *heldStore) Save(_ context.Context, s *domain.Session) error {
	if s.Token == h.holdToken {
		close(h.entered)
		<-h.release
	}
	h.mu.Lock()
	h.sessions[s.Token] = *s
	h.mu.Unlock()
	return nil
}

func (h *heldStore) Delete(_ context.Context, token string) error {
	h.mu.Lock()
	delete(h.sessions, token)
	h.mu.Unlock()
	return nil
}

func (h *heldStore) List(context.Context) ([]domain.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (h *heldStore) Close() error { return nil }

func TestGenerateToken(t *testing.T) {
	t1, err := session.GenerateToken()
	require.NoError(t, err)
	t2, err := session.GenerateToken()
	require.NoError(t, err)

	assert.Len(t, t1, 64)
	assert.NotEqual(t, t1, t2)
}

func TestRegistry_CreateSetsExpiry(t *testing.T) {
	clock := newFakeClock()
	reg := session.New(time.Hour, session.WithClock(clock.Now))

	s, err := reg.Create(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, clock.Now(), s.CreatedAt)
	assert.Equal(t, clock.Now().Add(time.Hour), s.ExpiresAt)
	assert.Equal(t, time.Hour, reg.TTL())

	_, err = reg.Create(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestRegistry_DefaultTTL(t *testing.T) {
	assert.Equal(t, session.DefaultTTL, session.New(0).TTL())
}

func TestRegistry_CreateReplacesPreviousSession(t *testing.T) {
	reg := session.New(time.Hour)
	ctx := context.Background()

	first, err := reg.Create(ctx, "u1")
	require.NoError(t, err)
	other, err := reg.Create(ctx, "u2")
	require.NoError(t, err)
	second, err := reg.Create(ctx, "u1")
	require.NoError(t, err)

	require.NotEqual(t, first.Token, second.Token)

	_, err = reg.Validate(first.Token)
	assert.ErrorIs(t, err, domain.ErrSessionInvalid)

	uid, err := reg.Validate(second.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)

	uid, err = reg.Validate(other.Token)
	require.NoError(t, err)
	assert.Equal(t, "u2", uid)

	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_UnknownTokens(t *testing.T) {
	reg := session.New(time.Hour)

	for _, token := range []string{"", "deadbeef", "0000000000000000000000000000000000000000000000000000000000000000"} {
		_, err := reg.Validate(token)
		assert.ErrorIs(t, err, domain.ErrSessionInvalid)

		_, err = reg.Resolve(token)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	}
}

func TestRegistry_ExpiryWithoutRevoke(t *testing.T) {
	clock := newFakeClock()
	reg := session.New(time.Hour, session.WithClock(clock.Now))

	s, err := reg.Create(context.Background(), "u1")
	require.NoError(t, err)

	clock.Advance(time.Hour - time.Nanosecond)
	_, err = reg.Validate(s.Token)
	require.NoError(t, err)

	clock.Advance(time.Nanosecond)
	_, err = reg.Validate(s.Token)
	assert.ErrorIs(t, err, domain.ErrSessionInvalid)

	// expired but still resolvable until swept
	resolved, err := reg.Resolve(s.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", resolved.UserID)
}

func TestRegistry_RevokeTwice(t *testing.T) {
	reg := session.New(time.Hour)
	ctx := context.Background()

	s, err := reg.Create(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, reg.Revoke(ctx, s.Token))
	assert.ErrorIs(t, reg.Revoke(ctx, s.Token), domain.ErrSessionNotFound)
	assert.ErrorIs(t, reg.Revoke(ctx, "never-issued"), domain.ErrSessionNotFound)

	_, err = reg.Validate(s.Token)
	assert.ErrorIs(t, err, domain.ErrSessionInvalid)

	// the user may log in again after revocation
	again, err := reg.Create(ctx, "u1")
	require.NoError(t, err)
	_, err = reg.Validate(again.Token)
	assert.NoError(t, err)
}

func TestRegistry_RevokeReplacedToken(t *testing.T) {
	reg := session.New(time.Hour)
	ctx := context.Background()

	first, err := reg.Create(ctx, "u1")
	require.NoError(t, err)
	second, err := reg.Create(ctx, "u1")
	require.NoError(t, err)

	assert.ErrorIs(t, reg.Revoke(ctx, first.Token), domain.ErrSessionNotFound)
	_, err = reg.Validate(second.Token)
	assert.NoError(t, err)
}

func TestRegistry_ConcurrentCreateKeepsOneActiveSession(t *testing.T) {
	reg := session.New(time.Hour)
	ctx := context.Background()

	const workers = 64
	tokens := make([]string, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := reg.Create(ctx, "u1")
			if err != nil {
				return
			}
			tokens[i] = s.Token
			_, _ = reg.Validate(s.Token)
		}(i)
	}
	wg.Wait()

	active := 0
	for _, token := range tokens {
		if _, err := reg.Validate(token); err == nil {
			active++
		}
	}
	assert.Equal(t, 1, active)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_Sweep(t *testing.T) {
	clock := newFakeClock()
	store := &mockStore{}
	reg := session.New(time.Hour, session.WithClock(clock.Now), session.WithStore(store))
	ctx := context.Background()

	store.On("Save", ctx, mock.AnythingOfType("*domain.Session")).Return(nil)

	old, err := reg.Create(ctx, "u1")
	require.NoError(t, err)
	clock.Advance(30 * time.Minute)
	fresh, err := reg.Create(ctx, "u2")
	require.NoError(t, err)
	clock.Advance(45 * time.Minute)

	store.On("Delete", ctx, old.Token).Return(nil).Once()

	assert.Equal(t, 1, reg.Sweep(ctx))
	assert.Equal(t, 1, reg.Len())
	_, err = reg.Validate(fresh.Token)
	assert.NoError(t, err)
	assert.Equal(t, 0, reg.Sweep(ctx))

	store.AssertExpectations(t)
}

func TestRegistry_StoreFailuresDoNotFailOperations(t *testing.T) {
	store := &mockStore{}
	reg := session.New(time.Hour, session.WithStore(store))
	ctx := context.Background()

	store.On("Save", ctx, mock.Anything).Return(errors.New("disk full"))
	store.On("Delete", ctx, mock.Anything).Return(errors.New("disk full"))

	s, err := reg.Create(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, reg.Revoke(ctx, s.Token))
}

func TestRegistry_TokenGeneratorFailure(t *testing.T) {
	reg := session.New(time.Hour, session.WithTokenGenerator(func() (string, error) {
		return "", errors.New("entropy exhausted")
	}))

	_, err := reg.Create(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))
}

func TestRegistry_TokenCollision(t *testing.T) {
	reg := session.New(time.Hour, session.WithTokenGenerator(func() (string, error) {
		return "fixed", nil
	}))
	ctx := context.Background()

	_, err := reg.Create(ctx, "u1")
	require.NoError(t, err)
	_, err = reg.Create(ctx, "u2")
	require.Error(t, err)

	uid, err := reg.Validate("fixed")
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)
}

func TestRegistry_Restore(t *testing.T) {
	clock := newFakeClock()
	now := clock.Now()
	ctx := context.Background()

	store := &mockStore{}
	store.On("List", ctx).Return([]domain.Session{
		{Token: "old-u1", UserID: "u1", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(time.Hour)},
		{Token: "new-u1", UserID: "u1", CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(time.Hour)},
		{Token: "expired-u2", UserID: "u2", CreatedAt: now.Add(-3 * time.Hour), ExpiresAt: now.Add(-time.Hour)},
		{Token: "live-u3", UserID: "u3", CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(time.Hour)},
	}, nil)
	store.On("Delete", ctx, "old-u1").Return(nil).Once()
	store.On("Delete", ctx, "expired-u2").Return(nil).Once()

	reg := session.New(time.Hour, session.WithClock(clock.Now), session.WithStore(store))
	restored, err := reg.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, restored)

	uid, err := reg.Validate("new-u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)

	_, err = reg.Validate("old-u1")
	assert.ErrorIs(t, err, domain.ErrSessionInvalid)
	_, err = reg.Validate("expired-u2")
	assert.ErrorIs(t, err, domain.ErrSessionInvalid)

	store.AssertExpectations(t)
}

func TestRegistry_SlowSaveOfReplacedSessionIsNotRestored(t *testing.T) {
	ctx := context.Background()
	var seq atomic.Int64
	tokens := session.WithTokenGenerator(func() (string, error) {
		return fmt.Sprintf("tok-%d", seq.Add(1)), nil
	})
	store := newHeldStore("tok-1")
	reg := session.New(time.Hour, tokens, session.WithStore(store))

	first := make(chan *domain.Session, 1)
	go func() {
		s, err := reg.Create(ctx, "u1")
		assert.NoError(t, err)
		first <- s
	}()
	<-store.entered

	second, err := reg.Create(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, reg.Revoke(ctx, second.Token))

	close(store.release)
	s1 := <-first
	require.NotNil(t, s1)
	assert.Equal(t, "tok-1", s1.Token)

	persisted, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)

	restarted := session.New(time.Hour, session.WithStore(store))
	restored, err := restarted.Restore(ctx)
	require.NoError(t, err)
	assert.Zero(t, restored)

	_, err = restarted.Validate(s1.Token)
	assert.ErrorIs(t, err, domain.ErrSessionInvalid)
}

func TestRegistry_RestoreWithoutStore(t *testing.T) {
	restored, err := session.New(time.Hour).Restore(context.Background())
	require.NoError(t, err)
	assert.Zero(t, restored)
}

func TestRegistry_RestoreListError(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("List", ctx).Return(nil, errors.New("unreachable"))

	_, err := session.New(time.Hour, session.WithStore(store)).Restore(ctx)
	assert.Error(t, err)
}
