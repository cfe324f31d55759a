// Package session owns the live session table: token issuance, the
// one-session-per-user policy, expiry and revocation.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	appLogger "github.com/fastygo/tasktracker/pkg/logger"
	"github.com/fastygo/tasktracker/repository"
)

// DefaultTTL is the session lifetime used when none is configured.
const DefaultTTL = 5 * 365 * 24 * time.Hour

const tokenBytes = 32

// Option customises a Registry.
type Option func(*Registry)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithStore writes sessions through to store so Restore can reload them.
func WithStore(store repository.SessionStore) Option {
	return func(r *Registry) { r.store = store }
}

// WithTokenGenerator replaces the crypto/rand token source.
func WithTokenGenerator(gen func() (string, error)) Option {
	return func(r *Registry) {
		if gen != nil {
			r.newToken = gen
		}
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Registry maps tokens to sessions. It holds at most one session per user.
type Registry struct {
	mu      sync.RWMutex
	byToken map[string]*domain.Session
	byUser  map[string]string

	ttl      time.Duration
	now      func() time.Time
	newToken func() (string, error)
	store    repository.SessionStore
	logger   *zap.Logger
}

// New builds an empty registry. A non-positive ttl selects DefaultTTL.
func New(ttl time.Duration, opts ...Option) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	r := &Registry{
		byToken:  make(map[string]*domain.Session),
		byUser:   make(map[string]string),
		ttl:      ttl,
		now:      time.Now,
		newToken: GenerateToken,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TTL returns the configured session lifetime.
func (r *Registry) TTL() time.Duration {
	return r.ttl
}

// Create issues a session for userID and invalidates the user's previous one.
func (r *Registry) Create(ctx context.Context, userID string) (*domain.Session, error) {
	if userID == "" {
		return nil, domain.ErrInvalidPayload
	}
	token, err := r.newToken()
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to generate session token", err)
	}

	now := r.now()
	created := &domain.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}

	r.mu.Lock()
	if _, clash := r.byToken[token]; clash {
		r.mu.Unlock()
		return nil, domain.NewError(domain.ErrCodeInternal, "session token collision")
	}
	replaced, hadPrevious := r.byUser[userID]
	if hadPrevious {
		delete(r.byToken, replaced)
	}
	r.byToken[token] = created
	r.byUser[userID] = token
	r.mu.Unlock()

	if hadPrevious {
		r.logger.Info("previous session replaced",
			zap.String("user_id", userID),
			appLogger.Token(replaced))
		r.forget(ctx, replaced)
	}
	r.persist(ctx, created)

	// A concurrent Create, Revoke or Sweep may have dropped the token while
	// Save was in flight and already issued its Delete.
	r.mu.RLock()
	_, live := r.byToken[token]
	r.mu.RUnlock()
	if !live {
		r.forget(ctx, token)
	}

	out := *created
	return &out, nil
}

// Resolve looks a token up without checking expiry.
func (r *Registry) Resolve(token string) (*domain.Session, error) {
	r.mu.RLock()
	found, ok := r.byToken[token]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	out := *found
	return &out, nil
}

// Validate returns the owning user of an active session.
// Unknown, revoked and expired tokens all yield domain.ErrSessionInvalid.
func (r *Registry) Validate(token string) (string, error) {
	found, err := r.Resolve(token)
	if err != nil {
		return "", domain.ErrSessionInvalid
	}
	if found.IsExpired(r.now()) {
		return "", domain.ErrSessionInvalid
	}
	return found.UserID, nil
}

// Revoke removes a session. Revoking an unknown token returns domain.ErrSessionNotFound.
func (r *Registry) Revoke(ctx context.Context, token string) error {
	r.mu.Lock()
	found, ok := r.byToken[token]
	if !ok {
		r.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	r.removeLocked(found)
	r.mu.Unlock()

	r.forget(ctx, token)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (r *Registry) Sweep(ctx context.Context) int {
	now := r.now()

	var expired []string
	r.mu.Lock()
	for token, s := range r.byToken {
		if s.IsExpired(now) {
			r.removeLocked(s)
			expired = append(expired, token)
		}
	}
	r.mu.Unlock()

	for _, token := range expired {
		r.forget(ctx, token)
	}
	return len(expired)
}

// Restore loads persisted sessions. Expired entries are discarded and only the
// newest session per user is kept, so the single-session policy holds after a restart.
func (r *Registry) Restore(ctx context.Context) (int, error) {
	if r.store == nil {
		return 0, nil
	}
	stored, err := r.store.List(ctx)
	if err != nil {
		return 0, err
	}

	now := r.now()
	var stale []string

	r.mu.Lock()
	for i := range stored {
		s := stored[i]
		if s.Token == "" || s.UserID == "" || s.IsExpired(now) {
			stale = append(stale, s.Token)
			continue
		}
		if current, ok := r.byUser[s.UserID]; ok {
			if !r.byToken[current].CreatedAt.Before(s.CreatedAt) {
				stale = append(stale, s.Token)
				continue
			}
			stale = append(stale, current)
			delete(r.byToken, current)
		}
		r.byToken[s.Token] = &s
		r.byUser[s.UserID] = s.Token
	}
	restored := len(r.byToken)
	r.mu.Unlock()

	for _, token := range stale {
		if token != "" {
			r.forget(ctx, token)
		}
	}
	return restored, nil
}

// Len reports the number of sessions held, including expired ones not yet swept.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byToken)
}

func (r *Registry) removeLocked(s *domain.Session) {
	delete(r.byToken, s.Token)
	if r.byUser[s.UserID] == s.Token {
		delete(r.byUser, s.UserID)
	}
}

func (r *Registry) persist(ctx context.Context, s *domain.Session) {
	if r.store == nil {
		return
	}
	if err := r.store.Save(ctx, s); err != nil {
		r.logger.Warn("session persist failed", zap.String("user_id", s.UserID), zap.Error(err))
	}
}

func (r *Registry) forget(ctx context.Context, token string) {
	if r.store == nil {
		return
	}
	if err := r.store.Delete(ctx, token); err != nil {
		r.logger.Warn("session delete failed", appLogger.Token(token), zap.Error(err))
	}
}

// GenerateToken returns 32 random bytes, hex encoded.
func GenerateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
