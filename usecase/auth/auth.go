// Package auth implements registration, login and logout on top of the session
// registry, and the guard that turns bearer tokens into owner-checked identities.
package auth

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/password"
	"github.com/fastygo/tasktracker/repository"
	"github.com/fastygo/tasktracker/usecase"
)

// SessionRegistry is the part of session.Registry the authenticator and guard use.
type SessionRegistry interface {
	Create(ctx context.Context, userID string) (*domain.Session, error)
	Validate(token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Email    string
	Password string
	Profile  domain.Profile
}

type UseCase struct {
	users    repository.UserRepository
	sessions SessionRegistry
	hasher   password.Hasher
	events   usecase.AuthEvents
	logger   *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

func New(
	users repository.UserRepository,
	sessions SessionRegistry,
	hasher password.Hasher,
	events usecase.AuthEvents,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = usecase.NopAuthEvents{}
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		events:   events,
		logger:   logger,
	}
}

// Register creates a user and signs them in.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*domain.User, *domain.Session, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, nil, domain.ErrInvalidPayload
	}

	_, err := uc.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		uc.events.Registration(usecase.OutcomeEmailExists)
		return nil, nil, domain.ErrEmailExists
	case !errors.Is(err, domain.ErrUserNotFound):
		uc.events.Registration(usecase.OutcomeUnavailable)
		uc.logger.Error("credential lookup failed", zap.Error(err))
		return nil, nil, domain.Unavailable("credential store unavailable", err)
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, nil, domain.WrapError(domain.ErrCodeInternal, "failed to hash password", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
	}
	user.ApplyProfile(in.Profile)

	if err := uc.users.Insert(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailExists) {
			uc.events.Registration(usecase.OutcomeEmailExists)
			return nil, nil, domain.ErrEmailExists
		}
		uc.events.Registration(usecase.OutcomeUnavailable)
		uc.logger.Error("credential insert failed", zap.Error(err))
		return nil, nil, domain.Unavailable("credential store unavailable", err)
	}

	s, err := uc.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	uc.events.Registration(usecase.OutcomeSuccess)
	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, s, nil
}

// Login verifies credentials and issues a session, replacing any session the user
// already had. Unknown email and wrong password fail identically.
func (uc *UseCase) Login(ctx context.Context, email, pw string) (*domain.User, *domain.Session, error) {
	user, err := uc.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			uc.events.Login(usecase.OutcomeUnavailable)
			uc.logger.Error("credential lookup failed", zap.Error(err))
			return nil, nil, domain.Unavailable("credential store unavailable", err)
		}
		// same work as a real verification
		_, _ = uc.hasher.Verify(pw, uc.dummy())
		uc.events.Login(usecase.OutcomeInvalidCredentials)
		return nil, nil, domain.ErrInvalidCredentials
	}

	ok, err := uc.hasher.Verify(pw, user.PasswordHash)
	if err != nil {
		uc.logger.Error("stored password hash is malformed", zap.String("user_id", user.ID), zap.Error(err))
	}
	if err != nil || !ok {
		uc.events.Login(usecase.OutcomeInvalidCredentials)
		return nil, nil, domain.ErrInvalidCredentials
	}

	s, err := uc.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	uc.events.Login(usecase.OutcomeSuccess)
	uc.logger.Info("user logged in", zap.String("user_id", user.ID))
	return user, s, nil
}

// Logout revokes the session behind token.
func (uc *UseCase) Logout(ctx context.Context, token string) error {
	if token == "" {
		uc.events.Logout(usecase.OutcomeInvalidSession)
		return domain.ErrInvalidSession
	}
	if err := uc.sessions.Revoke(ctx, token); err != nil {
		uc.events.Logout(usecase.OutcomeInvalidSession)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrInvalidSession
		}
		return err
	}
	uc.events.Logout(usecase.OutcomeSuccess)
	return nil
}

// ValidateSession reports whether token belongs to an active session and whose it is.
func (uc *UseCase) ValidateSession(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	userID, err := uc.sessions.Validate(token)
	if err != nil {
		return "", false
	}
	return userID, true
}

func (uc *UseCase) dummy() string {
	uc.dummyOnce.Do(func() {
		token, err := password.RandomString(24)
		if err != nil {
			token = "unmatchable-placeholder"
		}
		hash, err := uc.hasher.Hash(token)
		if err != nil {
			uc.logger.Warn("dummy hash generation failed", zap.Error(err))
			return
		}
		uc.dummyHash = hash
	})
	return uc.dummyHash
}
