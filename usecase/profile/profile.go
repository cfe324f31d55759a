package profile

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

// GetProfile returns the caller's own user record.
func (uc *UseCase) GetProfile(ctx context.Context, identity string) (*domain.User, error) {
	if identity == "" {
		return nil, domain.ErrMissingCredential
	}
	user, err := uc.users.GetByID(ctx, identity)
	if err != nil {
		return nil, uc.storeError(err)
	}
	return user, nil
}

// UpdateProfile overwrites the caller's profile attributes. Email and password are untouched.
func (uc *UseCase) UpdateProfile(ctx context.Context, identity string, p domain.Profile) (*domain.User, error) {
	user, err := uc.GetProfile(ctx, identity)
	if err != nil {
		return nil, err
	}
	user.ApplyProfile(p)
	if err := uc.users.UpdateProfile(ctx, user); err != nil {
		return nil, uc.storeError(err)
	}
	return user, nil
}

func (uc *UseCase) storeError(err error) error {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	uc.logger.Error("credential store failure", zap.Error(err))
	return domain.Unavailable("credential store unavailable", err)
}
