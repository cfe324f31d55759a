package repository

import (
	"context"

	"github.com/fastygo/tasktracker/domain"
)

// UserRepository is the credential store. Emails are stored normalized and are unique.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmail returns domain.ErrUserNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Insert returns domain.ErrEmailExists when the email is already taken.
	Insert(ctx context.Context, user *domain.User) error
	UpdateProfile(ctx context.Context, user *domain.User) error
}
