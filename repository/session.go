package repository

import (
	"context"

	"github.com/fastygo/tasktracker/domain"
)

// SessionStore persists registry sessions so they survive a restart of the node.
// The registry stays authoritative; stores are written through and read once at boot.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, token string) error
	List(ctx context.Context) ([]domain.Session, error)
	Close() error
}
