package auth

import (
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/usecase"
)

// TokenValidator resolves a token to the user owning an active session.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// Guard authenticates bearer tokens and enforces resource ownership.
type Guard struct {
	sessions TokenValidator
	events   usecase.AuthEvents
	logger   *zap.Logger
}

func NewGuard(sessions TokenValidator, events usecase.AuthEvents, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = usecase.NopAuthEvents{}
	}
	return &Guard{sessions: sessions, events: events, logger: logger}
}

// AuthenticateRequest returns the identity behind token.
// An absent token yields domain.ErrMissingCredential, an unusable one domain.ErrInvalidToken.
func (g *Guard) AuthenticateRequest(token string) (string, error) {
	if token == "" {
		g.events.Authorization(usecase.CheckAuthenticate, usecase.OutcomeUnauthenticated)
		return "", domain.ErrMissingCredential
	}
	userID, err := g.sessions.Validate(token)
	if err != nil {
		g.events.Authorization(usecase.CheckAuthenticate, usecase.OutcomeUnauthenticated)
		return "", domain.ErrInvalidToken
	}
	g.events.Authorization(usecase.CheckAuthenticate, usecase.OutcomeSuccess)
	return userID, nil
}

// AuthorizeOwner permits the request only when identity owns the resource.
func (g *Guard) AuthorizeOwner(identity, owner string) error {
	if identity == "" {
		g.events.Authorization(usecase.CheckOwnership, usecase.OutcomeUnauthenticated)
		return domain.ErrMissingCredential
	}
	if identity != owner {
		g.events.Authorization(usecase.CheckOwnership, usecase.OutcomeForbidden)
		g.logger.Warn("ownership check failed", zap.String("user_id", identity), zap.String("owner_id", owner))
		return domain.ErrForbidden
	}
	g.events.Authorization(usecase.CheckOwnership, usecase.OutcomeSuccess)
	return nil
}
