package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
)

// Authenticator resolves a bearer token to a user id; auth.Guard implements it.
type Authenticator interface {
	AuthenticateRequest(token string) (string, error)
}

// SessionAuth rejects requests without an active session and attaches the caller's identity otherwise.
func SessionAuth(guard Authenticator, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			userID, err := guard.AuthenticateRequest(httpcontext.BearerToken(ctx))
			if err != nil {
				logger.Debug("request rejected",
					zap.String("path", string(ctx.Path())),
					zap.String("request_id", httpcontext.RequestID(ctx)),
					zap.String("reason", err.Error()))
				unauthorized(ctx, err)
				return
			}

			httpcontext.SetIdentity(ctx, userID)
			next(ctx)
		}
	}
}

func unauthorized(ctx *fasthttp.RequestCtx, err error) {
	message := domain.ErrInvalidToken.Message
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		message = dErr.Message
	}
	body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeUnauthenticated), message, nil))
	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.Header.Set("WWW-Authenticate", `Bearer realm="api"`)
	ctx.SetStatusCode(http.StatusUnauthorized)
	ctx.SetBody(body)
}
