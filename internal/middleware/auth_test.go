package middleware

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
)

type stubGuard map[string]string

func (g stubGuard) AuthenticateRequest(token string) (string, error) {
	if token == "" {
		return "", domain.ErrMissingCredential
	}
	if id, ok := g[token]; ok {
		return id, nil
	}
	return "", domain.ErrInvalidToken
}

func TestSessionAuth(t *testing.T) {
	guard := stubGuard{"good-token": "user-1"}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
		wantError  string
	}{
		{name: "valid", header: "Bearer good-token", wantStatus: http.StatusOK, wantUser: "user-1"},
		{name: "missing", wantStatus: http.StatusUnauthorized, wantError: domain.ErrMissingCredential.Message},
		{name: "malformed", header: "good-token", wantStatus: http.StatusUnauthorized, wantError: domain.ErrMissingCredential.Message},
		{name: "unknown", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantError: domain.ErrInvalidToken.Message},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := SessionAuth(guard, nil)(func(ctx *fasthttp.RequestCtx) {
				seen = httpcontext.Identity(ctx)
				ctx.SetStatusCode(http.StatusOK)
			})

			var ctx fasthttp.RequestCtx
			if tt.header != "" {
				ctx.Request.Header.Set(fasthttp.HeaderAuthorization, tt.header)
			}
			handler(&ctx)

			assert.Equal(t, tt.wantStatus, ctx.Response.StatusCode())
			assert.Equal(t, tt.wantUser, seen)
			if tt.wantError == "" {
				return
			}
			var env transport.Envelope
			require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
			assert.Equal(t, "UNAUTHENTICATED", env.Code)
			assert.Equal(t, tt.wantError, env.Error)
		})
	}
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := AccessLog(zap.New(core))(func(ctx *fasthttp.RequestCtx) {
		httpcontext.SetIdentity(ctx, "user-1")
		ctx.SetStatusCode(http.StatusCreated)
	})

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(http.MethodPost)
	ctx.Request.SetRequestURI("/api/v1/tasks")
	ctx.Request.Header.Set(fasthttp.HeaderAuthorization, "Bearer secret-token")
	handler(&ctx)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusCreated), fields["status"])
	assert.Equal(t, "user-1", fields["user_id"])
	assert.Equal(t, "/api/v1/tasks", fields["path"])
	for _, v := range fields {
		if s, ok := v.(string); ok {
			assert.NotContains(t, s, "secret-token")
		}
	}
}
