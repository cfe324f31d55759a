package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/tasktracker/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeyIdentity   Key = "identity"
)

// identityValue is the fasthttp user value holding the authenticated user id.
// It must not collide with router path parameters such as {user_id}.
const identityValue = "httpcontext.identity"

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Timeout reports the per-request deadline.
func (a *Adapter) Timeout() time.Duration {
	return a.timeout
}

// Attach creates a context with timeout derived from the adapter and enriches it with request metadata.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := RequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}
	if id := Identity(ctx); id != "" {
		stdCtx = context.WithValue(stdCtx, KeyIdentity, id)
	}

	return stdCtx, cancel
}

// RequestID returns the request id echoed in X-Request-ID, generating one on first use.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if existing := string(ctx.Response.Header.Peek("X-Request-ID")); existing != "" {
		return existing
	}
	reqID := strings.TrimSpace(string(ctx.Request.Header.Peek("X-Request-ID")))
	if reqID == "" {
		reqID = uuid.NewString()
	}
	ctx.Response.Header.Set("X-Request-ID", reqID)
	return reqID
}

// SetIdentity records the authenticated user id on the request.
func SetIdentity(ctx *fasthttp.RequestCtx, userID string) {
	ctx.SetUserValue(identityValue, userID)
}

// Identity returns the authenticated user id, or "" for anonymous requests.
func Identity(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(identityValue).(string)
	return id
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// Any other shape yields "".
func BearerToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
