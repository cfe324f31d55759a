package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	appLogger "github.com/fastygo/tasktracker/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

// respondError writes the mapped status and the error's public message. Wrapped causes stay in the log.
func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	message := "internal server error"
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		message = dErr.Message
	}
	if status >= http.StatusInternalServerError {
		stdCtx := appLogger.ContextWithRequestID(context.Background(), httpcontext.RequestID(ctx))
		appLogger.WithRequestID(stdCtx, h.logger).Error("request failed",
			zap.String("code", code),
			zap.ByteString("path", ctx.Path()),
			zap.Error(err))
	}
	h.respondJSON(ctx, status, transport.NewError(code, message, nil))
}

func (h baseHandler) badRequest(ctx *fasthttp.RequestCtx, message string) {
	h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), message, nil))
}

// decode unmarshals the body into dst, answering 400 on failure.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		h.badRequest(ctx, "invalid payload")
		return false
	}
	return true
}

// identity returns the caller set by the session middleware.
func (h baseHandler) identity(ctx *fasthttp.RequestCtx) (string, bool) {
	userID := httpcontext.Identity(ctx)
	if userID == "" {
		h.respondError(ctx, domain.ErrMissingCredential)
		return "", false
	}
	return userID, true
}

var statusByCode = map[domain.ErrorCode]int{
	domain.ErrCodeInvalid:            http.StatusBadRequest,
	domain.ErrCodeInvalidCredentials: http.StatusUnauthorized,
	domain.ErrCodeInvalidSession:     http.StatusUnauthorized,
	domain.ErrCodeUnauthenticated:    http.StatusUnauthorized,
	domain.ErrCodeForbidden:          http.StatusForbidden,
	domain.ErrCodeNotFound:           http.StatusNotFound,
	domain.ErrCodeEmailExists:        http.StatusConflict,
	domain.ErrCodeUnavailable:        http.StatusServiceUnavailable,
}

func mapError(err error) (int, string) {
	code := domain.CodeOf(err)
	if status, ok := statusByCode[code]; ok {
		return status, string(code)
	}
	return http.StatusInternalServerError, string(domain.ErrCodeInternal)
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
