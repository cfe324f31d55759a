package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/internal/infrastructure/monitor"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
)

// StatusSource reports dependency health; *monitor.Monitor implements it.
type StatusSource interface {
	GetStatus() monitor.Status
}

// SessionCounter reports the number of live sessions.
type SessionCounter interface {
	Len() int
}

type HealthHandler struct {
	baseHandler
	monitor  StatusSource
	sessions SessionCounter
}

func NewHealthHandler(mon StatusSource, sessions SessionCounter, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		sessions:    sessions,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := monitor.Status{Services: map[string]bool{}}
	if h.monitor != nil {
		status = h.monitor.GetStatus()
	}
	payload := map[string]interface{}{
		"timestamp":  time.Now().UTC(),
		"services":   status.Services,
		"last_check": status.LastCheck,
	}
	if h.sessions != nil {
		payload["active_sessions"] = h.sessions.Len()
	}

	if status.Healthy() {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "dependencies unhealthy", payload))
}
