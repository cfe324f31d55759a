package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
)

// Endpoint describes one public route.
type Endpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Auth        bool   `json:"auth"`
	Description string `json:"description"`
}

// InfoHandler serves the API index at "/".
type InfoHandler struct {
	baseHandler
	name      string
	version   string
	endpoints []Endpoint
}

func NewInfoHandler(name, version string, endpoints []Endpoint) *InfoHandler {
	return &InfoHandler{
		baseHandler: newBaseHandler(nil, nil),
		name:        name,
		version:     version,
		endpoints:   endpoints,
	}
}

// @Summary API index
// @Tags info
// @Router / [get]
func (h *InfoHandler) Index(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"name":      h.name,
		"version":   h.version,
		"endpoints": h.endpoints,
	})
}
