package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	authUC "github.com/fastygo/tasktracker/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register a user and open a session
// @Tags auth
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterRequest
	if !h.decode(ctx, &req) {
		return
	}
	profile, err := req.Validate()
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, session, err := h.uc.Register(stdCtx, authUC.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Profile:  profile,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.NewAuthResponse(user, session))
}

// @Summary Log in, replacing any previous session
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if !h.decode(ctx, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, session, err := h.uc.Login(stdCtx, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewAuthResponse(user, session))
}

// @Summary Revoke the bearer session
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, httpcontext.BearerToken(ctx)); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "logged out"})
}

// @Summary Check whether a token is active
// @Tags auth
// @Router /api/v1/auth/validate [post]
func (h *AuthHandler) Validate(ctx *fasthttp.RequestCtx) {
	token := httpcontext.BearerToken(ctx)
	if len(ctx.PostBody()) > 0 {
		var req transport.ValidateRequest
		if !h.decode(ctx, &req) {
			return
		}
		if req.Token != "" {
			token = req.Token
		}
	}

	userID, ok := h.uc.ValidateSession(token)
	h.respondSuccess(ctx, http.StatusOK, transport.ValidateResponse{Valid: ok, UserID: userID})
}
