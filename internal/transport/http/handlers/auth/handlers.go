package authhandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hrms/internal/domain/auth"
	"hrms/internal/requestctx"
	"hrms/internal/transport/http/shared"
)

type Service interface {
	Login(ctx context.Context, in auth.LoginInput) (auth.LoginResult, error)
	Me(ctx context.Context, userID int64) (auth.User, error)
}

type Handler struct {
	Service Service
	Logger  *zap.Logger
	// LoginGuard wraps the login route, typically with a rate limiter.
	LoginGuard func(http.Handler) http.Handler
}

func NewHandler(service Service, logger *zap.Logger, loginGuard func(http.Handler) http.Handler) *Handler {
	return &Handler{Service: service, Logger: logger, LoginGuard: loginGuard}
}

// RegisterPublicRoutes mounts the routes reachable without a token.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	if h.LoginGuard != nil {
		r.With(h.LoginGuard).Post("/auth/login", h.handleLogin)
		return
	}
	r.Post("/auth/login", h.handleLogin)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.handleMe)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload auth.LoginInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.Fail(w, r, err)
		return
	}
	result, err := h.Service.Login(r.Context(), payload)
	if err != nil {
		h.Logger.Info("login failed",
			zap.String("username", payload.Username),
			zap.String("requestId", requestctx.GetRequestID(r.Context())),
		)
	}
	shared.Respond(w, r, result, err)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, err := shared.CurrentUser(r)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	user, err := h.Service.Me(r.Context(), principal.UserID)
	shared.Respond(w, r, user, err)
}
