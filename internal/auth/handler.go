package auth

import (
	"log/slog"
	"net/http"

	"github.com/ayush/personal-library/internal/apperr"
	"github.com/ayush/personal-library/internal/httpx"
	"github.com/ayush/personal-library/internal/models"
	"github.com/ayush/personal-library/internal/requestctx"
)

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	resp, err := h.svc.Register(r.Context(), req)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeConflict {
			h.logger.WarnContext(r.Context(), "registration conflict")
		}
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user registered", slog.String("user_id", resp.User.ID))
	httpx.WriteJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	resp, err := h.svc.Login(r.Context(), req)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeUnauthenticated {
			h.logger.WarnContext(r.Context(), "login rejected")
		}
		httpx.WriteError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user logged in", slog.String("user_id", resp.User.ID))
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// Profile handles GET /api/auth/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestctx.UserID(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	user, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}
