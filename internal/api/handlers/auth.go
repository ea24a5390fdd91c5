package handlers

import (
	"context"
	"net/http"

	"github.com/pxtester/showcase/internal/api"
	"github.com/pxtester/showcase/internal/api/middleware"
	"github.com/rs/zerolog"
)

type SessionRevoker interface {
	Delete(ctx context.Context, token string) error
}

type AuthHandler struct {
	sessions SessionRevoker
	logger   zerolog.Logger
}

func NewAuthHandler(sessions SessionRevoker, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, logger: logger}
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

type MeResponse struct {
	User *UserResponse `json:"user"`
}

// Me returns the signed-in user, or {"user": null} for anonymous callers.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.JSON(w, http.StatusOK, MeResponse{})
		return
	}

	api.JSON(w, http.StatusOK, MeResponse{User: &UserResponse{
		ID:    actor.UserID,
		Email: actor.Email,
		Name:  actor.Name,
		Role:  string(actor.Role),
	}})
}

// Logout revokes the session token, if any, and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		if err := h.sessions.Delete(r.Context(), token); err != nil {
			h.logger.Warn().Err(err).Msg("failed to revoke session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	api.JSON(w, http.StatusOK, StatusResponse{Success: true})
}
