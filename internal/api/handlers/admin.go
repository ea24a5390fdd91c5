package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pxtester/showcase/internal/api"
	"github.com/pxtester/showcase/internal/api/middleware"
	"github.com/pxtester/showcase/internal/domain"
)

type ModerationService interface {
	ListPending(ctx context.Context, actor domain.Actor) ([]*domain.Site, error)
	Approve(ctx context.Context, actor domain.Actor, id string) error
	Reject(ctx context.Context, actor domain.Actor, id string) error
}

type AdminHandler struct {
	svc ModerationService
}

func NewAdminHandler(svc ModerationService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) Pending(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sites, err := h.svc.ListPending(r.Context(), actor)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, SitesResponse{Sites: sitesToResponse(sites)})
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.svc.Approve)
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.svc.Reject)
}

func (h *AdminHandler) moderate(w http.ResponseWriter, r *http.Request, apply func(context.Context, domain.Actor, string) error) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := apply(r.Context(), actor, id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, StatusResponse{Success: true})
}
