package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pxtester/showcase/internal/api"
	"github.com/pxtester/showcase/internal/api/middleware"
	"github.com/pxtester/showcase/internal/domain"
	"github.com/pxtester/showcase/internal/pagination"
	"github.com/pxtester/showcase/internal/service"
)

type SiteService interface {
	Create(ctx context.Context, input service.CreateSiteInput) (*domain.Site, error)
	Get(ctx context.Context, id string) (*service.SiteDetail, error)
	List(ctx context.Context, input service.ListSitesInput) (*pagination.PageResult[*domain.Site], error)
	ListMine(ctx context.Context, userID string) ([]*domain.Site, error)
	Update(ctx context.Context, actor domain.Actor, input service.UpdateSiteInput) (*domain.Site, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	Like(ctx context.Context, id string) (int64, error)
}

type SiteHandler struct {
	svc SiteService
}

func NewSiteHandler(svc SiteService) *SiteHandler {
	return &SiteHandler{svc: svc}
}

type CreateSiteRequest struct {
	Name             string   `json:"name"`
	URL              string   `json:"url"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description"`
	Category         string   `json:"category"`
	Tags             []string `json:"tags"`
	ThumbnailURL     string   `json:"thumbnail_url"`
}

// UpdateSiteRequest is a partial update; absent fields are left alone.
type UpdateSiteRequest struct {
	Name             *string  `json:"name"`
	URL              *string  `json:"url"`
	Description      *string  `json:"description"`
	ShortDescription *string  `json:"short_description"`
	Category         *string  `json:"category"`
	Tags             []string `json:"tags"`
	ThumbnailURL     *string  `json:"thumbnail_url"`
	IsFeatured       *bool    `json:"is_featured"`
}

type SiteResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	URL              string   `json:"url"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description"`
	Category         string   `json:"category"`
	Tags             []string `json:"tags"`
	ThumbnailURL     string   `json:"thumbnail_url,omitempty"`
	UserID           string   `json:"user_id"`
	Status           string   `json:"status"`
	Views            int64    `json:"views"`
	Likes            int64    `json:"likes"`
	IsFeatured       bool     `json:"is_featured"`
	SubmittedAt      string   `json:"submitted_at"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

type SiteListResponse struct {
	Sites      []*SiteResponse `json:"sites"`
	Pagination pagination.Meta `json:"pagination"`
}

type SiteDetailResponse struct {
	Site         *SiteResponse   `json:"site"`
	SimilarSites []*SiteResponse `json:"similarSites"`
}

type SitesResponse struct {
	Sites []*SiteResponse `json:"sites"`
}

type CreateSiteResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

type LikeResponse struct {
	Likes int64 `json:"likes"`
}

type StatusResponse struct {
	Success bool `json:"success"`
}

func siteToResponse(s *domain.Site) *SiteResponse {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return &SiteResponse{
		ID:               s.ID,
		Name:             s.Name,
		URL:              s.URL,
		Description:      s.Description,
		ShortDescription: s.ShortDescription,
		Category:         s.Category,
		Tags:             tags,
		ThumbnailURL:     s.ThumbnailURL,
		UserID:           s.UserID,
		Status:           string(s.Status),
		Views:            s.Views,
		Likes:            s.Likes,
		IsFeatured:       s.IsFeatured,
		SubmittedAt:      s.SubmittedAt.Format(time.RFC3339),
		CreatedAt:        s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        s.UpdatedAt.Format(time.RFC3339),
	}
}

func sitesToResponse(sites []*domain.Site) []*SiteResponse {
	out := make([]*SiteResponse, 0, len(sites))
	for _, s := range sites {
		out = append(out, siteToResponse(s))
	}
	return out
}

func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	category := q.Get("category")
	if category == "all" {
		category = ""
	}

	page, err := h.svc.List(r.Context(), service.ListSitesInput{
		Category: category,
		Featured: q.Get("featured") == "true",
		Sort:     domain.ParseSiteSort(q.Get("sort")),
		Page:     pagination.Parse(q.Get("page"), q.Get("limit")),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, SiteListResponse{
		Sites:      sitesToResponse(page.Items),
		Pagination: page.Pagination,
	})
}

func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.URL == "" || req.Category == "" {
		api.Error(w, http.StatusBadRequest, "name, url and category are required")
		return
	}

	site, err := h.svc.Create(r.Context(), service.CreateSiteInput{
		UserID:           actor.UserID,
		Name:             req.Name,
		URL:              req.URL,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Category:         req.Category,
		Tags:             req.Tags,
		ThumbnailURL:     req.ThumbnailURL,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, CreateSiteResponse{
		Success: true,
		ID:      site.ID,
		Message: "site submitted for review",
	})
}

func (h *SiteHandler) Mine(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sites, err := h.svc.ListMine(r.Context(), actor.UserID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, SitesResponse{Sites: sitesToResponse(sites)})
}

func (h *SiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	detail, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, SiteDetailResponse{
		Site:         siteToResponse(detail.Site),
		SimilarSites: sitesToResponse(detail.Related),
	})
}

func (h *SiteHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req UpdateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.svc.Update(r.Context(), actor, service.UpdateSiteInput{
		SiteID:           id,
		Name:             req.Name,
		URL:              req.URL,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Category:         req.Category,
		Tags:             req.Tags,
		ThumbnailURL:     req.ThumbnailURL,
		IsFeatured:       req.IsFeatured,
	}); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, StatusResponse{Success: true})
}

func (h *SiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, StatusResponse{Success: true})
}

func (h *SiteHandler) Like(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	likes, err := h.svc.Like(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, LikeResponse{Likes: likes})
}
