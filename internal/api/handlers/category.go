package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pxtester/showcase/internal/api"
	"github.com/pxtester/showcase/internal/api/middleware"
	"github.com/pxtester/showcase/internal/domain"
)

type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
	Create(ctx context.Context, actor domain.Actor, name, description string) (*domain.Category, error)
}

type CategoryHandler struct {
	svc CategoryService
}

func NewCategoryHandler(svc CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	SiteCount   int64  `json:"site_count"`
	CreatedAt   string `json:"created_at"`
}

type CategoriesResponse struct {
	Categories []*CategoryResponse `json:"categories"`
}

type CreateCategoryResponse struct {
	Success  bool              `json:"success"`
	Category *CategoryResponse `json:"category"`
}

func categoryToResponse(c *domain.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		SiteCount:   c.SiteCount,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := CategoriesResponse{Categories: make([]*CategoryResponse, 0, len(categories))}
	for _, c := range categories {
		resp.Categories = append(resp.Categories, categoryToResponse(c))
	}

	api.JSON(w, http.StatusOK, resp)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		api.Error(w, http.StatusBadRequest, "category name is required")
		return
	}

	category, err := h.svc.Create(r.Context(), actor, req.Name, req.Description)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, CreateCategoryResponse{
		Success:  true,
		Category: categoryToResponse(category),
	})
}
