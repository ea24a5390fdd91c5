package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pxtester/showcase/internal/api"
	"github.com/pxtester/showcase/internal/api/middleware"
	"github.com/pxtester/showcase/internal/service"
	"github.com/rs/zerolog"
)

type SearchService interface {
	Search(ctx context.Context, query string, limit int) ([]service.SearchHit, error)
	Similar(ctx context.Context, siteID string, limit int) ([]service.SemanticHit, error)
}

type SearchHandler struct {
	svc    SearchService
	logger zerolog.Logger
}

func NewSearchHandler(svc SearchService, logger zerolog.Logger) *SearchHandler {
	return &SearchHandler{svc: svc, logger: logger}
}

// SearchHitResponse is a site plus where the hit came from. Score is only
// present for semantic hits.
type SearchHitResponse struct {
	*SiteResponse
	Source string   `json:"source"`
	Score  *float32 `json:"score,omitempty"`
}

type SearchResponse struct {
	Sites []*SearchHitResponse `json:"sites"`
	Query string               `json:"query"`
	Count int                  `json:"count"`
}

type hitListResponse struct {
	Sites []*SearchHitResponse `json:"sites"`
}

type searchErrorResponse struct {
	Error string               `json:"error"`
	Sites []*SearchHitResponse `json:"sites"`
}

func hitToResponse(hit service.SearchHit) *SearchHitResponse {
	resp := &SearchHitResponse{
		SiteResponse: siteToResponse(hit.HitSite()),
		Source:       string(hit.Source()),
	}
	if score, ok := hit.HitScore(); ok {
		resp.Score = &score
	}
	return resp
}

func parseLimit(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		api.JSON(w, http.StatusOK, hitListResponse{Sites: []*SearchHitResponse{}})
		return
	}

	hits, err := h.svc.Search(r.Context(), query, parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("query", query).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("search failed")
		api.JSON(w, http.StatusInternalServerError, searchErrorResponse{
			Error: "search failed",
			Sites: []*SearchHitResponse{},
		})
		return
	}

	sites := make([]*SearchHitResponse, 0, len(hits))
	for _, hit := range hits {
		sites = append(sites, hitToResponse(hit))
	}

	api.JSON(w, http.StatusOK, SearchResponse{
		Sites: sites,
		Query: query,
		Count: len(sites),
	})
}

func (h *SearchHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	hits, err := h.svc.Similar(r.Context(), id, parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		if api.DomainErrorToHTTP(err) >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Str("site_id", id).Msg("similar sites lookup failed")
		}
		api.HandleError(w, err)
		return
	}

	sites := make([]*SearchHitResponse, 0, len(hits))
	for _, hit := range hits {
		sites = append(sites, hitToResponse(hit))
	}

	api.JSON(w, http.StatusOK, hitListResponse{Sites: sites})
}
