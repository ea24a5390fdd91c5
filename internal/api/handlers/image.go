package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pxtester/showcase/internal/api"
	"github.com/pxtester/showcase/internal/api/middleware"
	"github.com/pxtester/showcase/internal/domain"
	"github.com/pxtester/showcase/internal/service"
)

// imageFormField is the multipart field carrying the upload.
const imageFormField = "image"

type ImageService interface {
	Upload(ctx context.Context, actor domain.Actor, input service.UploadImageInput) (string, error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

type ImageHandler struct {
	svc ImageService
}

func NewImageHandler(svc ImageService) *ImageHandler {
	return &ImageHandler{svc: svc}
}

type UploadImageResponse struct {
	URL string `json:"url"`
}

func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(service.MaxImageBytes); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(imageFormField)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid image file")
		return
	}
	defer file.Close()

	url, err := h.svc.Upload(r.Context(), actor, service.UploadImageInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		Size:        header.Size,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, UploadImageResponse{URL: url})
}

// Screenshot redirects to a short-lived link for a stored image.
func (h *ImageHandler) Screenshot(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		api.Error(w, http.StatusBadRequest, "key is required")
		return
	}

	url, err := h.svc.DownloadURL(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			api.Error(w, http.StatusNotFound, "screenshot not found")
			return
		}
		api.HandleError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	http.Redirect(w, r, url, http.StatusFound)
}
