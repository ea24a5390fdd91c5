package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/pxtester/showcase/internal/domain"
	"github.com/pxtester/showcase/internal/telemetry"
)

// ScreenshotPathPrefix is the public path under which stored images are served.
const ScreenshotPathPrefix = "/screenshots/"

// MaxImageBytes caps a single upload.
const MaxImageBytes = 5 << 20

var imageKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// StorageClientInterface is the blob store used for site images
type StorageClientInterface interface {
	PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	HeadObject(ctx context.Context, key string) error
}

// ImageService stores site thumbnails and hands out links to them
type ImageService struct {
	storage StorageClientInterface
	now     func() time.Time
}

// NewImageService creates an ImageService; storage may be nil when no bucket is configured.
func NewImageService(storage StorageClientInterface) *ImageService {
	return &ImageService{storage: storage, now: time.Now}
}

// UploadImageInput is one admin image upload
type UploadImageInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// Upload stores an image under site-<unix millis>.<ext> and returns its public path.
func (s *ImageService) Upload(ctx context.Context, actor domain.Actor, input UploadImageInput) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "ImageService.Upload", telemetry.SpanAttributes{
		UserID:    actor.UserID,
		Operation: "upload_image",
	})
	defer span.End()

	if !actor.Role.AtLeast(domain.RoleAdmin) {
		return "", domain.ErrForbidden
	}
	if s.storage == nil {
		return "", domain.ErrStorageUnavailable
	}
	if !strings.HasPrefix(input.ContentType, "image/") {
		return "", domain.ErrInvalidImageType
	}
	if input.Size <= 0 || input.Size > MaxImageBytes {
		return "", fmt.Errorf("%w: image must be between 1 byte and %d bytes", domain.ErrMissingRequiredField, MaxImageBytes)
	}

	key := s.imageKey(input.Filename)
	if err := s.storage.PutObject(ctx, key, input.ContentType, input.Body, input.Size); err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, domain.ErrStorageOperationFail.Message, err)
	}

	return ScreenshotPathPrefix + key, nil
}

// DownloadURL returns a short-lived link to a stored image.
func (s *ImageService) DownloadURL(ctx context.Context, key string) (string, error) {
	if s.storage == nil {
		return "", domain.ErrStorageUnavailable
	}
	if !imageKeyPattern.MatchString(key) {
		return "", domain.ErrObjectNotFound
	}
	if err := s.storage.HeadObject(ctx, key); err != nil {
		return "", err
	}
	return s.storage.GenerateDownloadURL(ctx, key)
}

func (s *ImageService) imageKey(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if ext == "" || !imageKeyPattern.MatchString(ext) {
		ext = "png"
	}
	return fmt.Sprintf("site-%d.%s", s.now().UnixMilli(), ext)
}
