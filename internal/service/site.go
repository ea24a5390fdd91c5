package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pxtester/showcase/internal/domain"
	"github.com/pxtester/showcase/internal/pagination"
	"github.com/pxtester/showcase/internal/telemetry"
	"github.com/rs/zerolog"
)

const relatedSitesLimit = 3

// SiteRepositoryInterface defines the repository interface for catalog operations
type SiteRepositoryInterface interface {
	Create(ctx context.Context, s *domain.Site) error
	GetByID(ctx context.Context, id string) (*domain.Site, error)
	GetByURL(ctx context.Context, url string) (*domain.Site, error)
	ListApproved(ctx context.Context, f domain.SiteFilter) ([]*domain.Site, int64, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Site, error)
	ListByStatus(ctx context.Context, status domain.SiteStatus) ([]*domain.Site, error)
	RandomInCategory(ctx context.Context, category, excludeID string, limit int) ([]*domain.Site, error)
	Update(ctx context.Context, s *domain.Site) error
	UpdateStatus(ctx context.Context, id string, status domain.SiteStatus) error
	IncrementViews(ctx context.Context, id string) error
	IncrementLikes(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) error
}

// EmbeddingJobRepositoryInterface defines the repository interface for queueing embedding jobs
type EmbeddingJobRepositoryInterface interface {
	Create(ctx context.Context, job *domain.EmbeddingJob) error
}

// VectorDeleter removes a site's vector from the index
type VectorDeleter interface {
	Delete(ctx context.Context, siteID string) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// SiteService handles submission, browsing and moderation of sites
type SiteService struct {
	repo     SiteRepositoryInterface
	txRunner TxRunner
	vectors  VectorDeleter
	uuidGen  UUIDGenerator
	logger   zerolog.Logger
}

// NewSiteService creates a new SiteService instance
func NewSiteService(repo SiteRepositoryInterface, txRunner TxRunner, vectors VectorDeleter, logger zerolog.Logger) *SiteService {
	return NewSiteServiceWithUUIDGen(repo, txRunner, vectors, &DefaultUUIDGenerator{}, logger)
}

// NewSiteServiceWithUUIDGen creates a new SiteService with a custom UUID generator
func NewSiteServiceWithUUIDGen(
	repo SiteRepositoryInterface,
	txRunner TxRunner,
	vectors VectorDeleter,
	uuidGen UUIDGenerator,
	logger zerolog.Logger,
) *SiteService {
	return &SiteService{
		repo:     repo,
		txRunner: txRunner,
		vectors:  vectors,
		uuidGen:  uuidGen,
		logger:   logger,
	}
}

// CreateSiteInput represents input for submitting a site
type CreateSiteInput struct {
	UserID           string
	Name             string
	URL              string
	Description      string
	ShortDescription string
	Category         string
	Tags             []string
	ThumbnailURL     string
}

// UpdateSiteInput carries a partial update; nil fields are left unchanged.
type UpdateSiteInput struct {
	SiteID           string
	Name             *string
	URL              *string
	Description      *string
	ShortDescription *string
	Category         *string
	Tags             []string
	ThumbnailURL     *string
	IsFeatured       *bool
}

// ListSitesInput represents input for browsing the catalog
type ListSitesInput struct {
	Category string
	Featured bool
	Sort     domain.SiteSort
	Page     pagination.Params
}

// SiteDetail is a site with a few others from the same category
type SiteDetail struct {
	Site    *domain.Site
	Related []*domain.Site
}

// Create submits a new site for moderation and queues its embedding.
func (s *SiteService) Create(ctx context.Context, input CreateSiteInput) (*domain.Site, error) {
	ctx, span := telemetry.StartSpan(ctx, "SiteService.Create", telemetry.SpanAttributes{
		UserID:    input.UserID,
		Category:  input.Category,
		Operation: "create",
	})
	defer span.End()

	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.URL) == "" || strings.TrimSpace(input.Category) == "" {
		return nil, fmt.Errorf("%w: name, url and category are required", domain.ErrMissingRequiredField)
	}

	existing, err := s.repo.GetByURL(ctx, strings.TrimSpace(input.URL))
	if err != nil && !errors.Is(err, domain.ErrSiteNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrSiteURLExists
	}

	now := time.Now().UTC()
	site := domain.NewSite(
		s.uuidGen.NewString(),
		input.UserID,
		strings.TrimSpace(input.Name),
		strings.TrimSpace(input.URL),
		strings.TrimSpace(input.Category),
		input.Description,
		input.ShortDescription,
		input.ThumbnailURL,
		input.Tags,
		now,
	)

	if err := domain.ValidateSite(site); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMissingRequiredField, err)
	}

	job := s.newEmbeddingJob(site.ID, now)
	if err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Sites().Create(ctx, site); err != nil {
			return err
		}
		if err := repos.EmbeddingJobs().Create(ctx, job); err != nil {
			return fmt.Errorf("failed to queue embedding job: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info().Str("site_id", site.ID).Str("user_id", input.UserID).Msg("site submitted")
	return site, nil
}

// Get returns an approved site, bumps its view count and picks related sites.
func (s *SiteService) Get(ctx context.Context, id string) (*SiteDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "SiteService.Get", telemetry.SpanAttributes{
		SiteID:    id,
		Operation: "get",
	})
	defer span.End()

	site, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if site.Status != domain.SiteStatusApproved {
		return nil, domain.ErrSiteNotFound
	}

	if err := s.repo.IncrementViews(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("site_id", id).Msg("failed to increment views")
	} else {
		site.Views++
	}

	related, err := s.repo.RandomInCategory(ctx, site.Category, site.ID, relatedSitesLimit)
	if err != nil {
		s.logger.Warn().Err(err).Str("site_id", id).Msg("failed to load related sites")
		related = []*domain.Site{}
	}

	return &SiteDetail{Site: site, Related: related}, nil
}

// List returns a page of approved sites.
func (s *SiteService) List(ctx context.Context, input ListSitesInput) (*pagination.PageResult[*domain.Site], error) {
	ctx, span := telemetry.StartSpan(ctx, "SiteService.List", telemetry.SpanAttributes{
		Category:  input.Category,
		Operation: "list",
	})
	defer span.End()

	page := input.Page.Normalize()
	sites, total, err := s.repo.ListApproved(ctx, domain.SiteFilter{
		Category:     input.Category,
		FeaturedOnly: input.Featured,
		Sort:         input.Sort,
		Limit:        page.Limit,
		Offset:       page.Offset(),
	})
	if err != nil {
		return nil, err
	}

	return &pagination.PageResult[*domain.Site]{
		Items:      sites,
		Pagination: pagination.NewMeta(page, total),
	}, nil
}

// ListMine returns every site the user submitted, whatever its status.
func (s *SiteService) ListMine(ctx context.Context, userID string) ([]*domain.Site, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Update applies a partial update and queues re-embedding.
func (s *SiteService) Update(ctx context.Context, actor domain.Actor, input UpdateSiteInput) (*domain.Site, error) {
	ctx, span := telemetry.StartSpan(ctx, "SiteService.Update", telemetry.SpanAttributes{
		SiteID:    input.SiteID,
		UserID:    actor.UserID,
		Operation: "update",
	})
	defer span.End()

	site, err := s.repo.GetByID(ctx, input.SiteID)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(site.UserID) {
		return nil, domain.ErrForbidden
	}

	applyUpdate(site, input, actor)
	if err := domain.ValidateSite(site); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMissingRequiredField, err)
	}

	job := s.newEmbeddingJob(site.ID, time.Now().UTC())
	if err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Sites().Update(ctx, site); err != nil {
			return err
		}
		if err := repos.EmbeddingJobs().Create(ctx, job); err != nil {
			return fmt.Errorf("failed to queue embedding job: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return site, nil
}

func applyUpdate(site *domain.Site, input UpdateSiteInput, actor domain.Actor) {
	if input.Name != nil {
		site.Name = strings.TrimSpace(*input.Name)
	}
	if input.URL != nil {
		site.URL = strings.TrimSpace(*input.URL)
	}
	if input.Description != nil {
		site.Description = *input.Description
	}
	if input.ShortDescription != nil {
		site.ShortDescription = *input.ShortDescription
	}
	if input.Category != nil {
		site.Category = strings.TrimSpace(*input.Category)
	}
	if input.Tags != nil {
		site.Tags = domain.NormalizeTags(input.Tags)
	}
	if input.ThumbnailURL != nil {
		site.ThumbnailURL = *input.ThumbnailURL
	}
	// Featuring is an editorial decision.
	if input.IsFeatured != nil && actor.Role.AtLeast(domain.RoleAdmin) {
		site.IsFeatured = *input.IsFeatured
	}
}

// Delete removes a site and then, best effort, its vector.
func (s *SiteService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "SiteService.Delete", telemetry.SpanAttributes{
		SiteID:    id,
		UserID:    actor.UserID,
		Operation: "delete",
	})
	defer span.End()

	site, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(site.UserID) {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.vectors != nil {
		if err := s.vectors.Delete(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("site_id", id).Msg("failed to delete site vector")
		}
	}
	return nil
}

// Like increments the like counter and returns the new total.
func (s *SiteService) Like(ctx context.Context, id string) (int64, error) {
	return s.repo.IncrementLikes(ctx, id)
}

// ListPending returns sites awaiting moderation, oldest first.
func (s *SiteService) ListPending(ctx context.Context, actor domain.Actor) ([]*domain.Site, error) {
	if !actor.Role.AtLeast(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	return s.repo.ListByStatus(ctx, domain.SiteStatusPending)
}

// Approve makes a site visible in listings and search.
func (s *SiteService) Approve(ctx context.Context, actor domain.Actor, id string) error {
	return s.moderate(ctx, actor, id, domain.SiteStatusApproved)
}

// Reject hides a site from listings and search.
func (s *SiteService) Reject(ctx context.Context, actor domain.Actor, id string) error {
	return s.moderate(ctx, actor, id, domain.SiteStatusRejected)
}

func (s *SiteService) moderate(ctx context.Context, actor domain.Actor, id string, status domain.SiteStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "SiteService.Moderate", telemetry.SpanAttributes{
		SiteID:    id,
		UserID:    actor.UserID,
		Operation: string(status),
	})
	defer span.End()

	if !actor.Role.AtLeast(domain.RoleAdmin) {
		return domain.ErrForbidden
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	s.logger.Info().Str("site_id", id).Str("status", string(status)).Str("by", actor.UserID).Msg("site moderated")
	return nil
}

func (s *SiteService) newEmbeddingJob(siteID string, now time.Time) *domain.EmbeddingJob {
	return domain.NewPendingEmbeddingJob(s.uuidGen.NewString(), siteID, now)
}
