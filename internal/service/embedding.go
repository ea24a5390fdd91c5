package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pxtester/showcase/internal/domain"
	"github.com/pxtester/showcase/internal/telemetry"
	"github.com/rs/zerolog"
)

// EmbeddingClient turns text into a fixed-length vector
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher runs nearest-neighbour queries against the vector index.
// Matches come back best first and that order is authoritative.
type VectorSearcher interface {
	Query(ctx context.Context, embedding []float32, topK int) ([]domain.VectorMatch, error)
}

// VectorIndex is the external store holding one vector per site
type VectorIndex interface {
	VectorSearcher
	Upsert(ctx context.Context, siteID string, embedding []float32, metadata map[string]string) error
	Delete(ctx context.Context, siteID string) error
}

// EmbeddingSiteRepository defines the repository interface for indexing operations
type EmbeddingSiteRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Site, error)
	ListApprovedIDs(ctx context.Context) ([]string, error)
}

// EmbeddingService keeps the vector index in step with the catalog
type EmbeddingService struct {
	client EmbeddingClient
	index  VectorIndex
	sites  EmbeddingSiteRepository
	logger zerolog.Logger
}

// NewEmbeddingService creates a new EmbeddingService instance
func NewEmbeddingService(client EmbeddingClient, index VectorIndex, sites EmbeddingSiteRepository, logger zerolog.Logger) *EmbeddingService {
	return &EmbeddingService{
		client: client,
		index:  index,
		sites:  sites,
		logger: logger,
	}
}

// IndexSite embeds a site and upserts its vector.
// A site deleted since the job was queued has its vector removed instead.
func (s *EmbeddingService) IndexSite(ctx context.Context, siteID string) error {
	ctx, span := telemetry.StartSpan(ctx, "EmbeddingService.IndexSite", telemetry.SpanAttributes{
		SiteID:    siteID,
		Operation: "index",
	})
	defer span.End()

	site, err := s.sites.GetByID(ctx, siteID)
	if errors.Is(err, domain.ErrSiteNotFound) {
		return s.RemoveSite(ctx, siteID)
	}
	if err != nil {
		return err
	}

	embedding, err := s.client.GenerateEmbedding(ctx, site.EmbeddingText())
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}

	if err := s.index.Upsert(ctx, site.ID, embedding, siteMetadata(site)); err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}

	return nil
}

// RemoveSite deletes a site's vector from the index.
func (s *EmbeddingService) RemoveSite(ctx context.Context, siteID string) error {
	if err := s.index.Delete(ctx, siteID); err != nil {
		return fmt.Errorf("failed to delete embedding: %w", err)
	}
	return nil
}

// BackfillReport summarises a full reindex run
type BackfillReport struct {
	Total   int
	Success int
	Failed  int
	Errors  []BackfillError
}

type BackfillError struct {
	SiteID string
	Err    string
}

// Backfill re-embeds every approved site one at a time.
// Per-site failures are collected in the report; only a failure to list
// sites or a cancelled context aborts the run.
func (s *EmbeddingService) Backfill(ctx context.Context) (*BackfillReport, error) {
	ids, err := s.sites.ListApprovedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved sites: %w", err)
	}

	report := &BackfillReport{Total: len(ids)}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.IndexSite(ctx, id); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, BackfillError{SiteID: id, Err: err.Error()})
			s.logger.Warn().Err(err).Str("site_id", id).Msg("backfill: site failed")
			continue
		}
		report.Success++
	}

	s.logger.Info().
		Int("total", report.Total).
		Int("success", report.Success).
		Int("failed", report.Failed).
		Msg("backfill complete")

	return report, nil
}

func siteMetadata(s *domain.Site) map[string]string {
	return map[string]string{
		"name":              s.Name,
		"url":               s.URL,
		"category":          s.Category,
		"short_description": s.ShortDescription,
	}
}
