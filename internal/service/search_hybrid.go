package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pxtester/showcase/internal/domain"
	"github.com/pxtester/showcase/internal/telemetry"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	defaultVectorTopK   = 20
	defaultTextLimit    = 20
	defaultSimilarLimit = 5
)

var (
	// ErrEmbeddingFailure marks a search that failed because the query could not be embedded.
	ErrEmbeddingFailure = errors.New("embedding failure")
	// ErrUpstreamQueryFailure marks a search that failed in the vector index or the catalog store.
	ErrUpstreamQueryFailure = errors.New("upstream query failure")
)

// SearchSource tells where a hit came from
type SearchSource string

const (
	SourceSemantic SearchSource = "semantic"
	SourceText     SearchSource = "text"
)

// SearchHit is one entry in a merged result list. It is either a
// SemanticHit or a TextHit; only semantic hits carry a score.
type SearchHit interface {
	HitID() string
	HitSite() *domain.Site
	Source() SearchSource
	HitScore() (float32, bool)
}

// SemanticHit came from the vector index
type SemanticHit struct {
	ID    string
	Score float32
	Site  *domain.Site
}

func (h SemanticHit) HitID() string             { return h.ID }
func (h SemanticHit) HitSite() *domain.Site     { return h.Site }
func (h SemanticHit) Source() SearchSource      { return SourceSemantic }
func (h SemanticHit) HitScore() (float32, bool) { return h.Score, true }

// TextHit came from the substring query and was not already a semantic hit
type TextHit struct {
	ID   string
	Site *domain.Site
}

func (h TextHit) HitID() string             { return h.ID }
func (h TextHit) HitSite() *domain.Site     { return h.Site }
func (h TextHit) Source() SearchSource      { return SourceText }
func (h TextHit) HitScore() (float32, bool) { return 0, false }

// CatalogStore is the relational store of sites as seen by search
type CatalogStore interface {
	GetByID(ctx context.Context, id string) (*domain.Site, error)
	GetApprovedByIDs(ctx context.Context, ids []string) ([]*domain.Site, error)
	SearchText(ctx context.Context, query string, limit int) ([]*domain.Site, error)
}

// SearchConfig controls fan-out sizes and the failure policy.
type SearchConfig struct {
	// VectorTopK is how many neighbours to request from the vector index.
	VectorTopK int
	// TextLimit caps the substring query.
	TextLimit int
	// ResultLimit truncates the merged list when positive. Zero keeps everything.
	ResultLimit int
	// IsolateFailures returns the surviving path's hits when only one of
	// the semantic and text paths fails. When false any failure fails the search.
	IsolateFailures bool
}

// DefaultSearchConfig returns the default search configuration.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		VectorTopK: defaultVectorTopK,
		TextLimit:  defaultTextLimit,
	}
}

// SearchService answers hybrid queries over the catalog
type SearchService struct {
	catalog  CatalogStore
	index    VectorSearcher
	embedder EmbeddingClient
	cfg      SearchConfig
	logger   zerolog.Logger
}

// NewSearchService creates a SearchService with the default configuration.
func NewSearchService(catalog CatalogStore, index VectorSearcher, embedder EmbeddingClient, logger zerolog.Logger) *SearchService {
	return NewSearchServiceWithConfig(catalog, index, embedder, DefaultSearchConfig(), logger)
}

// NewSearchServiceWithConfig creates a SearchService with explicit configuration.
func NewSearchServiceWithConfig(
	catalog CatalogStore,
	index VectorSearcher,
	embedder EmbeddingClient,
	cfg SearchConfig,
	logger zerolog.Logger,
) *SearchService {
	if cfg.VectorTopK <= 0 {
		cfg.VectorTopK = defaultVectorTopK
	}
	if cfg.TextLimit <= 0 {
		cfg.TextLimit = defaultTextLimit
	}
	return &SearchService{
		catalog:  catalog,
		index:    index,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}
}

// Search runs the semantic and text paths and merges them: semantic hits
// in vector rank order, then text-only hits in store order, no id twice.
// A positive limit truncates the merged list; otherwise cfg.ResultLimit applies.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchHit{}, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	semantic, text, err := s.fanOut(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	hits := mergeHits(semantic, text)

	if limit <= 0 {
		limit = s.cfg.ResultLimit
	}
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	span.SetData("hits", len(hits))

	s.logger.Debug().
		Str("query", query).
		Int("semantic", len(semantic)).
		Int("text", len(text)).
		Int("returned", len(hits)).
		Msg("search complete")

	return hits, nil
}

// fanOut runs embed -> vector query -> hydrate alongside the text query.
func (s *SearchService) fanOut(ctx context.Context, query string) ([]SemanticHit, []TextHit, error) {
	var (
		semantic        []SemanticHit
		text            []TextHit
		semErr, textErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		semantic, semErr = s.semanticHits(gctx, query)
		return s.propagate(semErr)
	})
	g.Go(func() error {
		text, textErr = s.textHits(gctx, query)
		return s.propagate(textErr)
	})
	err := g.Wait()
	if err == nil && semErr == nil && textErr == nil {
		return semantic, text, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, nil, ctxErr
	}
	if err != nil {
		return nil, nil, searchFailed(err)
	}

	// Only reachable with IsolateFailures set.
	switch {
	case semErr != nil && textErr != nil:
		return nil, nil, searchFailed(errors.Join(semErr, textErr))
	case semErr != nil:
		s.logger.Warn().Err(semErr).Str("query", query).Msg("semantic path failed, returning text hits only")
		semantic = nil
	case textErr != nil:
		s.logger.Warn().Err(textErr).Str("query", query).Msg("text path failed, returning semantic hits only")
		text = nil
	}

	return semantic, text, nil
}

// propagate decides whether a path error should cancel the sibling path.
func (s *SearchService) propagate(err error) error {
	if s.cfg.IsolateFailures {
		return nil
	}
	return err
}

func (s *SearchService) semanticHits(ctx context.Context, query string) ([]SemanticHit, error) {
	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailure, err)
	}

	matches, err := s.index.Query(ctx, embedding, s.cfg.VectorTopK)
	if err != nil {
		return nil, fmt.Errorf("%w: vector query: %w", ErrUpstreamQueryFailure, err)
	}

	return s.hydrate(ctx, matches)
}

// hydrate resolves vector matches to approved sites, keeping match order.
// Matches whose site is gone or not approved are dropped.
func (s *SearchService) hydrate(ctx context.Context, matches []domain.VectorMatch) ([]SemanticHit, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}

	sites, err := s.catalog.GetApprovedByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: hydrate: %w", ErrUpstreamQueryFailure, err)
	}

	byID := make(map[string]*domain.Site, len(sites))
	for _, site := range sites {
		if site.IsSearchable() {
			byID[site.ID] = site
		}
	}

	hits := make([]SemanticHit, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		site, ok := byID[m.ID]
		if !ok {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		hits = append(hits, SemanticHit{ID: m.ID, Score: m.Score, Site: site})
	}
	return hits, nil
}

func (s *SearchService) textHits(ctx context.Context, query string) ([]TextHit, error) {
	sites, err := s.catalog.SearchText(ctx, query, s.cfg.TextLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: text query: %w", ErrUpstreamQueryFailure, err)
	}

	hits := make([]TextHit, 0, len(sites))
	for _, site := range sites {
		if !site.IsSearchable() {
			continue
		}
		hits = append(hits, TextHit{ID: site.ID, Site: site})
	}
	return hits, nil
}

// mergeHits puts semantic hits first, then text hits whose id was not seen.
func mergeHits(semantic []SemanticHit, text []TextHit) []SearchHit {
	merged := make([]SearchHit, 0, len(semantic)+len(text))
	seen := make(map[string]struct{}, len(semantic)+len(text))

	for _, h := range semantic {
		if _, ok := seen[h.ID]; ok {
			continue
		}
		seen[h.ID] = struct{}{}
		merged = append(merged, h)
	}
	for _, h := range text {
		if _, ok := seen[h.ID]; ok {
			continue
		}
		seen[h.ID] = struct{}{}
		merged = append(merged, h)
	}
	return merged
}

// Similar returns up to limit approved sites nearest to siteID, excluding itself.
func (s *SearchService) Similar(ctx context.Context, siteID string, limit int) ([]SemanticHit, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Similar", telemetry.SpanAttributes{
		SiteID:    siteID,
		Operation: "similar",
	})
	defer span.End()

	if limit <= 0 {
		limit = defaultSimilarLimit
	}

	site, err := s.catalog.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if !site.IsSearchable() {
		return nil, domain.ErrSiteNotFound
	}

	embedding, err := s.embedder.GenerateEmbedding(ctx, site.SimilarityText())
	if err != nil {
		return nil, searchFailed(fmt.Errorf("%w: %w", ErrEmbeddingFailure, err))
	}

	matches, err := s.index.Query(ctx, embedding, limit+1)
	if err != nil {
		return nil, searchFailed(fmt.Errorf("%w: vector query: %w", ErrUpstreamQueryFailure, err))
	}

	others := make([]domain.VectorMatch, 0, len(matches))
	for _, m := range matches {
		if m.ID != siteID {
			others = append(others, m)
		}
	}
	if len(others) > limit {
		others = others[:limit]
	}

	hits, err := s.hydrate(ctx, others)
	if err != nil {
		return nil, searchFailed(err)
	}
	if hits == nil {
		hits = []SemanticHit{}
	}
	return hits, nil
}

func searchFailed(err error) error {
	return domain.NewDomainErrorWithCause(domain.ErrCodeSearchFailed, domain.ErrSearchFailed.Message, err)
}
