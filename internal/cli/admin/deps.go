package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pxtester/showcase/internal/compat"
	"github.com/pxtester/showcase/internal/config"
	"github.com/pxtester/showcase/internal/database"
	"github.com/pxtester/showcase/internal/domain"
	"github.com/pxtester/showcase/internal/logging"
	"github.com/pxtester/showcase/internal/openai"
	"github.com/pxtester/showcase/internal/qdrant"
	"github.com/pxtester/showcase/internal/repository"
	"github.com/pxtester/showcase/internal/service"
	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"
)

// deps holds what every database-backed command needs.
type deps struct {
	cfg      *config.Config
	logger   zerolog.Logger
	pool     *pgxpool.Pool
	sites    *repository.SiteRepository
	vectors  service.VectorIndex
	embedder service.EmbeddingClient
}

func loadDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(cfg.Debug)

	pool, err := getDBPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	vectors, err := newVectorIndex(ctx, cfg, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	embedder, err := newEmbedder(cfg, logging.Component(logger, "embedder"))
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &deps{
		cfg:      cfg,
		logger:   logger,
		pool:     pool,
		sites:    repository.NewSiteRepository(pool),
		vectors:  vectors,
		embedder: embedder,
	}, nil
}

func (d *deps) Close() {
	d.pool.Close()
}

func (d *deps) searchService() *service.SearchService {
	return service.NewSearchServiceWithConfig(d.sites, d.vectors, d.embedder, searchConfig(d.cfg), logging.Component(d.logger, "search"))
}

func getDBPool(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*pgxpool.Pool, error) {
	dbCfg := database.Config{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	}
	if cfg.Debug {
		queryLogger := logging.Component(logger, "sql")
		dbCfg.QueryLogger = &queryLogger
	}
	pool, err := database.NewPool(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

func searchConfig(cfg *config.Config) service.SearchConfig {
	return service.SearchConfig{
		VectorTopK:      cfg.SearchVectorTopK,
		TextLimit:       cfg.SearchTextLimit,
		ResultLimit:     cfg.SearchResultLimit,
		IsolateFailures: cfg.SearchIsolateFailures,
	}
}

// newEmbedder picks the configured provider. Without credentials the
// returned client fails every call so search reports the outage instead of
// the process refusing to start.
func newEmbedder(cfg *config.Config, logger zerolog.Logger) (service.EmbeddingClient, error) {
	if !cfg.HasEmbeddings() {
		logger.Warn().Str("provider", cfg.EmbeddingProvider).Msg("embedding provider not configured; semantic search disabled")
		return unavailableEmbedder{}, nil
	}

	switch cfg.EmbeddingProvider {
	case config.EmbeddingProviderCompatible:
		return compat.NewEmbedder(compat.Config{
			BaseURL:    cfg.EmbeddingBaseURL,
			Model:      cfg.EmbeddingModel,
			Token:      cfg.OpenAIAPIKey,
			Dimensions: cfg.EmbeddingDimensions,
		}, logger)
	default:
		return openai.NewClientWithConfig(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			BaseURL:             cfg.EmbeddingBaseURL,
			EmbeddingModel:      goopenai.EmbeddingModel(cfg.EmbeddingModel),
			EmbeddingDimensions: cfg.EmbeddingDimensions,
		})
	}
}

func newVectorIndex(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (service.VectorIndex, error) {
	if cfg.VectorBackend != config.VectorBackendQdrant {
		return repository.NewSiteVectorRepository(pool), nil
	}

	index := qdrant.NewIndex(qdrant.Config{
		URL:        cfg.QdrantURL,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.QdrantCollection,
	})
	if err := index.EnsureCollection(ctx, cfg.EmbeddingDimensions); err != nil {
		return nil, fmt.Errorf("failed to prepare qdrant collection: %w", err)
	}
	return index, nil
}

type unavailableEmbedder struct{}

func (unavailableEmbedder) GenerateEmbedding(context.Context, string) ([]float32, error) {
	return nil, domain.ErrEmbeddingUnavailable
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
