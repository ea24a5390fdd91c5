package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EmbeddingProviderOpenAI     = "openai"
	EmbeddingProviderCompatible = "compatible"

	VectorBackendPgvector = "pgvector"
	VectorBackendQdrant   = "qdrant"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	MigrationsSource string `envconfig:"MIGRATIONS_SOURCE" default:"file://migrations"`

	S3Endpoint  string        `envconfig:"S3_ENDPOINT"`
	S3AccessKey string        `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string        `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string        `envconfig:"S3_BUCKET" default:"showcase-screenshots"`
	S3Region    string        `envconfig:"S3_REGION" default:"us-east-1"`
	S3URLExpiry time.Duration `envconfig:"S3_URL_EXPIRY" default:"1h"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingProvider   string `envconfig:"EMBEDDING_PROVIDER" default:"openai"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"768"`
	EmbeddingBaseURL    string `envconfig:"EMBEDDING_BASE_URL"`

	VectorBackend    string `envconfig:"VECTOR_BACKEND" default:"pgvector"`
	QdrantURL        string `envconfig:"QDRANT_URL" default:"http://localhost:6333"`
	QdrantAPIKey     string `envconfig:"QDRANT_API_KEY"`
	QdrantCollection string `envconfig:"QDRANT_COLLECTION" default:"sites"`

	SearchVectorTopK      int  `envconfig:"SEARCH_VECTOR_TOP_K" default:"20"`
	SearchTextLimit       int  `envconfig:"SEARCH_TEXT_LIMIT" default:"20"`
	SearchResultLimit     int  `envconfig:"SEARCH_RESULT_LIMIT" default:"0"`
	SearchIsolateFailures bool `envconfig:"SEARCH_ISOLATE_FAILURES" default:"false"`

	SessionDir string        `envconfig:"SESSION_DIR" default:"./data/sessions"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	FrontendURL    string   `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`

	SentryDSN string `envconfig:"SENTRY_DSN"`

	WorkerPollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"10s"`
	WorkerConcurrency  int           `envconfig:"WORKER_CONCURRENCY" default:"4"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("SHOWCASE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.EmbeddingProvider {
	case EmbeddingProviderOpenAI, EmbeddingProviderCompatible:
	default:
		return fmt.Errorf("invalid EMBEDDING_PROVIDER %q", c.EmbeddingProvider)
	}

	switch c.VectorBackend {
	case VectorBackendPgvector, VectorBackendQdrant:
	default:
		return fmt.Errorf("invalid VECTOR_BACKEND %q", c.VectorBackend)
	}

	if c.SearchVectorTopK <= 0 {
		return fmt.Errorf("SEARCH_VECTOR_TOP_K must be positive")
	}
	if c.SearchTextLimit <= 0 {
		return fmt.Errorf("SEARCH_TEXT_LIMIT must be positive")
	}
	if c.SearchResultLimit < 0 {
		return fmt.Errorf("SEARCH_RESULT_LIMIT cannot be negative")
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive")
	}

	return nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// HasEmbeddings reports whether an embedding provider can be constructed.
// Compatible hosts (Ollama and friends) need a base URL but no key.
func (c *Config) HasEmbeddings() bool {
	if c.EmbeddingProvider == EmbeddingProviderCompatible {
		return c.EmbeddingBaseURL != ""
	}
	return c.OpenAIAPIKey != ""
}

func (c *Config) CORSOrigins() []string {
	if len(c.AllowedOrigins) > 0 {
		return c.AllowedOrigins
	}
	return []string{c.FrontendURL}
}
