// Package compat generates embeddings through any OpenAI-compatible
// endpoint (Ollama, LM Studio, vLLM) using langchaingo.
package compat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	ErrEmptyText       = errors.New("text cannot be empty")
	ErrNoBaseURL       = errors.New("embedding base url not set")
	ErrNoModel         = errors.New("embedding model not set")
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
)

// documentEmbedder is the subset of embeddings.Embedder used here.
type documentEmbedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

type Config struct {
	BaseURL    string
	Model      string
	Token      string
	Dimensions int
}

// Embedder implements service.EmbeddingClient against a self-hosted model.
type Embedder struct {
	embedder   documentEmbedder
	dimensions int
	logger     zerolog.Logger
}

func NewEmbedder(cfg Config, logger zerolog.Logger) (*Embedder, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}
	if cfg.Model == "" {
		return nil, ErrNoModel
	}
	token := cfg.Token
	if token == "" {
		// local servers accept any bearer token
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return newEmbedder(embedder, cfg.Dimensions, logger), nil
}

func newEmbedder(e documentEmbedder, dimensions int, logger zerolog.Logger) *Embedder {
	return &Embedder{
		embedder:   e,
		dimensions: dimensions,
		logger:     logger.With().Str("component", "compat-embedder").Logger(),
	}
}

// GenerateEmbedding returns the vector for text. A zero dimensions setting
// disables the length check.
func (e *Embedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	e.logger.Debug().Int("length", len(text)).Msg("generating embedding")

	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(vectors) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	embedding := vectors[0]
	if e.dimensions > 0 && len(embedding) != e.dimensions {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrWrongDimensions, len(embedding), e.dimensions)
	}
	return embedding, nil
}
