package compat

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDocumentEmbedder struct {
	mock.Mock
}

func (m *mockDocumentEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func TestEmbedder_GenerateEmbedding(t *testing.T) {
	ctx := context.Background()
	inner := new(mockDocumentEmbedder)
	inner.On("EmbedDocuments", ctx, []string{"payments"}).Return([][]float32{{0.1, 0.2, 0.3}}, nil)

	e := newEmbedder(inner, 3, zerolog.Nop())
	got, err := e.GenerateEmbedding(ctx, "payments")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got)
	inner.AssertExpectations(t)
}

func TestEmbedder_GenerateEmbedding_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty text", func(t *testing.T) {
		inner := new(mockDocumentEmbedder)
		_, err := newEmbedder(inner, 3, zerolog.Nop()).GenerateEmbedding(ctx, " \n")
		assert.ErrorIs(t, err, ErrEmptyText)
		inner.AssertNotCalled(t, "EmbedDocuments", mock.Anything, mock.Anything)
	})

	t.Run("upstream failure", func(t *testing.T) {
		inner := new(mockDocumentEmbedder)
		boom := errors.New("connection refused")
		inner.On("EmbedDocuments", ctx, []string{"x"}).Return(nil, boom)
		_, err := newEmbedder(inner, 3, zerolog.Nop()).GenerateEmbedding(ctx, "x")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty result", func(t *testing.T) {
		inner := new(mockDocumentEmbedder)
		inner.On("EmbedDocuments", ctx, []string{"x"}).Return([][]float32{}, nil)
		_, err := newEmbedder(inner, 3, zerolog.Nop()).GenerateEmbedding(ctx, "x")
		assert.Error(t, err)
	})

	t.Run("wrong dimensions", func(t *testing.T) {
		inner := new(mockDocumentEmbedder)
		inner.On("EmbedDocuments", ctx, []string{"x"}).Return([][]float32{{1, 2}}, nil)
		_, err := newEmbedder(inner, 3, zerolog.Nop()).GenerateEmbedding(ctx, "x")
		assert.ErrorIs(t, err, ErrWrongDimensions)
	})

	t.Run("dimension check disabled", func(t *testing.T) {
		inner := new(mockDocumentEmbedder)
		inner.On("EmbedDocuments", ctx, []string{"x"}).Return([][]float32{{1, 2}}, nil)
		got, err := newEmbedder(inner, 0, zerolog.Nop()).GenerateEmbedding(ctx, "x")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestNewEmbedder_Validation(t *testing.T) {
	_, err := NewEmbedder(Config{Model: "nomic-embed-text"}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrNoBaseURL)

	_, err = NewEmbedder(Config{BaseURL: "http://localhost:11434/v1"}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrNoModel)

	e, err := NewEmbedder(Config{BaseURL: "http://localhost:11434/v1", Model: "nomic-embed-text", Dimensions: 768}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 768, e.dimensions)
}
