//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pxtester/showcase/internal/domain"
	"github.com/pxtester/showcase/internal/testutil"
	"github.com/stretchr/testify/require"
)

func setupPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	pc := testutil.NewPostgresContainer(ctx, t)
	return testutil.NewTestPool(ctx, t, pc, "../../migrations")
}

func newTestSite(name string, status domain.SiteStatus, createdAt time.Time) *domain.Site {
	createdAt = createdAt.UTC().Truncate(time.Microsecond)
	id := uuid.NewString()
	return &domain.Site{
		ID:               id,
		Name:             name,
		URL:              "https://" + id + ".example",
		Description:      name + " long description",
		ShortDescription: name + " short",
		Category:         "fintech",
		Tags:             []string{"web"},
		UserID:           "user-1",
		Status:           status,
		SubmittedAt:      createdAt,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}

func insertSite(ctx context.Context, t *testing.T, repo *SiteRepository, s *domain.Site) *domain.Site {
	t.Helper()
	require.NoError(t, repo.Create(ctx, s))
	return s
}

// unitVector returns a 768-dim vector with weight on the given axes.
func unitVector(weights map[int]float32) []float32 {
	v := make([]float32, 768)
	for i, w := range weights {
		v[i] = w
	}
	return v
}
