//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pxtester/showcase/internal/domain"
	"github.com/pxtester/showcase/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxRunner_CommitsSiteAndJob(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	runner := NewTxRunner(pool)

	site := newTestSite("Atomic", domain.SiteStatusPending, time.Now())
	job := newTestJob(site.ID, time.Now())

	require.NoError(t, runner.WithTx(ctx, func(repos service.TxRepositories) error {
		if err := repos.Sites().Create(ctx, site); err != nil {
			return err
		}
		return repos.EmbeddingJobs().Create(ctx, job)
	}))

	_, err := NewSiteRepository(pool).GetByID(ctx, site.ID)
	require.NoError(t, err)
	_, err = NewEmbeddingJobRepository(pool).GetByID(ctx, job.ID)
	require.NoError(t, err)
}

func TestTxRunner_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	runner := NewTxRunner(pool)

	site := newTestSite("Rolled back", domain.SiteStatusPending, time.Now())
	boom := errors.New("queue full")

	err := runner.WithTx(ctx, func(repos service.TxRepositories) error {
		require.NoError(t, repos.Sites().Create(ctx, site))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = NewSiteRepository(pool).GetByID(ctx, site.ID)
	assert.ErrorIs(t, err, domain.ErrSiteNotFound)
}

func TestTxRunner_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	runner := NewTxRunner(pool)

	site := newTestSite("Panicked", domain.SiteStatusPending, time.Now())

	assert.Panics(t, func() {
		_ = runner.WithTx(ctx, func(repos service.TxRepositories) error {
			require.NoError(t, repos.Sites().Create(ctx, site))
			panic("indexer exploded")
		})
	})

	_, err := NewSiteRepository(pool).GetByID(ctx, site.ID)
	assert.ErrorIs(t, err, domain.ErrSiteNotFound)
}
