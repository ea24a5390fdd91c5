package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pxtester/showcase/internal/domain"
	"github.com/rs/zerolog"
)

const (
	// MaxRetries is the maximum number of retries for a failed job
	MaxRetries = 3
	// DefaultBatchSize is how many jobs one poll claims
	DefaultBatchSize = 20
	// StaleAfter is how long a job may sit in processing before it is requeued
	StaleAfter = 10 * time.Minute
)

// EmbeddingJobRepository defines the interface for embedding job persistence
type EmbeddingJobRepository interface {
	ClaimPending(ctx context.Context, limit int) ([]*domain.EmbeddingJob, error)
	UpdateStatus(ctx context.Context, id string, status domain.EmbeddingJobStatus, errMsg string) error
	IncrementRetries(ctx context.Context, id string) error
	ResetStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// SiteIndexer embeds one site and writes it to the vector index
type SiteIndexer interface {
	IndexSite(ctx context.Context, siteID string) error
}

// EmbeddingWorker drains the embedding job queue. Jobs from one claim run
// concurrently on a bounded goroutine pool.
type EmbeddingWorker struct {
	repo      EmbeddingJobRepository
	indexer   SiteIndexer
	pool      *ants.Pool
	batchSize int
	logger    zerolog.Logger
}

// NewEmbeddingWorker creates a worker running at most concurrency jobs at once.
func NewEmbeddingWorker(repo EmbeddingJobRepository, indexer SiteIndexer, concurrency int, logger zerolog.Logger) (*EmbeddingWorker, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return &EmbeddingWorker{
		repo:      repo,
		indexer:   indexer,
		pool:      pool,
		batchSize: DefaultBatchSize,
		logger:    logger,
	}, nil
}

// Close releases the goroutine pool.
func (w *EmbeddingWorker) Close() {
	w.pool.Release()
}

// ProcessJobs implements the JobProcessor interface
func (w *EmbeddingWorker) ProcessJobs(ctx context.Context) error {
	if n, err := w.repo.ResetStale(ctx, StaleAfter); err != nil {
		w.logger.Warn().Err(err).Msg("failed to requeue stale embedding jobs")
	} else if n > 0 {
		w.logger.Info().Int64("count", n).Msg("requeued stale embedding jobs")
	}

	jobs, err := w.repo.ClaimPending(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	w.logger.Debug().Int("count", len(jobs)).Msg("processing pending embedding jobs")

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		err := w.pool.Submit(func() {
			defer wg.Done()
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error().Err(err).Str("job_id", job.ID).Msg("error processing job")
			}
		})
		if err != nil {
			wg.Done()
			w.logger.Error().Err(err).Str("job_id", job.ID).Msg("failed to schedule job")
		}
	}
	wg.Wait()

	return nil
}

func (w *EmbeddingWorker) processJob(ctx context.Context, job *domain.EmbeddingJob) error {
	if job.SiteID == "" {
		return fmt.Errorf("job %s has no site_id", job.ID)
	}

	if err := w.indexer.IndexSite(ctx, job.SiteID); err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	w.logger.Debug().Str("job_id", job.ID).Str("site_id", job.SiteID).Msg("embedding job completed")
	return nil
}

// handleJobFailure handles a failed job with retry logic
func (w *EmbeddingWorker) handleJobFailure(ctx context.Context, job *domain.EmbeddingJob, jobErr error) error {
	log := w.logger.With().Str("job_id", job.ID).Str("site_id", job.SiteID).Logger()
	log.Warn().Err(jobErr).Msg("embedding job failed")

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if job.Retries+1 >= MaxRetries {
		log.Warn().Int("max_retries", MaxRetries).Msg("job exceeded max retries, marking as failed")
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		return nil
	}

	log.Info().Int32("attempt", job.Retries+1).Int("max_retries", MaxRetries).Msg("job will be retried")
	errMsg := fmt.Sprintf("retry %d: %v", job.Retries+1, jobErr)
	if err := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}

	return nil
}
