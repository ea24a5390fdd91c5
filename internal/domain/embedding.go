package domain

import (
	"fmt"
	"time"
)

type EmbeddingJobStatus string

const (
	EmbeddingJobStatusPending    EmbeddingJobStatus = "pending"
	EmbeddingJobStatusProcessing EmbeddingJobStatus = "processing"
	EmbeddingJobStatusCompleted  EmbeddingJobStatus = "completed"
	EmbeddingJobStatusFailed     EmbeddingJobStatus = "failed"
)

func (s EmbeddingJobStatus) Valid() bool {
	switch s {
	case EmbeddingJobStatusPending, EmbeddingJobStatusProcessing,
		EmbeddingJobStatusCompleted, EmbeddingJobStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the worker is done with a job in this status.
func (s EmbeddingJobStatus) Terminal() bool {
	return s == EmbeddingJobStatusCompleted || s == EmbeddingJobStatusFailed
}

// EmbeddingJob asks the worker to (re)index one site's vector. Jobs are
// queued in the same transaction as the site write that made the vector
// stale, so the queue never misses a change.
type EmbeddingJob struct {
	ID          string
	SiteID      string
	Status      EmbeddingJobStatus
	Retries     int32
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

func NewPendingEmbeddingJob(id, siteID string, now time.Time) *EmbeddingJob {
	return &EmbeddingJob{
		ID:        id,
		SiteID:    siteID,
		Status:    EmbeddingJobStatusPending,
		CreatedAt: now,
	}
}

func (j *EmbeddingJob) Validate() error {
	if j.ID == "" || j.SiteID == "" {
		return fmt.Errorf("%w: embedding job needs an id and a site id", ErrMissingRequiredField)
	}
	if !j.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEmbeddingJobStatus, j.Status)
	}
	if j.Retries < 0 {
		return fmt.Errorf("%w: embedding job retries cannot be negative", ErrMissingRequiredField)
	}
	return nil
}

// VectorMatch is one row returned by a vector index query, in rank order.
type VectorMatch struct {
	ID       string
	Score    float32
	Metadata map[string]string
}
