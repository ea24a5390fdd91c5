package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPendingEmbeddingJob(t *testing.T) {
	now := time.Now()
	job := NewPendingEmbeddingJob("job1", "site1", now)

	assert.Equal(t, "job1", job.ID)
	assert.Equal(t, "site1", job.SiteID)
	assert.Equal(t, EmbeddingJobStatusPending, job.Status)
	assert.Zero(t, job.Retries)
	assert.Equal(t, now, job.CreatedAt)
	assert.Nil(t, job.ProcessedAt)
	require.NoError(t, job.Validate())
}

func TestEmbeddingJob_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(j *EmbeddingJob)
		wantErr error
	}{
		{name: "missing id", mutate: func(j *EmbeddingJob) { j.ID = "" }, wantErr: ErrMissingRequiredField},
		{name: "missing site", mutate: func(j *EmbeddingJob) { j.SiteID = "" }, wantErr: ErrMissingRequiredField},
		{name: "unknown status", mutate: func(j *EmbeddingJob) { j.Status = "bogus" }, wantErr: ErrInvalidEmbeddingJobStatus},
		{name: "negative retries", mutate: func(j *EmbeddingJob) { j.Retries = -1 }, wantErr: ErrMissingRequiredField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewPendingEmbeddingJob("job1", "site1", time.Now())
			tt.mutate(job)
			assert.ErrorIs(t, job.Validate(), tt.wantErr)
		})
	}
}

func TestEmbeddingJobStatus(t *testing.T) {
	assert.True(t, EmbeddingJobStatusProcessing.Valid())
	assert.False(t, EmbeddingJobStatus("done").Valid())

	assert.False(t, EmbeddingJobStatusPending.Terminal())
	assert.False(t, EmbeddingJobStatusProcessing.Terminal())
	assert.True(t, EmbeddingJobStatusCompleted.Terminal())
	assert.True(t, EmbeddingJobStatusFailed.Terminal())
}
