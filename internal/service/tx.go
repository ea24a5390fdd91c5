package service

import "context"

// TxRepositories hands out repositories bound to one open transaction, so a
// site write and its embedding job commit or roll back together.
type TxRepositories interface {
	Sites() SiteRepositoryInterface
	EmbeddingJobs() EmbeddingJobRepositoryInterface
}

type TxRunner interface {
	// WithTx commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}
