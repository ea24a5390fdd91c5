package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker drains a JobProcessor once on start and then on every tick.
type Worker struct {
	processor    JobProcessor
	pollInterval time.Duration
	logger       zerolog.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewWorker(processor JobProcessor, pollInterval time.Duration, logger zerolog.Logger) *Worker {
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		logger:       logger,
		done:         make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled or Stop is called. It must be called
// at most once.
func (w *Worker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.started = true
	w.cancel = cancel
	w.mu.Unlock()

	defer close(w.done)
	defer cancel()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info().Dur("poll_interval", w.pollInterval).Msg("worker started")

	// jobs queued while the process was down
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	if err := w.processor.ProcessJobs(ctx); err != nil && ctx.Err() == nil {
		w.logger.Error().Err(err).Msg("error processing jobs")
	}
}

// Stop cancels any in-flight pass and waits for Start to return. It is safe
// to call more than once and before Start.
func (w *Worker) Stop() {
	w.mu.Lock()
	started, cancel := w.started, w.cancel
	w.mu.Unlock()
	if !started {
		return
	}

	cancel()
	<-w.done
	w.logger.Info().Msg("worker shutdown complete")
}
