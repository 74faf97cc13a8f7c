package ingestion

import (
	"context"
	"log"
	"time"
)

// DefaultInterval is the tick period for the ingestion job.
const DefaultInterval = 1 * time.Minute

// Runner fires the ingestion pipeline on a fixed schedule. Ticks are not
// guaranteed non-overlapping; the pipeline's dedup design makes
// back-to-back and concurrent ticks safe.
type Runner struct {
	pipeline *Pipeline
	interval time.Duration
	logger   *log.Logger
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Pipeline *Pipeline
	Interval time.Duration
	Logger   *log.Logger
}

// NewRunner creates a scheduler for the ingestion pipeline.
func NewRunner(opts RunnerOptions) *Runner {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		pipeline: opts.Pipeline,
		interval: interval,
		logger:   logger,
	}
}

// Run ticks the pipeline once immediately, then on every interval until
// the context is cancelled. A failed tick is logged and skipped; the next
// tick re-fetches the full batch.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Printf("ingestion runner started, interval: %v", r.interval)

	r.tick(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Println("ingestion runner stopping...")
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	if err := r.pipeline.RunTick(ctx); err != nil {
		r.logger.Printf("tick skipped: %v", err)
	}
}
