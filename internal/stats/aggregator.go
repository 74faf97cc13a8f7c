// Package stats computes windowed rollups over the sandwich event store.
package stats

import (
	"context"
	"errors"
	"time"

	"github.com/eugenegl/solspy-sub000/internal/domain"
	"github.com/eugenegl/solspy-sub000/internal/storage"
)

// Lookback window bounds in days.
const (
	MinWindowDays = 1
	MaxWindowDays = 30
)

// MaxPageSize caps the recent-events listing.
const MaxPageSize = 100

const lamportsPerSol = 1e9

// ErrWindowOutOfRange is returned for a windowDays outside 1..30.
var ErrWindowOutOfRange = errors.New("window days must be between 1 and 30")

// Aggregator is a pure read-side view over the event store.
type Aggregator struct {
	store storage.SandwichEventStore
	now   func() time.Time
}

// NewAggregator creates a stats aggregator.
func NewAggregator(store storage.SandwichEventStore) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

// Snapshot computes rollups over events with created_at inside the
// lookback window. Recomputed on demand; nothing is cached.
func (a *Aggregator) Snapshot(ctx context.Context, windowDays int) (*domain.StatsSnapshot, error) {
	since, err := a.windowStart(windowDays)
	if err != nil {
		return nil, err
	}

	totals, err := a.store.AggregateSince(ctx, since)
	if err != nil {
		return nil, err
	}

	return &domain.StatsSnapshot{
		WindowDays:        windowDays,
		TotalDrained:      float64(totals.TotalDrained) / lamportsPerSol,
		EventCount:        totals.EventCount,
		DistinctVictims:   totals.DistinctVictims,
		DistinctAttackers: totals.DistinctAttackers,
	}, nil
}

// Recent lists events inside the window, most recent first. The limit is
// clamped to MaxPageSize; a non-positive limit means MaxPageSize.
func (a *Aggregator) Recent(ctx context.Context, windowDays, limit int) ([]*domain.SandwichEvent, error) {
	since, err := a.windowStart(windowDays)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	return a.store.ListSince(ctx, since, limit)
}

func (a *Aggregator) windowStart(windowDays int) (int64, error) {
	if windowDays < MinWindowDays || windowDays > MaxWindowDays {
		return 0, ErrWindowOutOfRange
	}
	return a.now().Add(-time.Duration(windowDays) * 24 * time.Hour).UnixMilli(), nil
}
