// Package ingestion pulls externally reported sandwich events into the
// persisted store, deduplicated on victim tx hash.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/eugenegl/solspy-sub000/internal/domain"
	"github.com/eugenegl/solspy-sub000/internal/indexer"
	"github.com/eugenegl/solspy-sub000/internal/observability"
	"github.com/eugenegl/solspy-sub000/internal/storage"
)

// fetchAttempts is the in-component retry budget for the feed fetch.
const fetchAttempts = 2

const retryDelay = 2 * time.Second

// FeedSource is the slice of the feed gateway the pipeline needs.
type FeedSource interface {
	FetchSandwiches(ctx context.Context) ([]indexer.SandwichRecord, error)
}

// Pipeline ingests one feed batch per tick. Safe to run from overlapping
// ticks: dedup is a batched existence check plus the store's uniqueness
// invariant, so concurrent ticks converge to the same stored set.
type Pipeline struct {
	feed   FeedSource
	store  storage.SandwichEventStore
	logger *log.Logger
}

// PipelineOptions contains dependencies for creating a Pipeline.
type PipelineOptions struct {
	Feed   FeedSource
	Store  storage.SandwichEventStore
	Logger *log.Logger
}

// NewPipeline creates a sandwich ingestion pipeline.
func NewPipeline(opts PipelineOptions) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		feed:   opts.Feed,
		store:  opts.Store,
		logger: logger,
	}
}

// RunTick executes one ingestion tick: fetch, batched dedup check,
// isolated per-record inserts. A fetch or dedup-query failure skips the
// whole tick with no partial state mutation; a single insert failure is
// logged and does not abort the rest of the batch.
func (p *Pipeline) RunTick(ctx context.Context) error {
	records, err := p.fetch(ctx)
	if err != nil {
		observability.RecordIngestTick("fetch_error", 0, 0)
		return fmt.Errorf("fetch sandwich feed: %w", err)
	}

	hashes := make([]string, 0, len(records))
	for _, r := range records {
		if r.VictimTxHash != "" {
			hashes = append(hashes, r.VictimTxHash)
		}
	}

	known, err := p.store.ExistingVictimHashes(ctx, hashes)
	if err != nil {
		observability.RecordIngestTick("dedup_error", 0, 0)
		return fmt.Errorf("query known victim hashes: %w", err)
	}

	inserted, skipped := 0, 0
	for _, r := range records {
		if r.VictimTxHash == "" {
			continue
		}
		if _, ok := known[r.VictimTxHash]; ok {
			skipped++
			continue
		}

		if err := p.store.Insert(ctx, eventFromRecord(r)); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				// Lost a race with another tick or process; the
				// first write wins.
				skipped++
				continue
			}
			p.logger.Printf("insert sandwich %s: %v", r.VictimTxHash, err)
			continue
		}
		inserted++
	}

	observability.RecordIngestTick("ok", inserted, skipped)
	p.logger.Printf("tick complete: %d fetched, %d inserted, %d already known", len(records), inserted, skipped)
	return nil
}

func (p *Pipeline) fetch(ctx context.Context) ([]indexer.SandwichRecord, error) {
	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
		records, err := p.feed.FetchSandwiches(ctx)
		if err == nil {
			return records, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// eventFromRecord converts a feed record into a SandwichEvent.
// CreatedAt is set from the record's reported timestamp and is immutable
// after insert.
func eventFromRecord(r indexer.SandwichRecord) *domain.SandwichEvent {
	return &domain.SandwichEvent{
		TokenAddress:   r.TokenAddress,
		AttackerWallet: r.AttackerWallet,
		SolDrained:     r.SolDrained,
		BuyTxHash:      r.BuyTxHash,
		SellTxHash:     r.SellTxHash,
		VictimWallet:   r.VictimWallet,
		VictimAmountIn: r.VictimAmountIn,
		VictimTxHash:   r.VictimTxHash,
		Slot:           r.Slot,
		OccurredAt:     r.OccurredAt,
		Source:         r.Source,
		LiquidityPool:  r.LiquidityPool,
		CreatedAt:      r.OccurredAt,
	}
}
