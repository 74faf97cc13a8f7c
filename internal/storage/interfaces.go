package storage

import (
	"context"

	"github.com/eugenegl/solspy-sub000/internal/domain"
)

// SandwichEventStore provides access to sandwich_events storage.
type SandwichEventStore interface {
	// Insert adds a new event. Returns ErrDuplicateKey if victim_tx_hash exists.
	Insert(ctx context.Context, e *domain.SandwichEvent) error

	// ExistingVictimHashes returns the subset of hashes already stored.
	// One round-trip regardless of batch size.
	ExistingVictimHashes(ctx context.Context, hashes []string) (map[string]struct{}, error)

	// ListSince retrieves events with created_at >= since (ms), most
	// recent first, capped at limit. A non-positive limit means no cap.
	ListSince(ctx context.Context, since int64, limit int) ([]*domain.SandwichEvent, error)

	// AggregateSince computes rollups over events with created_at >= since (ms).
	AggregateSince(ctx context.Context, since int64) (*domain.EventTotals, error)
}
