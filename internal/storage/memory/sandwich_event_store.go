// Package memory provides in-memory store implementations for tests and
// the --use-memory server mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/eugenegl/solspy-sub000/internal/domain"
	"github.com/eugenegl/solspy-sub000/internal/storage"
)

// SandwichEventStore is an in-memory implementation of
// storage.SandwichEventStore, keyed by victim tx hash.
type SandwichEventStore struct {
	mu     sync.RWMutex
	data   map[string]*domain.SandwichEvent
	nextID int64
}

// NewSandwichEventStore creates a new in-memory sandwich event store.
func NewSandwichEventStore() *SandwichEventStore {
	return &SandwichEventStore{
		data:   make(map[string]*domain.SandwichEvent),
		nextID: 1,
	}
}

// Insert adds a new event. Returns ErrDuplicateKey if victim_tx_hash exists.
func (s *SandwichEventStore) Insert(_ context.Context, e *domain.SandwichEvent) error {
	if e == nil || e.VictimTxHash == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.VictimTxHash]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *e
	copy.ID = s.nextID
	s.nextID++
	if copy.CreatedAt == 0 {
		copy.CreatedAt = copy.OccurredAt
	}
	s.data[copy.VictimTxHash] = &copy
	return nil
}

// ExistingVictimHashes returns the subset of hashes already stored.
func (s *SandwichEventStore) ExistingVictimHashes(_ context.Context, hashes []string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	known := make(map[string]struct{})
	for _, h := range hashes {
		if _, exists := s.data[h]; exists {
			known[h] = struct{}{}
		}
	}
	return known, nil
}

// ListSince retrieves events with CreatedAt >= since, most recent first.
func (s *SandwichEventStore) ListSince(_ context.Context, since int64, limit int) ([]*domain.SandwichEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SandwichEvent
	for _, e := range s.data {
		if e.CreatedAt >= since {
			copy := *e
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// AggregateSince computes rollups over events with CreatedAt >= since.
func (s *SandwichEventStore) AggregateSince(_ context.Context, since int64) (*domain.EventTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := &domain.EventTotals{}
	victims := make(map[string]struct{})
	attackers := make(map[string]struct{})

	for _, e := range s.data {
		if e.CreatedAt < since {
			continue
		}
		totals.EventCount++
		totals.TotalDrained += e.SolDrained
		victims[e.VictimWallet] = struct{}{}
		attackers[e.AttackerWallet] = struct{}{}
	}

	totals.DistinctVictims = int64(len(victims))
	totals.DistinctAttackers = int64(len(attackers))
	return totals, nil
}

var _ storage.SandwichEventStore = (*SandwichEventStore)(nil)
