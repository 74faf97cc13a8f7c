package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/eugenegl/solspy-sub000/internal/domain"
	"github.com/eugenegl/solspy-sub000/internal/storage"
)

// SandwichEventStore implements storage.SandwichEventStore using PostgreSQL.
// The victim_tx_hash uniqueness invariant lives in the schema, not here.
type SandwichEventStore struct {
	pool *Pool
}

// NewSandwichEventStore creates a new SandwichEventStore.
func NewSandwichEventStore(pool *Pool) *SandwichEventStore {
	return &SandwichEventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SandwichEventStore = (*SandwichEventStore)(nil)

// Insert adds a new event. Returns ErrDuplicateKey if victim_tx_hash exists.
func (s *SandwichEventStore) Insert(ctx context.Context, e *domain.SandwichEvent) error {
	if e == nil || e.VictimTxHash == "" {
		return storage.ErrInvalidInput
	}

	createdAt := e.CreatedAt
	if createdAt == 0 {
		createdAt = e.OccurredAt
	}

	query := `
		INSERT INTO sandwich_events (
			token_address, attacker_wallet, sol_drained, buy_tx_hash, sell_tx_hash,
			victim_wallet, victim_amount_in, victim_tx_hash, slot, occurred_at,
			source, liquidity_pool, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.pool.Exec(ctx, query,
		e.TokenAddress,
		e.AttackerWallet,
		e.SolDrained,
		e.BuyTxHash,
		e.SellTxHash,
		e.VictimWallet,
		e.VictimAmountIn,
		e.VictimTxHash,
		e.Slot,
		e.OccurredAt,
		e.Source,
		e.LiquidityPool,
		createdAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert sandwich event: %w", err)
	}
	return nil
}

// ExistingVictimHashes returns the subset of hashes already stored.
func (s *SandwichEventStore) ExistingVictimHashes(ctx context.Context, hashes []string) (map[string]struct{}, error) {
	known := make(map[string]struct{})
	if len(hashes) == 0 {
		return known, nil
	}

	query := `SELECT victim_tx_hash FROM sandwich_events WHERE victim_tx_hash = ANY($1)`

	rows, err := s.pool.Query(ctx, query, hashes)
	if err != nil {
		return nil, fmt.Errorf("query existing victim hashes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("scan victim hash: %w", err)
		}
		known[hash] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate victim hashes: %w", err)
	}

	return known, nil
}

// ListSince retrieves events with created_at >= since (ms), most recent
// first. A non-positive limit means no cap.
func (s *SandwichEventStore) ListSince(ctx context.Context, since int64, limit int) ([]*domain.SandwichEvent, error) {
	query := `
		SELECT id, token_address, attacker_wallet, sol_drained, buy_tx_hash, sell_tx_hash,
		       victim_wallet, victim_amount_in, victim_tx_hash, slot, occurred_at,
		       source, liquidity_pool, created_at
		FROM sandwich_events
		WHERE created_at >= $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := s.pool.Query(ctx, query, since, lim)
	if err != nil {
		return nil, fmt.Errorf("list sandwich events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// AggregateSince computes rollups over events with created_at >= since (ms).
func (s *SandwichEventStore) AggregateSince(ctx context.Context, since int64) (*domain.EventTotals, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(sol_drained), 0),
		       COUNT(DISTINCT victim_wallet),
		       COUNT(DISTINCT attacker_wallet)
		FROM sandwich_events
		WHERE created_at >= $1
	`

	var totals domain.EventTotals
	err := s.pool.QueryRow(ctx, query, since).Scan(
		&totals.EventCount,
		&totals.TotalDrained,
		&totals.DistinctVictims,
		&totals.DistinctAttackers,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate sandwich events: %w", err)
	}
	return &totals, nil
}

// scanEvents scans multiple rows into a slice of SandwichEvent.
func scanEvents(rows pgx.Rows) ([]*domain.SandwichEvent, error) {
	var events []*domain.SandwichEvent

	for rows.Next() {
		var e domain.SandwichEvent

		err := rows.Scan(
			&e.ID,
			&e.TokenAddress,
			&e.AttackerWallet,
			&e.SolDrained,
			&e.BuyTxHash,
			&e.SellTxHash,
			&e.VictimWallet,
			&e.VictimAmountIn,
			&e.VictimTxHash,
			&e.Slot,
			&e.OccurredAt,
			&e.Source,
			&e.LiquidityPool,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sandwich event row: %w", err)
		}

		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sandwich event rows: %w", err)
	}

	return events, nil
}
