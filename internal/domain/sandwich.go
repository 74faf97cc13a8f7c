package domain

// SandwichEvent is one externally reported sandwich attack.
// Corresponds to sandwich_events table in PostgreSQL.
// VictimTxHash is globally unique and acts as the dedup key: the event is
// created exactly once on first sight of the hash, never updated or deleted.
type SandwichEvent struct {
	ID             int64  // PRIMARY KEY (BIGSERIAL)
	TokenAddress   string // mint of the sandwiched token
	AttackerWallet string
	SolDrained     int64 // lamports
	BuyTxHash      string
	SellTxHash     string
	VictimWallet   string
	VictimAmountIn int64  // lamports
	VictimTxHash   string // UNIQUE
	Slot           int64
	OccurredAt     int64 // Unix timestamp in milliseconds
	Source         string
	LiquidityPool  string
	CreatedAt      int64 // defaults to OccurredAt at insert, immutable (ms)
}

// EventTotals are raw rollups over a set of sandwich events.
// Amounts stay in lamports; conversion to SOL happens at presentation.
type EventTotals struct {
	EventCount        int64
	TotalDrained      int64 // lamports
	DistinctVictims   int64
	DistinctAttackers int64
}
