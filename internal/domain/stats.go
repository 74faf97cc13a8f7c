package domain

// StatsSnapshot is a windowed rollup over sandwich events, recomputed
// on demand. Not persisted.
type StatsSnapshot struct {
	WindowDays        int     `json:"window_days"`
	TotalDrained      float64 `json:"total_drained"` // SOL
	EventCount        int64   `json:"event_count"`
	DistinctVictims   int64   `json:"distinct_victims"`
	DistinctAttackers int64   `json:"distinct_attackers"`
}
