package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eugenegl/solspy-sub000/internal/observability"
)

// SandwichRecord is one externally reported sandwich attack as the feed
// serves it. Amounts are in lamports, timestamps in epoch milliseconds.
type SandwichRecord struct {
	TokenAddress   string `json:"token_address"`
	AttackerWallet string `json:"attacker_address"`
	SolDrained     int64  `json:"sol_drained_lamports"`
	BuyTxHash      string `json:"frontrun_tx_hash"`
	SellTxHash     string `json:"backrun_tx_hash"`
	VictimWallet   string `json:"victim_address"`
	VictimAmountIn int64  `json:"victim_amount_in_lamports"`
	VictimTxHash   string `json:"victim_tx_hash"`
	Slot           int64  `json:"slot"`
	OccurredAt     int64  `json:"block_time_ms"`
	Source         string `json:"source"`
	LiquidityPool  string `json:"liquidity_pool"`
}

// FeedClient pulls the current batch of reported sandwiches.
type FeedClient struct {
	url    string
	apiKey string
	client *http.Client
}

// NewFeedClient creates a sandwich feed client.
func NewFeedClient(url, apiKey string) *FeedClient {
	return &FeedClient{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *FeedClient) WithHTTPClient(hc *http.Client) *FeedClient {
	c.client = hc
	return c
}

// FetchSandwiches retrieves the feed's current batch. Single attempt;
// the ingestion pipeline owns retry policy.
func (c *FeedClient) FetchSandwiches(ctx context.Context) ([]SandwichRecord, error) {
	start := time.Now()
	defer func() {
		observability.ObserveIndexerCall("fetchSandwiches", time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var records []SandwichRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("unmarshal feed batch: %w", err)
	}
	return records, nil
}
