package solana

import (
	"context"
	"sync"
	"time"
)

// DefaultStaleAfter is how long a cached blockhash is served before a
// read triggers a refresh.
const DefaultStaleAfter = 15 * time.Second

// BlockhashCache caches the most recent network blockhash / fee anchor.
// Only the reader that observes staleness performs the refresh; concurrent
// readers get the last known value immediately, which may be nil before
// the first successful fetch.
type BlockhashCache struct {
	client     RPCClient
	staleAfter time.Duration
	now        func() time.Time

	mu         sync.Mutex
	value      *LatestBlockhash
	fetchedAt  time.Time
	refreshing bool
}

// NewBlockhashCache creates a cache over the given RPC client.
// A non-positive staleAfter falls back to DefaultStaleAfter.
func NewBlockhashCache(client RPCClient, staleAfter time.Duration) *BlockhashCache {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &BlockhashCache{
		client:     client,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Latest returns the cached blockhash, refreshing it first if this caller
// is the one that found it stale. A failed refresh keeps the last known
// value so the next read retries.
func (c *BlockhashCache) Latest(ctx context.Context) *LatestBlockhash {
	c.mu.Lock()
	if c.value != nil && c.now().Sub(c.fetchedAt) < c.staleAfter {
		v := c.value
		c.mu.Unlock()
		return v
	}
	if c.refreshing {
		v := c.value
		c.mu.Unlock()
		return v
	}
	c.refreshing = true
	stale := c.value
	c.mu.Unlock()

	fresh, err := c.client.GetLatestBlockhash(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshing = false
	if err != nil {
		return stale
	}
	c.value = fresh
	c.fetchedAt = c.now()
	return fresh
}
