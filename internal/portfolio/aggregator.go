// Package portfolio assembles a wallet's native balance and fungible
// token holdings into a priced, sorted portfolio.
package portfolio

import (
	"context"
	"log"
	"math"
	"sort"
	"time"

	"github.com/eugenegl/solspy-sub000/internal/domain"
	"github.com/eugenegl/solspy-sub000/internal/indexer"
	"github.com/eugenegl/solspy-sub000/internal/observability"
)

// maxPages bounds worst-case latency and call volume per request.
const maxPages = 3

// fetchAttempts is the in-component retry budget per page.
const fetchAttempts = 2

const retryDelay = 300 * time.Millisecond

// Native currency metadata.
const (
	solDecimals    = 9
	solSymbol      = "SOL"
	solName        = "Solana"
	lamportsPerSol = 1e9
)

// AssetSource is the slice of the indexer gateway aggregation needs.
type AssetSource interface {
	AssetsByOwner(ctx context.Context, owner string, page int, includeNative bool) (*indexer.AssetPage, error)
}

// Aggregator builds wallet portfolios from the asset indexer.
type Aggregator struct {
	source AssetSource
	logger *log.Logger
}

// NewAggregator creates a portfolio aggregator.
func NewAggregator(source AssetSource, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.Default()
	}
	return &Aggregator{source: source, logger: logger}
}

// Portfolio assembles the wallet's holdings. Provider errors are logged
// and the portfolio accumulated so far is returned, so the caller always
// gets a usable (if partial) result.
func (a *Aggregator) Portfolio(ctx context.Context, wallet string) *domain.Portfolio {
	native := nativeAsset(nil)
	var items []indexer.AssetItem
	pages := 0
	status := "ok"

	for page := 1; page <= maxPages; page++ {
		// The native balance only needs to be fetched once.
		includeNative := page == 1

		res, err := a.fetchPage(ctx, wallet, page, includeNative)
		if err != nil {
			a.logger.Printf("portfolio %s: page %d failed, returning partial result: %v", wallet, page, err)
			status = "partial"
			break
		}
		pages++

		if includeNative && res.NativeBalance != nil {
			native = nativeAsset(res.NativeBalance)
		}
		items = append(items, res.Items...)

		if len(res.Items) < indexer.PageLimit {
			break
		}
	}

	observability.RecordPortfolioRequest(status, pages)

	tokens := buildTokens(items)
	sortTokens(tokens)
	return &domain.Portfolio{Native: native, Tokens: tokens}
}

func (a *Aggregator) fetchPage(ctx context.Context, wallet string, page int, includeNative bool) (*indexer.AssetPage, error) {
	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
		res, err := a.source.AssetsByOwner(ctx, wallet, page, includeNative)
		if err == nil {
			return res, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// nativeAsset builds the SOL asset, defaulting absent fields to zero.
func nativeAsset(nb *indexer.NativeBalance) domain.Asset {
	asset := domain.Asset{
		Address:  solSymbol,
		Decimals: solDecimals,
		Symbol:   solSymbol,
		Name:     solName,
	}
	if nb == nil {
		return asset
	}

	asset.RawAmount = nb.Lamports
	asset.UIAmount = float64(nb.Lamports) / lamportsPerSol
	if nb.PricePerSol != nil {
		total := 0.0
		if nb.TotalPrice != nil {
			total = *nb.TotalPrice
		}
		asset.PriceInfo = &domain.PriceInfo{
			PricePerUnit: *nb.PricePerSol,
			TotalValue:   round6(total),
		}
	}
	return asset
}

// buildTokens converts indexed items into assets, skipping anything that
// is not a priced fungible holding.
func buildTokens(items []indexer.AssetItem) []domain.Asset {
	tokens := make([]domain.Asset, 0, len(items))
	for _, item := range items {
		if item.Interface != indexer.InterfaceFungibleToken && item.Interface != indexer.InterfaceFungibleAsset {
			continue
		}
		if item.Symbol == "" {
			continue
		}
		if item.Compressed {
			continue
		}

		name := item.Name
		if name == "" {
			name = item.Symbol
		}

		asset := domain.Asset{
			Address:     item.ID,
			RawAmount:   item.Balance,
			UIAmount:    float64(item.Balance) / math.Pow10(item.Decimals),
			Decimals:    item.Decimals,
			Symbol:      item.Symbol,
			Name:        name,
			Description: item.Description,
			LogoURI:     item.LogoURI,
			Supply:      item.Supply,
		}
		if item.PricePerToken != nil {
			total := 0.0
			if item.TotalPrice != nil {
				total = *item.TotalPrice
			}
			asset.PriceInfo = &domain.PriceInfo{
				PricePerUnit: *item.PricePerToken,
				TotalValue:   round6(total),
			}
		}
		tokens = append(tokens, asset)
	}
	return tokens
}

// sortTokens orders descending by total value; assets without price info
// sort as 0 but after priced assets of equal value, stable otherwise.
func sortTokens(tokens []domain.Asset) {
	sort.SliceStable(tokens, func(i, j int) bool {
		vi, vj := totalValue(tokens[i]), totalValue(tokens[j])
		if vi != vj {
			return vi > vj
		}
		return tokens[i].PriceInfo != nil && tokens[j].PriceInfo == nil
	})
}

func totalValue(a domain.Asset) float64 {
	if a.PriceInfo == nil {
		return 0
	}
	return a.PriceInfo.TotalValue
}

// round6 rounds to 6 decimal places.
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
