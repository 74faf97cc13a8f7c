// Package indexer provides clients for the third-party account/asset
// indexer (DAS API) and the external sandwich feed.
package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/eugenegl/solspy-sub000/internal/observability"
)

// PageLimit is the indexer's maximum page size for asset listings.
const PageLimit = 1000

// Asset interface values for fungible holdings.
const (
	InterfaceFungibleToken = "FungibleToken"
	InterfaceFungibleAsset = "FungibleAsset"
)

// DefaultTimeout bounds every indexer HTTP call.
const DefaultTimeout = 10 * time.Second

// Client talks to a DAS-style asset indexer over JSON-RPC.
type Client struct {
	endpoint  string
	client    *http.Client
	requestID atomic.Uint64
}

// NewClient creates an indexer client. The API key is carried in the
// endpoint URL query, as the indexer expects.
func NewClient(baseURL, apiKey string) *Client {
	endpoint := baseURL
	if apiKey != "" {
		sep := "?"
		if strings.Contains(baseURL, "?") {
			sep = "&"
		}
		endpoint = baseURL + sep + "api-key=" + apiKey
	}
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

// AssetPage is one page of a wallet's indexed assets.
type AssetPage struct {
	Items         []AssetItem
	NativeBalance *NativeBalance
}

// AssetItem is a flattened indexed asset.
type AssetItem struct {
	ID            string
	Interface     string
	Compressed    bool
	Symbol        string
	Name          string
	Description   string
	Decimals      int
	Balance       uint64
	Supply        uint64
	LogoURI       string
	PricePerToken *float64
	TotalPrice    *float64
}

// NativeBalance is the wallet's native lamport holding with optional pricing.
type NativeBalance struct {
	Lamports    uint64
	PricePerSol *float64
	TotalPrice  *float64
}

// AssetsByOwner fetches one page of the wallet's assets. includeNative
// asks the indexer to attach the native balance; it only needs to be set
// on the first page.
func (c *Client) AssetsByOwner(ctx context.Context, owner string, page int, includeNative bool) (*AssetPage, error) {
	start := time.Now()
	defer func() {
		observability.ObserveIndexerCall("getAssetsByOwner", time.Since(start).Seconds())
	}()

	req := dasRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  "getAssetsByOwner",
		Params: dasParams{
			OwnerAddress: owner,
			Page:         page,
			Limit:        PageLimit,
			DisplayOptions: dasDisplayOptions{
				ShowNativeBalance: includeNative,
				ShowFungible:      true,
			},
		},
	}

	var result dasResult
	if err := c.post(ctx, req, &result); err != nil {
		return nil, err
	}

	out := &AssetPage{Items: make([]AssetItem, 0, len(result.Items))}
	for _, raw := range result.Items {
		out.Items = append(out.Items, flattenItem(raw))
	}
	if result.NativeBalance != nil {
		out.NativeBalance = &NativeBalance{
			Lamports:    result.NativeBalance.Lamports,
			PricePerSol: result.NativeBalance.PricePerSol,
			TotalPrice:  result.NativeBalance.TotalPrice,
		}
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("indexer error %d: %s", envelope.Error.Code, envelope.Error.Message)
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

// flattenItem maps the nested DAS item into an AssetItem. The logo is the
// first file with an image MIME type.
func flattenItem(raw dasItem) AssetItem {
	item := AssetItem{
		ID:         raw.ID,
		Interface:  raw.Interface,
		Compressed: raw.Compression.Compressed,
	}

	item.Name = raw.Content.Metadata.Name
	item.Symbol = raw.Content.Metadata.Symbol
	item.Description = raw.Content.Metadata.Description

	for _, f := range raw.Content.Files {
		if strings.HasPrefix(f.Mime, "image/") {
			item.LogoURI = f.URI
			break
		}
	}

	if raw.TokenInfo != nil {
		item.Decimals = raw.TokenInfo.Decimals
		item.Balance = raw.TokenInfo.Balance
		item.Supply = raw.TokenInfo.Supply
		if raw.TokenInfo.Symbol != "" {
			item.Symbol = raw.TokenInfo.Symbol
		}
		if raw.TokenInfo.PriceInfo != nil {
			item.PricePerToken = raw.TokenInfo.PriceInfo.PricePerToken
			item.TotalPrice = raw.TokenInfo.PriceInfo.TotalPrice
		}
	}

	return item
}

// Raw DAS wire structs.

type dasRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      uint64    `json:"id"`
	Method  string    `json:"method"`
	Params  dasParams `json:"params"`
}

type dasParams struct {
	OwnerAddress   string            `json:"ownerAddress"`
	Page           int               `json:"page"`
	Limit          int               `json:"limit"`
	DisplayOptions dasDisplayOptions `json:"displayOptions"`
}

type dasDisplayOptions struct {
	ShowNativeBalance bool `json:"showNativeBalance"`
	ShowFungible      bool `json:"showFungible"`
}

type dasResult struct {
	Total         int               `json:"total"`
	Limit         int               `json:"limit"`
	Page          int               `json:"page"`
	Items         []dasItem         `json:"items"`
	NativeBalance *dasNativeBalance `json:"nativeBalance"`
}

type dasItem struct {
	ID          string `json:"id"`
	Interface   string `json:"interface"`
	Compression struct {
		Compressed bool `json:"compressed"`
	} `json:"compression"`
	Content struct {
		Metadata struct {
			Name        string `json:"name"`
			Symbol      string `json:"symbol"`
			Description string `json:"description"`
		} `json:"metadata"`
		Files []struct {
			URI  string `json:"uri"`
			Mime string `json:"mime"`
		} `json:"files"`
	} `json:"content"`
	TokenInfo *struct {
		Symbol    string `json:"symbol"`
		Balance   uint64 `json:"balance"`
		Supply    uint64 `json:"supply"`
		Decimals  int    `json:"decimals"`
		PriceInfo *struct {
			PricePerToken *float64 `json:"price_per_token"`
			TotalPrice    *float64 `json:"total_price"`
		} `json:"price_info"`
	} `json:"token_info"`
}

type dasNativeBalance struct {
	Lamports    uint64   `json:"lamports"`
	PricePerSol *float64 `json:"price_per_sol"`
	TotalPrice  *float64 `json:"total_price"`
}
