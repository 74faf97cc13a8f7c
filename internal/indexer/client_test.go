package indexer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

const dasPage = `{
	"jsonrpc": "2.0",
	"id": 1,
	"result": {
		"total": 2,
		"limit": 1000,
		"page": 1,
		"items": [
			{
				"id": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
				"interface": "FungibleToken",
				"compression": {"compressed": false},
				"content": {
					"metadata": {"name": "USD Coin", "symbol": "USDC", "description": "stable"},
					"files": [
						{"uri": "https://cdn/usdc.json", "mime": "application/json"},
						{"uri": "https://cdn/usdc.png", "mime": "image/png"}
					]
				},
				"token_info": {
					"symbol": "USDC",
					"balance": 12500000,
					"supply": 5000000000000,
					"decimals": 6,
					"price_info": {"price_per_token": 1.0, "total_price": 12.5}
				}
			},
			{
				"id": "NFTmint1111111111111111111111111111111111111",
				"interface": "V1_NFT",
				"compression": {"compressed": true},
				"content": {"metadata": {"name": "Some NFT", "symbol": ""}, "files": []}
			}
		],
		"nativeBalance": {
			"lamports": 3000000000,
			"price_per_sol": 150.0,
			"total_price": 450.0
		}
	}
}`

func TestAssetsByOwner(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("api-key"); got != "testkey" {
			t.Errorf("expected api-key=testkey in query, got %q", got)
		}

		var req dasRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Method != "getAssetsByOwner" {
			t.Errorf("expected method getAssetsByOwner, got %s", req.Method)
		}
		if req.Params.OwnerAddress != "ownerWallet" {
			t.Errorf("expected ownerWallet, got %s", req.Params.OwnerAddress)
		}
		if req.Params.Page != 1 || req.Params.Limit != PageLimit {
			t.Errorf("expected page 1 limit %d, got page %d limit %d", PageLimit, req.Params.Page, req.Params.Limit)
		}
		if !req.Params.DisplayOptions.ShowNativeBalance {
			t.Error("expected showNativeBalance on page 1")
		}
		if !req.Params.DisplayOptions.ShowFungible {
			t.Error("expected showFungible")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(dasPage))
	}))
	defer server.Close()

	client := NewClient(server.URL, "testkey")

	page, err := client.AssetsByOwner(context.Background(), "ownerWallet", 1, true)
	if err != nil {
		t.Fatalf("AssetsByOwner: %v", err)
	}

	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}

	usdc := page.Items[0]
	if usdc.ID != "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v" {
		t.Errorf("unexpected id %s", usdc.ID)
	}
	if usdc.Interface != InterfaceFungibleToken {
		t.Errorf("unexpected interface %s", usdc.Interface)
	}
	if usdc.Symbol != "USDC" || usdc.Name != "USD Coin" {
		t.Errorf("unexpected metadata %q/%q", usdc.Symbol, usdc.Name)
	}
	if usdc.Balance != 12500000 || usdc.Decimals != 6 {
		t.Errorf("unexpected balance %d decimals %d", usdc.Balance, usdc.Decimals)
	}
	if usdc.LogoURI != "https://cdn/usdc.png" {
		t.Errorf("expected the image file as logo, got %q", usdc.LogoURI)
	}
	if usdc.PricePerToken == nil || *usdc.PricePerToken != 1.0 {
		t.Errorf("unexpected price per token %v", usdc.PricePerToken)
	}
	if usdc.TotalPrice == nil || *usdc.TotalPrice != 12.5 {
		t.Errorf("unexpected total price %v", usdc.TotalPrice)
	}

	nft := page.Items[1]
	if !nft.Compressed {
		t.Error("expected compressed flag to survive flattening")
	}

	if page.NativeBalance == nil {
		t.Fatal("expected native balance")
	}
	if page.NativeBalance.Lamports != 3000000000 {
		t.Errorf("unexpected lamports %d", page.NativeBalance.Lamports)
	}
	if page.NativeBalance.PricePerSol == nil || *page.NativeBalance.PricePerSol != 150.0 {
		t.Errorf("unexpected price per sol %v", page.NativeBalance.PricePerSol)
	}
}

func TestAssetsByOwner_IndexerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32600,"message":"Invalid request"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	_, err := client.AssetsByOwner(context.Background(), "ownerWallet", 1, false)
	if err == nil {
		t.Fatal("expected an error for an indexer error envelope")
	}
}

func TestAssetsByOwner_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	_, err := client.AssetsByOwner(context.Background(), "ownerWallet", 1, false)
	if err == nil {
		t.Fatal("expected an error for a 503 response")
	}
}

func TestNewClient_APIKeyPlacement(t *testing.T) {
	c := NewClient("https://indexer.example.com/", "abc")
	if c.endpoint != "https://indexer.example.com/?api-key=abc" {
		t.Errorf("unexpected endpoint %s", c.endpoint)
	}

	c = NewClient("https://indexer.example.com/?cluster=mainnet", "abc")
	if c.endpoint != "https://indexer.example.com/?cluster=mainnet&api-key=abc" {
		t.Errorf("unexpected endpoint %s", c.endpoint)
	}

	c = NewClient("https://indexer.example.com/", "")
	if c.endpoint != "https://indexer.example.com/" {
		t.Errorf("unexpected endpoint %s", c.endpoint)
	}
}
