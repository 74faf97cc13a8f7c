package domain

// PriceInfo holds USD pricing for an asset.
type PriceInfo struct {
	PricePerUnit float64 `json:"price_per_unit"`
	TotalValue   float64 `json:"total_value"` // rounded to 6 decimal places
}

// Asset represents a single holding in a wallet: the native currency
// or one fungible token.
type Asset struct {
	Address     string     `json:"address"`
	RawAmount   uint64     `json:"raw_amount"` // base units
	UIAmount    float64    `json:"ui_amount"`  // raw_amount / 10^decimals
	Decimals    int        `json:"decimals"`
	Symbol      string     `json:"symbol"`
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	LogoURI     string     `json:"logo_uri,omitempty"`
	Supply      uint64     `json:"supply,omitempty"`
	PriceInfo   *PriceInfo `json:"price_info,omitempty"`
}

// Portfolio is the unified view of a wallet's holdings.
// Tokens are sorted descending by total value; missing price sorts as 0.
type Portfolio struct {
	Native Asset   `json:"native"`
	Tokens []Asset `json:"tokens"`
}
