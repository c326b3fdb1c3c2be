package model

// Instrument types kept by symbol search.
const (
	TypeEquity = "EQUITY"
	TypeETF    = "ETF"
)

// SearchResult is one symbol-search match.
type SearchResult struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Type     string `json:"type"`
}
