package collector

import (
	"context"

	"StockDeck/internal/model"
)

// Fetcher defines the interface for fetching market data from an upstream provider.
type Fetcher interface {
	// FetchChart returns the daily series for ticker over period.
	FetchChart(ctx context.Context, ticker string, period model.Period) (*model.Quote, error)
	// SearchSymbols returns every upstream match for query, unfiltered and in upstream order.
	SearchSymbols(ctx context.Context, query string) ([]model.SearchResult, error)
	Name() string
}
