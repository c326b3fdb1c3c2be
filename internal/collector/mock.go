package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/guregu/null/v6"

	"StockDeck/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	mu sync.Mutex

	Price     float64
	Quotes    map[string]*model.Quote
	Results   []model.SearchResult
	ChartErr  map[string]error
	SearchErr error
	// Delay holds per-ticker latency applied before FetchChart returns.
	Delay map[string]time.Duration

	ChartCalls  []string
	SearchCalls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchChart(ctx context.Context, ticker string, period model.Period) (*model.Quote, error) {
	m.mu.Lock()
	m.ChartCalls = append(m.ChartCalls, ticker+"@"+string(period))
	delay := m.Delay[ticker]
	err := m.ChartErr[ticker]
	q, ok := m.Quotes[ticker]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if ok {
		cp := *q
		return &cp, nil
	}
	if m.Price == 0 {
		return nil, fmt.Errorf("mock: no data for %s", ticker)
	}
	return GenerateMockQuote(ticker, m.Price, 5), nil
}

func (m *MockFetcher) SearchSymbols(_ context.Context, query string) ([]model.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchCalls = append(m.SearchCalls, query)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return append([]model.SearchResult(nil), m.Results...), nil
}

// ChartCallCount reports how many chart fetches were made.
func (m *MockFetcher) ChartCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChartCalls)
}

// GenerateMockQuote builds a quote with count daily points around basePrice.
func GenerateMockQuote(ticker string, basePrice float64, count int) *model.Quote {
	q := &model.Quote{
		Ticker:        ticker,
		Currency:      "USD",
		LastPrice:     basePrice,
		PreviousClose: basePrice * 0.99,
		Timestamps:    make([]int64, count),
		Prices:        make([]null.Float, count),
		Volumes:       make([]null.Float, count),
	}
	start := time.Date(2025, 1, 2, 14, 30, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		q.Timestamps[i] = start.AddDate(0, 0, i).Unix()
		q.Prices[i] = null.FloatFrom(basePrice * (1 + float64(i-count/2)*0.001))
		q.Volumes[i] = null.FloatFrom(1000000)
	}
	return q
}
