package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/guregu/null/v6"

	"StockDeck/internal/model"
)

// YahooOptions configures the Yahoo Finance client.
type YahooOptions struct {
	ChartURL  string
	SearchURL string
	UserAgent string
	// Timeout of zero leaves upstream calls unbounded apart from the caller's context.
	Timeout time.Duration
	Proxy   string
	// Logger receives resty's own diagnostics; nil keeps resty's default.
	Logger resty.Logger
}

// YahooFetcher implements Fetcher using the Yahoo Finance public API.
type YahooFetcher struct {
	Client    *resty.Client
	ChartURL  string
	SearchURL string
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(opts YahooOptions) *YahooFetcher {
	client := resty.New().SetHeader("User-Agent", opts.UserAgent)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.Proxy != "" {
		client.SetProxy(opts.Proxy)
	}
	if opts.Logger != nil {
		client.SetLogger(opts.Logger)
	}
	return &YahooFetcher{
		Client:    client,
		ChartURL:  opts.ChartURL,
		SearchURL: opts.SearchURL,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []null.Float `json:"close"`
					Volume []null.Float `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooSearch is the response structure from the Yahoo Finance search API.
type yahooSearch struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchange"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

func (f *YahooFetcher) FetchChart(ctx context.Context, ticker string, period model.Period) (*model.Quote, error) {
	resp, err := f.Client.R().
		SetContext(ctx).
		SetPathParam("ticker", ticker).
		SetQueryParams(map[string]string{
			"range":    string(period),
			"interval": "1d",
		}).
		Get(f.ChartURL + "/{ticker}")
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), truncate(resp.Body(), 256))
	}

	var chart yahooChart
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	q := &model.Quote{
		Ticker:        result.Meta.Symbol,
		Currency:      result.Meta.Currency,
		LastPrice:     result.Meta.RegularMarketPrice,
		PreviousClose: result.Meta.ChartPreviousClose,
		Timestamps:    make([]int64, 0, len(result.Timestamp)),
		Prices:        make([]null.Float, 0, len(result.Timestamp)),
		Volumes:       make([]null.Float, 0, len(result.Timestamp)),
	}
	if q.Ticker == "" {
		q.Ticker = ticker
	}
	if len(result.Timestamp) == 0 {
		return q, nil // market closed for the whole range
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: %s has timestamps but no quote series", ticker)
	}

	series := result.Indicators.Quote[0]
	if len(series.Close) != len(result.Timestamp) {
		return nil, fmt.Errorf("yahoo: %s has %d timestamps but %d closes", ticker, len(result.Timestamp), len(series.Close))
	}
	q.Timestamps = append(q.Timestamps, result.Timestamp...)
	q.Prices = append(q.Prices, series.Close...)
	if len(series.Volume) == len(result.Timestamp) {
		q.Volumes = append(q.Volumes, series.Volume...)
	}
	return q, nil
}

func (f *YahooFetcher) SearchSymbols(ctx context.Context, query string) ([]model.SearchResult, error) {
	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":           query,
			"quotesCount": "10",
			"newsCount":   "0",
		}).
		Get(f.SearchURL)
	if err != nil {
		return nil, fmt.Errorf("yahoo search: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("yahoo search: status %d", resp.StatusCode())
	}

	var body yahooSearch
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("yahoo search decode: %w", err)
	}

	results := make([]model.SearchResult, 0, len(body.Quotes))
	for _, sq := range body.Quotes {
		name := sq.LongName
		if name == "" {
			name = sq.ShortName
		}
		if name == "" {
			name = sq.Symbol
		}
		results = append(results, model.SearchResult{
			Ticker:   sq.Symbol,
			Name:     name,
			Exchange: sq.Exchange,
			Type:     sq.QuoteType,
		})
	}
	return results, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
