package proxy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockDeck/internal/collector"
	"StockDeck/internal/logger"
	"StockDeck/internal/metrics"
	"StockDeck/internal/model"
	"StockDeck/internal/recorder"
)

var (
	ErrTickerRequired = errors.New("ticker is required")
	ErrInvalidPeriod  = errors.New("invalid period")
	ErrUpstream       = errors.New("upstream fetch failed")
)

// MaxSearchResults caps the number of matches returned by Search.
const MaxSearchResults = 10

// Proxy fronts the upstream fetcher with validation, normalization and the fetch log.
// Quote surfaces upstream failures; Search swallows them.
type Proxy struct {
	Fetcher  collector.Fetcher
	Recorder recorder.Recorder
	log      *logger.Entry
}

// New creates a Proxy. A nil recorder disables the fetch log.
func New(fetcher collector.Fetcher, rec recorder.Recorder) *Proxy {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Proxy{
		Fetcher:  fetcher,
		Recorder: rec,
		log:      logger.GetLogger().WithComponent("proxy"),
	}
}

// Quote fetches the daily series for ticker. period may be empty for the default range.
func (p *Proxy) Quote(ctx context.Context, ticker, period string) (*model.Quote, error) {
	return p.quote(ctx, recorder.KindQuote, ticker, period)
}

// TapeQuote is Quote logged under the tape kind.
func (p *Proxy) TapeQuote(ctx context.Context, ticker, period string) (*model.Quote, error) {
	return p.quote(ctx, recorder.KindTape, ticker, period)
}

func (p *Proxy) quote(ctx context.Context, kind, ticker, period string) (*model.Quote, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return nil, ErrTickerRequired
	}
	per, err := model.ParsePeriod(period)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeriod, err)
	}

	start := time.Now()
	q, err := p.Fetcher.FetchChart(ctx, ticker, per)
	elapsed := time.Since(start)

	evt := &recorder.FetchEvent{Kind: kind, Ticker: ticker, Period: string(per), OK: err == nil, Duration: elapsed}
	if err != nil {
		evt.Error = err.Error()
	} else {
		evt.Results = len(q.Timestamps)
	}
	p.observe(evt)

	if err != nil {
		entry := p.log.WithError(err).WithFields(logger.Fields{"ticker": ticker, "period": per})
		if ctx.Err() != nil {
			entry.Debug("stock fetch abandoned")
		} else {
			entry.Error("error fetching stock data")
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, ticker, err)
	}
	return q, nil
}

// Search returns up to MaxSearchResults EQUITY/ETF matches in upstream order.
// It never fails: an empty query or any upstream error yields an empty list.
func (p *Proxy) Search(ctx context.Context, query string) []model.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.SearchResult{}
	}

	start := time.Now()
	all, err := p.Fetcher.SearchSymbols(ctx, query)
	evt := &recorder.FetchEvent{Kind: recorder.KindSearch, Ticker: query, OK: err == nil, Duration: time.Since(start)}
	if err != nil {
		evt.Error = err.Error()
		p.observe(evt)
		p.log.WithError(err).WithFields(logger.Fields{"query": query}).Warn("search error")
		return []model.SearchResult{}
	}

	results := FilterResults(all)
	evt.Results = len(results)
	p.observe(evt)
	return results
}

// FilterResults keeps equities and ETFs and truncates to MaxSearchResults.
func FilterResults(all []model.SearchResult) []model.SearchResult {
	out := make([]model.SearchResult, 0, MaxSearchResults)
	for _, r := range all {
		if r.Type != model.TypeEquity && r.Type != model.TypeETF {
			continue
		}
		out = append(out, r)
		if len(out) == MaxSearchResults {
			break
		}
	}
	return out
}

func (p *Proxy) observe(evt *recorder.FetchEvent) {
	metrics.ObserveUpstream(evt.Kind, evt.OK, evt.Duration)
	if err := p.Recorder.RecordFetch(evt); err != nil {
		p.log.WithError(err).Warn("record fetch")
	}
}
