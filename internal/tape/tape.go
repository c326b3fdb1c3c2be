package tape

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"StockDeck/internal/logger"
	"StockDeck/internal/metrics"
	"StockDeck/internal/model"
)

// QuoteSource fetches the quotes the tape displays.
type QuoteSource interface {
	TapeQuote(ctx context.Context, ticker, period string) (*model.Quote, error)
}

// Tape holds the display-only price map for a fixed set of popular tickers.
type Tape struct {
	symbols []string
	period  string
	workers int
	source  QuoteSource
	hub     *Hub

	mu     sync.RWMutex
	prices map[string]model.TapeItem
	log    *logger.Entry
}

// New creates a tape over symbols. Each refresh fetches every symbol with period,
// at most workers at a time.
func New(source QuoteSource, symbols []string, period string, workers int) *Tape {
	if workers <= 0 {
		workers = 1
	}
	return &Tape{
		symbols: append([]string(nil), symbols...),
		period:  period,
		workers: workers,
		source:  source,
		hub:     NewHub(),
		prices:  map[string]model.TapeItem{},
		log:     logger.GetLogger().WithComponent("tape"),
	}
}

// Hub returns the hub that receives every refreshed snapshot.
func (t *Tape) Hub() *Hub { return t.hub }

// Symbols returns the configured tickers in display order.
func (t *Tape) Symbols() []string { return append([]string(nil), t.symbols...) }

// Refresh re-fetches every symbol and replaces the price map. A failed symbol is
// logged and left out of the new map; it never blocks the others.
func (t *Tape) Refresh(ctx context.Context) []model.TapeItem {
	var (
		mu     sync.Mutex
		prices = make(map[string]model.TapeItem, len(t.symbols))
		g      errgroup.Group
	)
	g.SetLimit(t.workers)

	for _, sym := range t.symbols {
		g.Go(func() error {
			q, err := t.source.TapeQuote(ctx, sym, t.period)
			if err != nil {
				t.log.WithError(err).WithFields(logger.Fields{"ticker": sym}).Warn("failed to fetch tape quote")
				return nil
			}
			mu.Lock()
			prices[sym] = model.TapeItem{Ticker: sym, Price: q.LastPrice, Change: q.Change()}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	t.mu.Lock()
	t.prices = prices
	t.mu.Unlock()

	snap := t.Snapshot()
	metrics.SetTapeSymbols(len(snap))
	t.hub.Publish(snap)
	t.log.WithFields(logger.Fields{"priced": len(snap), "symbols": len(t.symbols)}).Debug("tape refreshed")
	return snap
}

// Snapshot returns the priced symbols in display order.
func (t *Tape) Snapshot() []model.TapeItem {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.TapeItem, 0, len(t.prices))
	for _, sym := range t.symbols {
		if item, ok := t.prices[sym]; ok {
			out = append(out, item)
		}
	}
	return out
}
