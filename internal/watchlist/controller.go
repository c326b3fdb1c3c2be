package watchlist

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"StockDeck/internal/calculator"
	"StockDeck/internal/logger"
	"StockDeck/internal/metrics"
	"StockDeck/internal/model"
	"StockDeck/internal/notifier"
)

var (
	ErrTickerRequired = errors.New("ticker is required")
	ErrDuplicate      = errors.New("ticker already in watchlist")
	ErrEntryNotFound  = errors.New("entry not found")
)

// QuoteSource fetches a quote for a ticker over a period.
type QuoteSource interface {
	Quote(ctx context.Context, ticker, period string) (*model.Quote, error)
}

// NameResolver looks up display names. It must not fail; no match is an empty list.
type NameResolver interface {
	Search(ctx context.Context, query string) []model.SearchResult
}

// Controller owns the watchlist state: ordered entries, the expanded entry and
// the set of tickers whose add is in flight. The lock is never held across a
// fetch, so concurrent adds land in completion order.
type Controller struct {
	mu         sync.Mutex
	entries    []model.Entry
	expanded   string
	inFlight   map[string]struct{}
	lastMillis int64

	quotes  QuoteSource
	names   NameResolver
	notices notifier.Notifier
	now     func() time.Time
	log     *logger.Entry
}

// NewController creates an empty watchlist.
func NewController(quotes QuoteSource, names NameResolver, notices notifier.Notifier) *Controller {
	return &Controller{
		inFlight: make(map[string]struct{}),
		quotes:   quotes,
		names:    names,
		notices:  notices,
		now:      time.Now,
		log:      logger.GetLogger().WithComponent("watchlist"),
	}
}

// Add fetches a one-year quote for ticker and appends a new entry.
// A ticker already present or already being added is rejected without a fetch.
func (c *Controller) Add(ctx context.Context, ticker string) (*model.Entry, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrTickerRequired
	}

	c.mu.Lock()
	_, pending := c.inFlight[ticker]
	if pending || c.indexOfTickerLocked(ticker) >= 0 {
		c.mu.Unlock()
		c.notify(model.NoticeError, fmt.Sprintf("%s is already in your watchlist", ticker))
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, ticker)
	}
	c.inFlight[ticker] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, ticker)
		c.mu.Unlock()
	}()

	q, err := c.quotes.Quote(ctx, ticker, string(model.Period1y))
	if err != nil {
		if ctx.Err() != nil {
			c.log.WithFields(logger.Fields{"ticker": ticker}).Debug("add abandoned")
			return nil, fmt.Errorf("add %s: %w", ticker, err)
		}
		c.notify(model.NoticeError, fmt.Sprintf("Failed to add %s", ticker))
		c.log.WithError(err).WithFields(logger.Fields{"ticker": ticker}).Warn("add failed")
		return nil, fmt.Errorf("add %s: %w", ticker, err)
	}

	name := c.resolveName(ctx, ticker)

	// The caller went away while the fetch was running; drop the result.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	entry := model.Entry{
		ID:      c.nextIDLocked(ticker),
		Ticker:  ticker,
		Name:    name,
		Quote:   q,
		AddedAt: c.now(),
	}
	c.entries = append(c.entries, entry)
	n := len(c.entries)
	c.mu.Unlock()

	metrics.SetWatchlistEntries(n)
	c.notify(model.NoticeSuccess, fmt.Sprintf("Added %s to watchlist", ticker))
	c.log.WithFields(logger.Fields{"ticker": ticker, "id": entry.ID}).Info("entry added")
	return &entry, nil
}

// resolveName returns the display name for ticker, falling back to the ticker itself.
func (c *Controller) resolveName(ctx context.Context, ticker string) string {
	if c.names == nil {
		return ticker
	}
	for _, r := range c.names.Search(ctx, ticker) {
		if strings.EqualFold(r.Ticker, ticker) && r.Name != "" {
			return r.Name
		}
	}
	return ticker
}

// Remove deletes the entry with id. Unknown ids are a no-op.
func (c *Controller) Remove(id string) bool {
	c.mu.Lock()
	i := c.indexOfIDLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.entries = slices.Delete(c.entries, i, i+1)
	if c.expanded == id {
		c.expanded = ""
	}
	n := len(c.entries)
	c.mu.Unlock()

	metrics.SetWatchlistEntries(n)
	c.notify(model.NoticeSuccess, "Removed from watchlist")
	return true
}

// Reorder moves the entry with id to targetIndex, keeping the relative order of
// every other entry. targetIndex is clamped to the list bounds.
func (c *Controller) Reorder(id string, targetIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reorderLocked(id, targetIndex)
}

// DragEnd applies a drag gesture that dropped activeID onto overID.
func (c *Controller) DragEnd(activeID, overID string) error {
	if overID == "" || activeID == overID {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	to := c.indexOfIDLocked(overID)
	if to < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, overID)
	}
	return c.reorderLocked(activeID, to)
}

func (c *Controller) reorderLocked(id string, to int) error {
	from := c.indexOfIDLocked(id)
	if from < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	if to < 0 {
		to = 0
	}
	if to > len(c.entries)-1 {
		to = len(c.entries) - 1
	}
	if from == to {
		return nil
	}
	e := c.entries[from]
	c.entries = slices.Delete(c.entries, from, from+1)
	c.entries = slices.Insert(c.entries, to, e)
	return nil
}

// Expand focuses the entry with id.
func (c *Controller) Expand(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOfIDLocked(id) < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	c.expanded = id
	return nil
}

// Collapse clears the focused entry.
func (c *Controller) Collapse() {
	c.mu.Lock()
	c.expanded = ""
	c.mu.Unlock()
}

// Expanded returns the focused entry, if any.
func (c *Controller) Expanded() (model.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOfIDLocked(c.expanded); i >= 0 {
		e := c.entries[i]
		e.Quote = e.Quote.Clone()
		return e, true
	}
	return model.Entry{}, false
}

// Entries returns a deep copy of the watchlist in display order.
func (c *Controller) Entries() []model.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Entry, len(c.entries))
	for i, e := range c.entries {
		e.Quote = e.Quote.Clone()
		out[i] = e
	}
	return out
}

// Cards returns the watchlist with derived tile figures.
func (c *Controller) Cards() []model.Card {
	entries := c.Entries()
	cards := make([]model.Card, len(entries))
	for i, e := range entries {
		cards[i] = calculator.BuildCard(e)
	}
	return cards
}

// Loading returns the tickers whose add is in flight, sorted.
func (c *Controller) Loading() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.inFlight))
	for t := range c.inFlight {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (c *Controller) indexOfIDLocked(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(c.entries, func(e model.Entry) bool { return e.ID == id })
}

func (c *Controller) indexOfTickerLocked(ticker string) int {
	return slices.IndexFunc(c.entries, func(e model.Entry) bool { return e.Ticker == ticker })
}

// nextIDLocked derives an id from ticker and creation time, bumping the
// millisecond when two adds complete within the same one.
func (c *Controller) nextIDLocked(ticker string) string {
	ms := c.now().UnixMilli()
	if ms <= c.lastMillis {
		ms = c.lastMillis + 1
	}
	c.lastMillis = ms
	return fmt.Sprintf("%s-%d", ticker, ms)
}

func (c *Controller) notify(level model.NoticeLevel, msg string) {
	if c.notices != nil {
		c.notices.Notify(level, msg)
	}
}
