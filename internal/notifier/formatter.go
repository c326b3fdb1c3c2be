package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"StockDeck/internal/model"
)

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func signed(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return d.StringFixed(2)
	}
	return "+" + d.StringFixed(2)
}

// FormatQuote formats a quote summary for terminal output.
func FormatQuote(q *model.Quote, changePercent float64) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s %s\n", q.Ticker, money(q.LastPrice), q.Currency))
	b.WriteString(fmt.Sprintf("Change: %s (%s%%)\n", signed(q.Change()), signed(changePercent)))
	b.WriteString(fmt.Sprintf("Previous close: %s\n", money(q.PreviousClose)))
	if n := len(q.Timestamps); n > 0 {
		first := time.Unix(q.Timestamps[0], 0).UTC().Format("2006-01-02")
		last := time.Unix(q.Timestamps[n-1], 0).UTC().Format("2006-01-02")
		b.WriteString(fmt.Sprintf("Points: %d (%s → %s)\n", n, first, last))
	} else {
		b.WriteString("Points: 0\n")
	}
	return b.String()
}

// FormatSearchResults formats search matches one per line.
func FormatSearchResults(results []model.SearchResult) string {
	if len(results) == 0 {
		return "No stocks found.\n"
	}
	var b strings.Builder
	for _, r := range results {
		b.WriteString(fmt.Sprintf("%-8s %-6s %-5s %s\n", r.Ticker, r.Type, r.Exchange, r.Name))
	}
	return b.String()
}

// FormatTapeLine renders one tape item as "AAPL $227.50 ▲+2.50".
func FormatTapeLine(item model.TapeItem) string {
	arrow := "▲"
	if item.Change < 0 {
		arrow = "▼"
	}
	return fmt.Sprintf("%s $%s %s%s", item.Ticker, money(item.Price), arrow, signed(item.Change))
}

// FormatTape joins tape items into a single strip.
func FormatTape(items []model.TapeItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, FormatTapeLine(it))
	}
	return strings.Join(parts, "  |  ")
}
