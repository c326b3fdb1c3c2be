package tape

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"StockDeck/internal/collector"
	"StockDeck/internal/proxy"
)

var propertySymbols = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "AMD"}

// Property: whatever subset of symbols fails, the snapshot holds exactly the
// others, in configured order, regardless of worker count.
func TestProperty_SnapshotIsOrderedSurvivors(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())
	properties := gopter.NewProperties(parameters)

	properties.Property("failed symbols are omitted and order is kept", prop.ForAll(
		func(failMask uint8, workers int) bool {
			m := &collector.MockFetcher{Price: 50, ChartErr: map[string]error{}}
			var want []string
			for i, sym := range propertySymbols {
				if failMask&(1<<i) != 0 {
					m.ChartErr[sym] = errors.New("boom")
					continue
				}
				want = append(want, sym)
			}

			tp := New(proxy.New(m, nil), propertySymbols, "1d", workers)
			snap := tp.Refresh(context.Background())
			if len(snap) != len(want) {
				return false
			}
			for i := range want {
				if snap[i].Ticker != want[i] {
					return false
				}
			}
			return m.ChartCallCount() == len(propertySymbols)
		},
		gen.UInt8(),
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}
