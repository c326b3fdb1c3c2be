// Registers:
//
//	#stockdeck_upstream_requests_total{kind,outcome}
//	#stockdeck_upstream_request_seconds{kind}
//	#stockdeck_watchlist_entries
//	#stockdeck_tape_symbols
//	#go_* and process_* system metrics
//
// Handler exposes them for mounting on the main router.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once             sync.Once
	registry         *prometheus.Registry
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	watchlistEntries prometheus.Gauge
	tapeSymbols      prometheus.Gauge
)

// Init creates and registers the collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		upstreamRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockdeck_upstream_requests_total",
				Help: "Upstream quote/search calls by outcome",
			},
			[]string{"kind", "outcome"},
		)
		upstreamLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockdeck_upstream_request_seconds",
				Help:    "Upstream call latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		)
		watchlistEntries = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stockdeck_watchlist_entries",
			Help: "Entries currently in the watchlist",
		})
		tapeSymbols = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stockdeck_tape_symbols",
			Help: "Tape symbols priced by the last refresh",
		})

		registry.MustRegister(upstreamRequests, upstreamLatency, watchlistEntries, tapeSymbols)
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Handler returns the exposition handler, initializing collectors if needed.
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ObserveUpstream counts one upstream call and its latency.
func ObserveUpstream(kind string, ok bool, d time.Duration) {
	if upstreamRequests == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	upstreamRequests.WithLabelValues(kind, outcome).Inc()
	upstreamLatency.WithLabelValues(kind).Observe(d.Seconds())
}

// SetWatchlistEntries records the current watchlist length.
func SetWatchlistEntries(n int) {
	if watchlistEntries != nil {
		watchlistEntries.Set(float64(n))
	}
}

// SetTapeSymbols records how many tape symbols were priced.
func SetTapeSymbols(n int) {
	if tapeSymbols != nil {
		tapeSymbols.Set(float64(n))
	}
}
