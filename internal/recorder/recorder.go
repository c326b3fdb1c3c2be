package recorder

import "time"

// Fetch kinds.
const (
	KindQuote  = "quote"
	KindSearch = "search"
	KindTape   = "tape"
)

// FetchEvent describes one upstream call and its outcome. No market data is kept.
type FetchEvent struct {
	Kind     string
	Ticker   string // ticker for quote/tape, query for search
	Period   string
	OK       bool
	Results  int // search matches kept, or series length for quotes
	Error    string
	Duration time.Duration
}

// Recorder persists the upstream fetch log.
type Recorder interface {
	RecordFetch(evt *FetchEvent) error
	Close() error
}
