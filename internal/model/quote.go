package model

import (
	"fmt"

	"github.com/guregu/null/v6"
)

// Period is a chart range token accepted by the quote API.
type Period string

const (
	Period1d  Period = "1d"
	Period5d  Period = "5d"
	Period1mo Period = "1mo"
	Period6mo Period = "6mo"
	Period1y  Period = "1y"
	Period5y  Period = "5y"
	PeriodMax Period = "max"
)

// DefaultPeriod is used when the caller does not name one.
const DefaultPeriod = Period1y

// Periods lists every supported period in display order.
var Periods = []Period{Period1d, Period5d, Period1mo, Period6mo, Period1y, Period5y, PeriodMax}

// ParsePeriod validates a period token. An empty token yields DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return DefaultPeriod, nil
	}
	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Quote is a price snapshot for one ticker plus its daily series.
// Prices and Volumes carry nulls for non-trading intervals.
type Quote struct {
	Ticker        string       `json:"ticker"`
	Currency      string       `json:"currency"`
	LastPrice     float64      `json:"regularMarketPrice"`
	PreviousClose float64      `json:"chartPreviousClose"`
	Timestamps    []int64      `json:"timestamps"`
	Prices        []null.Float `json:"prices"`
	Volumes       []null.Float `json:"volumes"`
}

// Clone returns a copy that shares no series storage with q.
func (q *Quote) Clone() *Quote {
	if q == nil {
		return nil
	}
	cp := *q
	cp.Timestamps = append([]int64(nil), q.Timestamps...)
	cp.Prices = append([]null.Float(nil), q.Prices...)
	cp.Volumes = append([]null.Float(nil), q.Volumes...)
	return &cp
}

// Change returns the move from the previous close.
func (q *Quote) Change() float64 {
	return q.LastPrice - q.PreviousClose
}
