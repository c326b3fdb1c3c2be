package calculator

import (
	"errors"
	"math"

	"github.com/guregu/null/v6"
)

// PriceRange returns the high and low of the non-null prices.
func PriceRange(prices []null.Float) (high, low float64, err error) {
	high = math.Inf(-1)
	low = math.Inf(1)
	seen := false
	for _, p := range prices {
		if !p.Valid {
			continue
		}
		seen = true
		if p.Float64 > high {
			high = p.Float64
		}
		if p.Float64 < low {
			low = p.Float64
		}
	}
	if !seen {
		return 0, 0, errors.New("no prices provided")
	}
	return high, low, nil
}

// RangePosition returns where current sits within [low, high] (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
