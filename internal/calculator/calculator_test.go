package calculator

import (
	"math"
	"testing"

	"github.com/guregu/null/v6"

	"StockDeck/internal/model"
)

func TestPriceRange_SkipsNulls(t *testing.T) {
	prices := []null.Float{null.FloatFrom(10), {}, null.FloatFrom(14.5), null.FloatFrom(9.25), {}}
	high, low, err := PriceRange(prices)
	if err != nil {
		t.Fatal(err)
	}
	if high != 14.5 || low != 9.25 {
		t.Errorf("got high=%v low=%v", high, low)
	}
}

func TestPriceRange_AllNull(t *testing.T) {
	if _, _, err := PriceRange([]null.Float{{}, {}}); err == nil {
		t.Error("expected error for all-null series")
	}
	if _, _, err := PriceRange(nil); err == nil {
		t.Error("expected error for empty series")
	}
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		current, high, low, want float64
	}{
		{15, 20, 10, 0.5},
		{25, 20, 10, 1},
		{5, 20, 10, 0},
		{7, 7, 7, 0.5},
	}
	for _, tt := range tests {
		got, err := RangePosition(tt.current, tt.high, tt.low)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("RangePosition(%v,%v,%v) = %v, want %v", tt.current, tt.high, tt.low, got, tt.want)
		}
	}
	if _, err := RangePosition(1, 1, 2); err == nil {
		t.Error("expected error when high < low")
	}
}

func TestBuildCard(t *testing.T) {
	q := &model.Quote{
		Ticker:        "NVDA",
		LastPrice:     110,
		PreviousClose: 100,
		Prices:        []null.Float{null.FloatFrom(95), {}, null.FloatFrom(120)},
	}
	card := BuildCard(model.Entry{ID: "NVDA-1", Ticker: "NVDA", Quote: q})
	if card.Change != 10 || math.Abs(card.ChangePercent-10) > 1e-9 {
		t.Errorf("change=%v pct=%v", card.Change, card.ChangePercent)
	}
	if card.High != 120 || card.Low != 95 {
		t.Errorf("high=%v low=%v", card.High, card.Low)
	}
	if math.Abs(card.RangePosition-0.6) > 1e-9 {
		t.Errorf("range position = %v, want 0.6", card.RangePosition)
	}

	empty := BuildCard(model.Entry{ID: "X-1", Quote: &model.Quote{LastPrice: 5}})
	if empty.High != 5 || empty.Low != 5 || empty.ChangePercent != 0 || empty.RangePosition != 0.5 {
		t.Errorf("empty series card = %+v", empty)
	}
}
