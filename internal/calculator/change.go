package calculator

import "StockDeck/internal/model"

// ChangePercent returns the move from previous close in percent. Zero when there is no previous close.
func ChangePercent(q *model.Quote) float64 {
	if q.PreviousClose == 0 {
		return 0
	}
	return q.Change() / q.PreviousClose * 100
}

// BuildCard derives the tile figures for an entry.
func BuildCard(e model.Entry) model.Card {
	card := model.Card{Entry: e}
	if e.Quote == nil {
		return card
	}
	card.Change = e.Quote.Change()
	card.ChangePercent = ChangePercent(e.Quote)
	if high, low, err := PriceRange(e.Quote.Prices); err == nil {
		card.High = high
		card.Low = low
	} else {
		card.High = e.Quote.LastPrice
		card.Low = e.Quote.LastPrice
	}
	if pos, err := RangePosition(e.Quote.LastPrice, card.High, card.Low); err == nil {
		card.RangePosition = pos
	}
	return card
}
