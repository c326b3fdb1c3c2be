package model

import "time"

// Entry is one user-added ticker in the watchlist.
type Entry struct {
	ID      string    `json:"id"`
	Ticker  string    `json:"ticker"`
	Name    string    `json:"name"`
	Quote   *Quote    `json:"quote"`
	AddedAt time.Time `json:"addedAt"`
}

// Card is an entry with the derived figures shown on its tile.
type Card struct {
	Entry
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	// RangePosition places the last price within [Low, High], 0 to 1.
	RangePosition float64 `json:"rangePosition"`
}

// NoticeLevel classifies a user-visible notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message for the user.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// TapeItem is one popular ticker's price summary.
type TapeItem struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
}
