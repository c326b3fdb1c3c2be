package notifier

import (
	"sync"
	"time"

	"StockDeck/internal/model"
)

// Notifier receives user-visible notices.
type Notifier interface {
	Notify(level model.NoticeLevel, message string)
}

// Board keeps the most recent notices until a client drains them.
type Board struct {
	mu      sync.Mutex
	notices []model.Notice
	limit   int
	now     func() time.Time
}

// NewBoard creates a board holding at most limit pending notices.
func NewBoard(limit int) *Board {
	if limit <= 0 {
		limit = 50
	}
	return &Board{limit: limit, now: time.Now}
}

// Notify appends a notice, dropping the oldest once the board is full.
func (b *Board) Notify(level model.NoticeLevel, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, model.Notice{Level: level, Message: message, At: b.now()})
	if over := len(b.notices) - b.limit; over > 0 {
		b.notices = append([]model.Notice(nil), b.notices[over:]...)
	}
}

// Drain returns pending notices oldest first and clears the board.
func (b *Board) Drain() []model.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	if out == nil {
		out = []model.Notice{}
	}
	return out
}

// Pending returns a copy of pending notices without clearing them.
func (b *Board) Pending() []model.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Notice{}, b.notices...)
}
