package tape

import (
	"sync"

	"StockDeck/internal/model"
)

// Hub fans tape snapshots out to subscribers. A subscriber that has not
// consumed its previous snapshot misses the next one.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan []model.TapeItem
	nextID int
	last   []model.TapeItem
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan []model.TapeItem)}
}

// Subscribe registers a subscriber. The channel is primed with the latest
// snapshot, if any. Call cancel to unsubscribe; it closes the channel.
func (h *Hub) Subscribe() (<-chan []model.TapeItem, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan []model.TapeItem, 1)
	if h.last != nil {
		ch <- h.last
	}
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Publish delivers snap to every subscriber without blocking.
func (h *Hub) Publish(snap []model.TapeItem) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = snap
	for _, ch := range h.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close unsubscribes everyone.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
