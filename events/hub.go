package events

import (
	"context"
	"sync"
	"sync/atomic"
)

// Hub is the in-process broadcaster behind GraphQL subscriptions.
// A slow subscriber loses events rather than blocking publishers.
type Hub struct {
	mu      sync.RWMutex
	nextID  uint64
	subs    map[uint64]*subscriber
	buffer  int
	dropped atomic.Uint64
}

type subscriber struct {
	ch     chan OrderEvent
	filter func(OrderEvent) bool
	once   sync.Once
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[uint64]*subscriber), buffer: buffer}
}

// Subscribe registers filter (nil accepts everything). The returned cancel
// func closes the channel and is safe to call more than once.
func (h *Hub) Subscribe(filter func(OrderEvent) bool) (<-chan OrderEvent, func()) {
	sub := &subscriber{ch: make(chan OrderEvent, h.buffer), filter: filter}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs[id] = sub
	h.mu.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

func (h *Hub) Publish(_ context.Context, ev OrderEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.filter != nil && !sub.filter(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped counts events discarded because a subscriber's buffer was full.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }
