package bus

import (
	"log/slog"
	"sync"
)

// SubscriberBuffer is the capacity of each subscriber channel.
const SubscriberBuffer = 8

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		mu:   sync.Mutex{},
		subs: make(map[*chan T]struct{}),
	}
}

// Hub fans values out to subscribers. Broadcast never blocks; a subscriber
// that falls behind misses values.
type Hub[T any] struct {
	mu   sync.Mutex
	subs map[*chan T]struct{}
}

func (h *Hub[T]) Broadcast(event T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case *sub <- event:
		default:
			slog.Debug("Dropping event for slow subscriber", "package", "bus")
		}
	}
}

// Subscribe returns a channel of broadcast values and a function that
// unsubscribes and closes it.
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	h.mu.Lock()
	c := make(chan T, SubscriberBuffer)

	key := &c
	h.subs[key] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return c, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, key)
			close(c)
			h.mu.Unlock()
		})
	}
}

// Len returns the number of subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
