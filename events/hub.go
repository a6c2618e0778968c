package events

import (
	"context"
	"sync"

	"github.com/artvoid/artvoid-api/metrics"
	"go.uber.org/zap"
)

const subscriberBuffer = 16

// Hub is an in-process broadcaster. Slow subscribers miss events rather
// than blocking the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	logger *zap.Logger
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{subs: make(map[chan Event]struct{}), logger: logger}
}

// Subscribe registers a subscriber until ctx is done. The returned channel
// is closed on unsubscribe.
func (h *Hub) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	metrics.EventSubscribers.Inc()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		close(ch)
		h.mu.Unlock()
		metrics.EventSubscribers.Dec()
	}()

	return ch
}

// Publish never blocks
func (h *Hub) Publish(_ context.Context, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			h.logger.Warn("dropping event for slow subscriber",
				zap.String("type", event.Type), zap.Uint("order_id", event.OrderID))
		}
	}
	return nil
}

// Subscribers reports the number of live subscribers
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
