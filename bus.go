package trafficfusion

import (
	"log/slog"
	"sync"
)

// subscriptionBuffer is the per-subscriber channel depth. A subscriber that
// falls further behind than this loses events rather than stalling a tick.
const subscriptionBuffer = 16

// Subscription is one subscriber's handle on the event bus. Events arrive on
// Events until Unsubscribe closes it.
type Subscription struct {
	ch    chan Event
	types map[EventType]struct{}
}

// Events returns the channel the subscription's events are delivered on.
func (s *Subscription) Events() <-chan Event { return s.ch }

func (s *Subscription) wants(t EventType) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[t]
	return ok
}

// eventBus fans engine lifecycle events out to subscribers. Delivery is
// non-blocking: a full subscriber buffer drops the event for that subscriber
// only. The bus never runs subscriber code.
type eventBus struct {
	mu      sync.Mutex
	subs    map[*Subscription]struct{}
	dropped uint64
	logger  *slog.Logger
}

func newEventBus(logger *slog.Logger) *eventBus {
	return &eventBus{
		subs:   make(map[*Subscription]struct{}),
		logger: logger,
	}
}

// subscribe registers a subscriber for the given event types; no types
// means all events.
func (b *eventBus) subscribe(types ...EventType) *Subscription {
	sub := &Subscription{ch: make(chan Event, subscriptionBuffer)}
	if len(types) > 0 {
		sub.types = make(map[EventType]struct{}, len(types))
		for _, t := range types {
			sub.types[t] = struct{}{}
		}
	}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// unsubscribe removes the subscriber and closes its channel. Safe to call
// more than once.
func (b *eventBus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.ch)
}

// publish delivers an event to every interested subscriber without blocking.
func (b *eventBus) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		if !sub.wants(ev.Type) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			b.dropped++
			b.logger.Warn("dropping event for slow subscriber", "event", ev.Type, "dropped_total", b.dropped)
		}
	}
}
