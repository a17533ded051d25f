package pubsub

import (
	"context"
	"sync"
	"time"
)

// subscriberBuffer sizes each subscription channel. The engine publishes a
// handful of events per batch, so 64 absorbs a slow TUI frame without ever
// stalling the run loop.
const subscriberBuffer = 64

// Broker fans events out to any number of subscribers. Publishing never
// blocks: a subscriber that cannot keep up loses events rather than holding
// up the engine. That is fine here because every Progress payload carries
// the full current state, so a dropped event is superseded by the next one.
type Broker[T any] struct {
	mu     sync.RWMutex
	subs   map[chan Event[T]]struct{}
	closed bool
}

// NewBroker creates an open broker with no subscribers.
func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{subs: make(map[chan Event[T]]struct{})}
}

// Subscribe registers a subscriber. The channel is removed and closed when
// ctx is cancelled; on an already-closed broker it comes back closed.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event[T], subscriberBuffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed {
			return
		}
		delete(b.subs, ch)
		close(ch)
	}()

	return ch
}

// Publish delivers an event to every subscriber with buffer room.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	ev := Event[T]{Type: eventType, Payload: payload, Timestamp: time.Now()}
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber is behind; the next event supersedes this one.
		}
	}
}

// Close shuts the broker down and closes every subscriber channel. Further
// Publish calls are no-ops. Safe to call more than once.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
