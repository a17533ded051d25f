package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// runUpdate stands in for the engine's progress payload: a snapshot the TUI
// can render on its own, so dropped events are harmless.
type runUpdate struct {
	Phase     string
	Processed int
}

func receive[T any](t *testing.T, ch <-chan Event[T]) Event[T] {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event within a second")
		return Event[T]{}
	}
}

func TestBroker_DeliversProgress(t *testing.T) {
	broker := NewBroker[runUpdate]()
	defer broker.Close()

	ch := broker.Subscribe(context.Background())
	broker.Publish(ProgressEvent, runUpdate{Phase: "applying", Processed: 7})

	ev := receive(t, ch)
	require.Equal(t, ProgressEvent, ev.Type)
	require.Equal(t, runUpdate{Phase: "applying", Processed: 7}, ev.Payload)
	require.False(t, ev.Timestamp.IsZero())
}

func TestBroker_MilestoneFansOutToAllSubscribers(t *testing.T) {
	broker := NewBroker[runUpdate]()
	defer broker.Close()

	ctx := context.Background()
	subs := []<-chan Event[runUpdate]{
		broker.Subscribe(ctx),
		broker.Subscribe(ctx),
		broker.Subscribe(ctx),
	}

	broker.Publish(MilestoneEvent, runUpdate{Phase: "applying", Processed: 25})

	for i, ch := range subs {
		ev := receive(t, ch)
		require.Equal(t, MilestoneEvent, ev.Type, "subscriber %d", i)
		require.Equal(t, 25, ev.Payload.Processed, "subscriber %d", i)
	}
}

func TestBroker_ContextCancelUnsubscribes(t *testing.T) {
	broker := NewBroker[runUpdate]()
	defer broker.Close()

	cancelled, cancel := context.WithCancel(context.Background())
	gone := broker.Subscribe(cancelled)
	stays := broker.Subscribe(context.Background())

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-gone:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond, "cancelled subscription closes")

	// The remaining subscriber is unaffected.
	broker.Publish(CheckpointEvent, runUpdate{Phase: "checkpointing", Processed: 10})
	ev := receive(t, stays)
	require.Equal(t, CheckpointEvent, ev.Type)
}

func TestBroker_SlowSubscriberLosesEventsNotTheRun(t *testing.T) {
	broker := NewBroker[runUpdate]()
	defer broker.Close()

	ch := broker.Subscribe(context.Background())

	// Publish past the buffer without draining. Publish must never block;
	// overflow is dropped.
	total := subscriberBuffer + 10
	done := make(chan struct{})
	go func() {
		for i := 0; i < total; i++ {
			broker.Publish(ProgressEvent, runUpdate{Processed: i})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	delivered := 0
	for {
		select {
		case <-ch:
			delivered++
		default:
			require.Equal(t, subscriberBuffer, delivered)
			return
		}
	}
}

func TestBroker_Close(t *testing.T) {
	broker := NewBroker[runUpdate]()
	ch := broker.Subscribe(context.Background())

	broker.Close()
	broker.Close() // idempotent

	_, ok := <-ch
	require.False(t, ok, "subscriber channel closes with the broker")

	broker.Publish(ProgressEvent, runUpdate{}) // no panic

	late := broker.Subscribe(context.Background())
	_, ok = <-late
	require.False(t, ok, "subscribing after close yields a closed channel")
}
