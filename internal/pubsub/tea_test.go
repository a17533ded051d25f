package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestContinuousListener_YieldsEventAsMsg(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	listener := NewContinuousListener(context.Background(), broker)
	broker.Publish(LogLineEvent, "INFO  [engine] batch started batch=1")

	msg := listener.Listen()()
	ev, ok := msg.(Event[string])
	require.True(t, ok, "message is the typed event")
	require.Equal(t, LogLineEvent, ev.Type)
	require.Equal(t, "INFO  [engine] batch started batch=1", ev.Payload)
}

func TestContinuousListener_ReArmsInOrder(t *testing.T) {
	broker := NewBroker[runUpdate]()
	defer broker.Close()

	listener := NewContinuousListener(context.Background(), broker)
	broker.Publish(ProgressEvent, runUpdate{Phase: "applying", Processed: 1})
	broker.Publish(CheckpointEvent, runUpdate{Phase: "checkpointing", Processed: 1})
	broker.Publish(MilestoneEvent, runUpdate{Phase: "applying", Processed: 25})

	want := []EventType{ProgressEvent, CheckpointEvent, MilestoneEvent}
	for _, typ := range want {
		ev, ok := listener.Listen()().(Event[runUpdate])
		require.True(t, ok)
		require.Equal(t, typ, ev.Type)
	}
}

func TestContinuousListener_NilOnContextCancel(t *testing.T) {
	broker := NewBroker[runUpdate]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	listener := NewContinuousListener(ctx, broker)
	cancel()

	require.Eventually(t, func() bool {
		return listener.Listen()() == nil
	}, time.Second, 5*time.Millisecond, "listener ends once the context is done")
}

func TestContinuousListener_NilOnBrokerClose(t *testing.T) {
	broker := NewBroker[runUpdate]()
	listener := NewContinuousListener(context.Background(), broker)

	broker.Close()

	require.Nil(t, listener.Listen()(), "closed broker ends the re-arm cycle")
}
