package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBroker_PublishReachesAllSubscribers(t *testing.T) {
	b := NewBroker[string]()
	defer b.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub1 := b.Subscribe(ctx)
	sub2 := b.Subscribe(ctx)

	b.Publish(UpdatedEvent, "hello")

	for _, sub := range []<-chan Event[string]{sub1, sub2} {
		select {
		case evt := <-sub:
			require.Equal(t, UpdatedEvent, evt.Type)
			require.Equal(t, "hello", evt.Payload)
		case <-time.After(time.Second):
			require.Fail(t, "timed out waiting for event")
		}
	}
}

func TestBroker_ContextCancelClosesChannel(t *testing.T) {
	b := NewBroker[int]()
	defer b.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	sub := b.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-sub:
		require.False(t, ok, "channel should be closed after cancel")
	case <-time.After(time.Second):
		require.Fail(t, "channel was not closed after context cancellation")
	}
}

func TestBroker_ShutdownClosesSubscribers(t *testing.T) {
	b := NewBroker[int]()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := b.Subscribe(ctx)

	b.Shutdown()

	select {
	case _, ok := <-sub:
		require.False(t, ok, "channel should be closed after Shutdown")
	case <-time.After(time.Second):
		require.Fail(t, "channel was not closed after Shutdown")
	}

	// Publish after shutdown is a no-op, not a panic.
	b.Publish(UpdatedEvent, 42)
}

func TestBroker_SubscribeAfterShutdownReturnsClosedChannel(t *testing.T) {
	b := NewBroker[int]()
	b.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := b.Subscribe(ctx)

	_, ok := <-sub
	require.False(t, ok)
}

func TestBroker_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := NewBroker[int]()
	defer b.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = b.Subscribe(ctx) // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			b.Publish(UpdatedEvent, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.Fail(t, "Publish blocked on a slow subscriber")
	}
}
