package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Channel():
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	return Event{}
}

func TestBasicPublishSubscribe(t *testing.T) {
	bus := NewBus(0)
	defer bus.Shutdown()

	sub, err := bus.Subscribe(context.Background(), NodeCreated)
	require.NoError(t, err)

	bus.Publish(Event{Topic: NodeCreated, NodeID: "osc1", UnitType: "Oscillator"})

	ev := receive(t, sub)
	assert.Equal(t, NodeCreated, ev.Topic)
	assert.Equal(t, "osc1", ev.NodeID)
	assert.Equal(t, "Oscillator", ev.UnitType)
	assert.False(t, ev.Time.IsZero(), "publish stamps the event time")
}

func TestTopicIsolation(t *testing.T) {
	bus := NewBus(0)
	defer bus.Shutdown()

	sub, err := bus.Subscribe(context.Background(), EdgeAdded)
	require.NoError(t, err)

	bus.Publish(Event{Topic: NodeCreated, NodeID: "a"})
	bus.Publish(Event{Topic: EdgeAdded, EdgeID: "e1"})

	ev := receive(t, sub)
	assert.Equal(t, EdgeAdded, ev.Topic)
	assert.Equal(t, "e1", ev.EdgeID)

	select {
	case ev := <-sub.Channel():
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestAllTopicsReceivesOnce(t *testing.T) {
	bus := NewBus(0)
	defer bus.Shutdown()

	// Subscribed to a topic and the wildcard; delivery must not double up.
	sub, err := bus.Subscribe(context.Background(), SchemaFallback, AllTopics)
	require.NoError(t, err)

	bus.Publish(Event{Topic: SchemaFallback, UnitType: "Noise"})
	bus.Publish(Event{Topic: NodeRemoved, NodeID: "n"})

	assert.Equal(t, SchemaFallback, receive(t, sub).Topic)
	assert.Equal(t, NodeRemoved, receive(t, sub).Topic)

	select {
	case ev := <-sub.Channel():
		t.Fatalf("duplicate event %+v", ev)
	default:
	}
}

func TestSubscribeWithoutTopicsMeansAll(t *testing.T) {
	bus := NewBus(0)
	defer bus.Shutdown()

	sub, err := bus.Subscribe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, bus.SubscriberCount(AllTopics))

	bus.Publish(Event{Topic: ConnectionRejected, Reason: "Connection already exists"})
	assert.Equal(t, "Connection already exists", receive(t, sub).Reason)
}

func TestMultipleSubscribers(t *testing.T) {
	bus := NewBus(0)
	defer bus.Shutdown()

	const n = 5
	subs := make([]*Subscription, n)
	for i := range subs {
		sub, err := bus.Subscribe(context.Background(), EdgeRemoved)
		require.NoError(t, err)
		subs[i] = sub
	}
	assert.Equal(t, n, bus.SubscriberCount(EdgeRemoved))

	bus.Publish(Event{Topic: EdgeRemoved, EdgeID: "x"})

	for _, sub := range subs {
		assert.Equal(t, "x", receive(t, sub).EdgeID)
	}
}

func TestFullBufferDrops(t *testing.T) {
	bus := NewBus(2)
	defer bus.Shutdown()

	_, err := bus.Subscribe(context.Background(), NodeCreated)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		bus.Publish(Event{Topic: NodeCreated})
	}
	assert.Equal(t, uint64(3), bus.Dropped())
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus(0)
	defer bus.Shutdown()

	sub, err := bus.Subscribe(context.Background(), NodeCreated)
	require.NoError(t, err)
	sub.Unsubscribe()

	assert.Equal(t, 0, bus.SubscriberCount(NodeCreated))
	_, ok := <-sub.Channel()
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		sub.Unsubscribe()
		bus.Publish(Event{Topic: NodeCreated})
	})
}

func TestContextCancellationUnsubscribes(t *testing.T) {
	bus := NewBus(0)
	defer bus.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	_, err := bus.Subscribe(ctx, NodeCreated)
	require.NoError(t, err)

	cancel()
	assert.Eventually(t, func() bool {
		return bus.SubscriberCount(NodeCreated) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestShutdown(t *testing.T) {
	bus := NewBus(0)

	sub, err := bus.Subscribe(context.Background(), NodeCreated)
	require.NoError(t, err)

	bus.Shutdown()
	bus.Shutdown()

	_, ok := <-sub.Channel()
	assert.False(t, ok)

	_, err = bus.Subscribe(context.Background(), NodeCreated)
	assert.ErrorIs(t, err, ErrBusClosed)

	assert.NotPanics(t, func() { bus.Publish(Event{Topic: NodeCreated}) })
}

func TestPublishDuringUnsubscribe(t *testing.T) {
	bus := NewBus(1)
	defer bus.Shutdown()

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				bus.Publish(Event{Topic: NodeCreated})
			}
		}
	}()

	assert.NotPanics(t, func() {
		for i := 0; i < 5000; i++ {
			sub, err := bus.Subscribe(context.Background(), NodeCreated)
			require.NoError(t, err)
			sub.Unsubscribe()

			ctx, cancel := context.WithCancel(context.Background())
			_, err = bus.Subscribe(ctx)
			require.NoError(t, err)
			cancel()
		}
	})
	close(stop)
	<-done
}

func TestShutdownDuringPublish(t *testing.T) {
	bus := NewBus(1)
	for i := 0; i < 100; i++ {
		_, err := bus.Subscribe(context.Background())
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			bus.Publish(Event{Topic: EdgeAdded})
		}
	}()
	bus.Shutdown()
	wg.Wait()

	_, err := bus.Subscribe(context.Background())
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestNilBusPublish(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() { bus.Publish(Event{Topic: NodeCreated}) })
}

func TestConcurrentPublish(t *testing.T) {
	bus := NewBus(1000)
	defer bus.Shutdown()

	sub, err := bus.Subscribe(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				bus.Publish(Event{Topic: EdgeAdded})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, sub.Channel(), 500)
	assert.Zero(t, bus.Dropped())
}
