// Package events carries engine diagnostics (node and edge lifecycle,
// schema fallbacks, fallback-accepted connections) to any number of
// observers without ever blocking the engine.
package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrBusClosed is returned by Subscribe after Shutdown.
var ErrBusClosed = errors.New("event bus is shut down")

// Topic names a class of diagnostic event.
type Topic string

const (
	NodeCreated        Topic = "node.created"
	NodeRemoved        Topic = "node.removed"
	EdgeAdded          Topic = "edge.added"
	EdgeRemoved        Topic = "edge.removed"
	SchemaFallback     Topic = "schema.fallback"
	ConnectionFallback Topic = "connection.fallback"
	ConnectionRejected Topic = "connection.rejected"

	// AllTopics subscribes to every topic.
	AllTopics Topic = "*"
)

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 128

// Event is one diagnostic message.
type Event struct {
	Topic    Topic
	Time     time.Time
	NodeID   string
	EdgeID   string
	UnitType string
	Reason   string
}

// Bus provides publish/subscribe fan-out for diagnostic events
type Bus struct {
	subscribers map[Topic]map[*Subscription]bool
	mu          sync.RWMutex
	buffer      int
	dropped     atomic.Uint64
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
}

// Subscription represents a subscription to one or more topics
type Subscription struct {
	topics    []Topic
	channel   chan Event
	bus       *Bus
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewBus creates a bus whose subscriptions buffer up to buffer events.
// A non-positive buffer selects DefaultBuffer.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus{
		subscribers: make(map[Topic]map[*Subscription]bool),
		buffer:      buffer,
		shutdown:    make(chan struct{}),
	}
}

// Subscribe creates a subscription to the given topics (AllTopics when
// none are given). It ends when ctx is cancelled or the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context, topics ...Topic) (*Subscription, error) {
	if len(topics) == 0 {
		topics = []Topic{AllTopics}
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		topics:  topics,
		channel: make(chan Event, b.buffer),
		bus:     b,
		ctx:     subCtx,
		cancel:  cancel,
	}

	// Checked under b.mu so a concurrent Shutdown either sees this
	// subscription and closes it, or makes us refuse.
	b.mu.Lock()
	if b.closed() {
		b.mu.Unlock()
		cancel()
		return nil, ErrBusClosed
	}
	for _, topic := range topics {
		if b.subscribers[topic] == nil {
			b.subscribers[topic] = make(map[*Subscription]bool)
		}
		b.subscribers[topic][sub] = true
	}
	b.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-b.shutdown:
			// Shutdown closes every channel itself.
		}
	}()

	return sub, nil
}

// Publish delivers ev to the subscribers of its topic and of AllTopics.
// Full subscriber buffers drop the event; Publish never blocks.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}

	if b.closed() {
		return
	}

	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	// Sends never block, so they run under the read lock. Channels are only
	// closed under the write lock. A subscriber on both the topic and
	// AllTopics receives the event once.
	b.mu.RLock()
	defer b.mu.RUnlock()
	seen := make(map[*Subscription]bool)
	for _, topic := range []Topic{ev.Topic, AllTopics} {
		for sub := range b.subscribers[topic] {
			if seen[sub] {
				continue
			}
			seen[sub] = true
			select {
			case sub.channel <- ev:
			default:
				b.dropped.Add(1)
			}
		}
	}
}

func (b *Bus) closed() bool {
	b.shutdownMu.Lock()
	defer b.shutdownMu.Unlock()
	return b.isShutdown
}

// SubscriberCount returns the number of subscribers for a topic
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

// Dropped returns how many deliveries were skipped because a buffer was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Shutdown closes all subscriptions. Further publishes are ignored.
func (b *Bus) Shutdown() {
	b.shutdownMu.Lock()
	if b.isShutdown {
		b.shutdownMu.Unlock()
		return
	}
	b.isShutdown = true
	b.shutdownMu.Unlock()

	close(b.shutdown)

	b.mu.Lock()
	for topic, subs := range b.subscribers {
		for sub := range subs {
			sub.close()
		}
		delete(b.subscribers, topic)
	}
	b.mu.Unlock()
}

// Channel returns the subscription's event channel. It is closed when the
// subscription ends.
func (s *Subscription) Channel() <-chan Event {
	return s.channel
}

// Unsubscribe removes the subscription
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	for _, topic := range s.topics {
		if s.bus.subscribers[topic] != nil {
			delete(s.bus.subscribers[topic], s)
			if len(s.bus.subscribers[topic]) == 0 {
				delete(s.bus.subscribers, topic)
			}
		}
	}

	s.close()
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
