package broker

import (
	"context"
	"log"
	"sync"

	"nft-auction-feed/internal/observability"
)

// MemoryBroker is an in-process Broker with the same at-most-once semantics
// as the NATS implementation. Used by tests and --use-memory runs.
type MemoryBroker struct {
	logger  *log.Logger
	metrics *observability.Metrics

	mu     sync.RWMutex
	topics map[string]map[*memorySub]struct{}
}

type memorySub struct {
	ch   chan Message
	once sync.Once
}

// NewMemory creates an empty in-process broker.
func NewMemory(logger *log.Logger, metrics *observability.Metrics) *MemoryBroker {
	return &MemoryBroker{
		logger:  logger,
		metrics: metrics,
		topics:  make(map[string]map[*memorySub]struct{}),
	}
}

// Compile-time interface check.
var _ Broker = (*MemoryBroker)(nil)

// Publish delivers payload to every current subscriber of topic.
// Subscribers with a full queue lose the message.
func (b *MemoryBroker) Publish(topic string, payload []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.topics[topic] {
		select {
		case sub.ch <- Message{Topic: topic, Data: payload}:
		default:
			b.metrics.MessagesDropped.WithLabelValues(topic).Inc()
		}
	}
}

// Subscribe registers a new subscriber on topic.
func (b *MemoryBroker) Subscribe(ctx context.Context, topic string) (<-chan Message, func(), error) {
	sub := &memorySub{ch: make(chan Message, subscriberBuffer)}

	b.mu.Lock()
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[*memorySub]struct{})
	}
	b.topics[topic][sub] = struct{}{}
	b.mu.Unlock()

	release := func() {
		sub.once.Do(func() {
			b.mu.Lock()
			delete(b.topics[topic], sub)
			b.mu.Unlock()
			close(sub.ch)
		})
	}

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			release()
		}()
	}

	return sub.ch, release, nil
}

// SubscriberCount reports current subscribers on topic. Test helper.
func (b *MemoryBroker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
