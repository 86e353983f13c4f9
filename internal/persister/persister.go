// Package persister consumes routed transaction envelopes, decodes their
// Borsh event payloads and writes domain records, republishing every stored
// record onto the shared feed topic.
package persister

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"nft-auction-feed/internal/broker"
	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/observability"
)

// Handler binds one event type to its topic, payload layout and store.
type Handler interface {
	// Topic is the broker topic the handler consumes.
	Topic() string
	// EventType labels the handler in metrics and feed frames.
	EventType() string
	// Decode converts a raw event payload into a persistable record.
	Decode(data []byte) (any, error)
	// Persist writes the record produced by Decode.
	Persist(ctx context.Context, record any) error
}

// feedFrame is the shape republished on the shared feed topic.
type feedFrame struct {
	EventType string `json:"event_type"`
	Data      any    `json:"data"`
}

// Persister runs one handler against its topic subscription. Messages are
// processed sequentially to keep per-topic ordering.
type Persister struct {
	broker  broker.Broker
	handler Handler
	logger  *log.Logger
	metrics *observability.Metrics
}

// New creates a persister for the handler's topic.
func New(b broker.Broker, handler Handler, logger *log.Logger, metrics *observability.Metrics) *Persister {
	return &Persister{
		broker:  b,
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

// Run consumes the handler's topic until ctx is cancelled. A closed
// subscription returns an error so the supervisor resubscribes.
func (p *Persister) Run(ctx context.Context) error {
	msgs, release, err := p.broker.Subscribe(ctx, p.handler.Topic())
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", p.handler.Topic(), err)
	}
	defer release()

	p.logger.Printf("[persister] consuming topic=%s", p.handler.Topic())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("subscription %s closed", p.handler.Topic())
			}
			p.process(ctx, msg.Data)
		}
	}
}

// process handles one envelope. Skips are counted per reason; only insert
// failures abort without counting a skip.
func (p *Persister) process(ctx context.Context, raw []byte) {
	eventType := p.handler.EventType()

	var event domain.TransactionEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		p.metrics.EventsSkipped.WithLabelValues(eventType, observability.SkipMalformedEnvelope).Inc()
		p.logger.Printf("[persister] %s: malformed envelope: %v", eventType, err)
		return
	}

	data, err := extractEventData(event.Logs)
	if err != nil {
		if errors.Is(err, ErrNoEventData) {
			p.metrics.EventsSkipped.WithLabelValues(eventType, observability.SkipNoEventData).Inc()
			return
		}
		p.metrics.EventsSkipped.WithLabelValues(eventType, observability.SkipBadBase64).Inc()
		p.logger.Printf("[persister] %s sig=%s: %v", eventType, event.Signature, err)
		return
	}

	record, err := p.handler.Decode(data)
	if err != nil {
		reason := observability.SkipBadLayout
		if errors.Is(err, errBadRecord) {
			reason = observability.SkipBadRecord
		}
		p.metrics.EventsSkipped.WithLabelValues(eventType, reason).Inc()
		p.logger.Printf("[persister] %s sig=%s: %v", eventType, event.Signature, err)
		return
	}

	if err := p.handler.Persist(ctx, record); err != nil {
		p.metrics.PersistFailures.WithLabelValues(eventType).Inc()
		p.logger.Printf("[persister] %s sig=%s: insert: %v", eventType, event.Signature, err)
		return
	}
	p.metrics.RecordsPersisted.WithLabelValues(eventType).Inc()

	frame, err := json.Marshal(feedFrame{EventType: eventType, Data: record})
	if err != nil {
		p.logger.Printf("[persister] %s sig=%s: marshal feed frame: %v", eventType, event.Signature, err)
		return
	}
	p.broker.Publish(domain.TopicAllEvents, frame)
}
