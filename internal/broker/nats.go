package broker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"nft-auction-feed/internal/observability"
)

// NATSBroker implements Broker on a single shared NATS connection.
// The connection is constructed once in the composition root and injected
// into every component that needs it.
type NATSBroker struct {
	conn    *nats.Conn
	logger  *log.Logger
	metrics *observability.Metrics
}

// NewNATS connects to the NATS endpoint and wraps the connection.
func NewNATS(url string, logger *log.Logger, metrics *observability.Metrics) (*NATSBroker, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Printf("nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Printf("nats reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}

	return &NATSBroker{conn: conn, logger: logger, metrics: metrics}, nil
}

// Compile-time interface check.
var _ Broker = (*NATSBroker)(nil)

// Publish sends payload to topic. Errors are logged and dropped.
func (b *NATSBroker) Publish(topic string, payload []byte) {
	if err := b.conn.Publish(topic, payload); err != nil {
		b.logger.Printf("publish to %s failed: %v", topic, err)
		b.metrics.PublishFailures.WithLabelValues(topic).Inc()
	}
}

// Subscribe opens a per-caller subscription on topic.
func (b *NATSBroker) Subscribe(ctx context.Context, topic string) (<-chan Message, func(), error) {
	inbox := make(chan *nats.Msg, subscriberBuffer)
	sub, err := b.conn.ChanSubscribe(topic, inbox)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	out := make(chan Message, subscriberBuffer)
	done := make(chan struct{})

	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := sub.Unsubscribe(); err != nil {
				b.logger.Printf("unsubscribe from %s failed: %v", topic, err)
			}
			close(done)
		})
	}

	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				release()
				return
			case msg := <-inbox:
				if msg == nil {
					continue
				}
				select {
				case out <- Message{Topic: msg.Subject, Data: msg.Data}:
				default:
					b.metrics.MessagesDropped.WithLabelValues(topic).Inc()
				}
			}
		}
	}()

	return out, release, nil
}

// Close drains and closes the underlying connection. Intended for process
// shutdown only.
func (b *NATSBroker) Close() {
	if err := b.conn.Drain(); err != nil {
		b.logger.Printf("nats drain failed: %v", err)
	}
}
