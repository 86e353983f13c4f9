// Package broker provides topic-addressed publish/subscribe messaging.
//
// Delivery is at-most-once and best-effort: publishes never block or surface
// errors to the caller, subscribers only see messages published after they
// subscribed, and a slow subscriber loses messages instead of growing memory.
package broker

import "context"

// subscriberBuffer bounds each subscriber's queue. Messages beyond it are
// dropped, not queued.
const subscriberBuffer = 256

// Message is one payload delivered on a topic.
type Message struct {
	Topic string
	Data  []byte
}

// Broker decouples producers from consumers by topic name.
type Broker interface {
	// Publish sends payload to every current subscriber of topic.
	// Fire-and-forget: failures are logged and counted, never returned.
	Publish(topic string, payload []byte)

	// Subscribe returns a live channel of future messages on topic and a
	// release function. The release function is safe to call more than once;
	// the channel is closed after release or when ctx is cancelled.
	Subscribe(ctx context.Context, topic string) (<-chan Message, func(), error)
}
