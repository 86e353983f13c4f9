package broker

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft-auction-feed/internal/observability"
)

func newTestBroker(t *testing.T) *MemoryBroker {
	t.Helper()
	metrics := observability.NewMetrics(prometheus.NewRegistry(), "test")
	return NewMemory(log.New(testWriter{t}, "", 0), metrics)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func receiveOne(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestMemoryBroker_Multicast(t *testing.T) {
	b := newTestBroker(t)
	ctx := context.Background()

	ch1, release1, err := b.Subscribe(ctx, "topic")
	require.NoError(t, err)
	defer release1()

	ch2, release2, err := b.Subscribe(ctx, "topic")
	require.NoError(t, err)
	defer release2()

	b.Publish("topic", []byte("hello"))

	assert.Equal(t, []byte("hello"), receiveOne(t, ch1).Data)
	assert.Equal(t, []byte("hello"), receiveOne(t, ch2).Data)
}

func TestMemoryBroker_NoReplay(t *testing.T) {
	b := newTestBroker(t)

	// Published before subscription: must not be delivered.
	b.Publish("topic", []byte("first"))

	ch, release, err := b.Subscribe(context.Background(), "topic")
	require.NoError(t, err)
	defer release()

	b.Publish("topic", []byte("second"))

	msg := receiveOne(t, ch)
	assert.Equal(t, []byte("second"), msg.Data)

	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra message: %q", extra.Data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBroker_ReleaseIdempotent(t *testing.T) {
	b := newTestBroker(t)

	_, release, err := b.Subscribe(context.Background(), "topic")
	require.NoError(t, err)

	release()
	release() // must not panic or double-close

	assert.Equal(t, 0, b.SubscriberCount("topic"))
}

func TestMemoryBroker_ContextCancelReleases(t *testing.T) {
	b := newTestBroker(t)

	ctx, cancel := context.WithCancel(context.Background())
	ch, _, err := b.Subscribe(ctx, "topic")
	require.NoError(t, err)
	require.Equal(t, 1, b.SubscriberCount("topic"))

	cancel()

	// Channel close signals the release completed.
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("subscription not released after cancel")
	}
	assert.Equal(t, 0, b.SubscriberCount("topic"))
}

func TestMemoryBroker_DropsWhenFull(t *testing.T) {
	b := newTestBroker(t)

	ch, release, err := b.Subscribe(context.Background(), "topic")
	require.NoError(t, err)
	defer release()

	// Fill the queue without draining, then overflow it.
	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish("topic", []byte{byte(i)})
	}

	// Only the buffered messages survive.
	count := 0
	for {
		select {
		case <-ch:
			count++
		default:
			assert.Equal(t, subscriberBuffer, count)
			return
		}
	}
}
