package persister

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log"
	"testing"
	"time"

	"github.com/near/borsh-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft-auction-feed/internal/broker"
	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/observability"
	"nft-auction-feed/internal/storage/memory"
)

var bidDiscriminator = []byte{209, 98, 122, 16, 194, 244, 76, 183}

type bidFixture struct {
	persister *Persister
	broker    *broker.MemoryBroker
	store     *memory.BidStore
	metrics   *observability.Metrics
}

func newBidFixture(t *testing.T) *bidFixture {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	metrics := observability.NewMetrics(prometheus.NewRegistry(), "")
	b := broker.NewMemory(logger, metrics)
	store := memory.NewBidStore()
	handler := NewBidHandler(store, logger)
	return &bidFixture{
		persister: New(b, handler, logger, metrics),
		broker:    b,
		store:     store,
		metrics:   metrics,
	}
}

// run starts the persister and returns once its subscription is live.
func (f *bidFixture) run(t *testing.T, ctx context.Context) {
	t.Helper()
	go func() { _ = f.persister.Run(ctx) }()
	require.Eventually(t, func() bool {
		return f.broker.SubscriberCount(domain.TopicBidPlaced) == 1
	}, time.Second, 5*time.Millisecond)
}

func bidEnvelope(t *testing.T, p domain.PlacedBidPayload) []byte {
	t.Helper()
	payload, err := borsh.Serialize(p)
	require.NoError(t, err)

	line := programDataPrefix + base64.StdEncoding.EncodeToString(append(bidDiscriminator, payload...))
	raw, err := json.Marshal(domain.TransactionEvent{
		Signature: "sig",
		Slot:      7,
		Logs:      []string{"Program log: Instruction: Bid", line},
	})
	require.NoError(t, err)
	return raw
}

func testBidPayload() domain.PlacedBidPayload {
	p := domain.PlacedBidPayload{
		NFTName:   "Foo",
		Amount:    500,
		Timestamp: 1700000000,
	}
	p.NFTAddress[0] = 1
	p.Bidder[31] = 2
	return p
}

func TestPersister_BidEndToEnd(t *testing.T) {
	f := newBidFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed, release, err := f.broker.Subscribe(ctx, domain.TopicAllEvents)
	require.NoError(t, err)
	defer release()

	f.run(t, ctx)
	f.broker.Publish(domain.TopicBidPlaced, bidEnvelope(t, testBidPayload()))

	require.Eventually(t, func() bool {
		return len(f.store.All()) == 1
	}, time.Second, 5*time.Millisecond)

	bid := f.store.All()[0]
	assert.Equal(t, "Foo", bid.NFTName)
	assert.Equal(t, uint64(500), bid.Amount)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), bid.Timestamp)
	assert.NotEmpty(t, bid.NFTAddress)
	assert.NotEmpty(t, bid.Bidder)
	assert.NotEqual(t, bid.NFTAddress, bid.Bidder)

	select {
	case msg := <-feed:
		var frame struct {
			EventType string           `json:"event_type"`
			Data      domain.PlacedBid `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg.Data, &frame))
		assert.Equal(t, domain.TopicBidPlaced, frame.EventType)
		assert.Equal(t, "Foo", frame.Data.NFTName)
		assert.Equal(t, bid.ID, frame.Data.ID)
	case <-time.After(time.Second):
		t.Fatal("no feed frame republished")
	}
}

func TestPersister_DuplicateDeliveryProducesDuplicateRows(t *testing.T) {
	f := newBidFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.run(t, ctx)

	envelope := bidEnvelope(t, testBidPayload())
	f.broker.Publish(domain.TopicBidPlaced, envelope)
	f.broker.Publish(domain.TopicBidPlaced, envelope)

	require.Eventually(t, func() bool {
		return len(f.store.All()) == 2
	}, time.Second, 5*time.Millisecond)

	rows := f.store.All()
	assert.NotEqual(t, rows[0].ID, rows[1].ID, "each delivery gets its own id")
	assert.Equal(t, rows[0].NFTAddress, rows[1].NFTAddress)
}

func TestPersister_MalformedEnvelopeSkipped(t *testing.T) {
	f := newBidFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.run(t, ctx)

	f.broker.Publish(domain.TopicBidPlaced, []byte("{not json"))
	f.broker.Publish(domain.TopicBidPlaced, bidEnvelope(t, testBidPayload()))

	require.Eventually(t, func() bool {
		return len(f.store.All()) == 1
	}, time.Second, 5*time.Millisecond)

	skipped := f.metrics.EventsSkipped.WithLabelValues(domain.TopicBidPlaced, observability.SkipMalformedEnvelope)
	assert.Equal(t, 1.0, testutil.ToFloat64(skipped))
}

func TestPersister_NoEventDataSkipped(t *testing.T) {
	f := newBidFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.run(t, ctx)

	raw, err := json.Marshal(domain.TransactionEvent{
		Signature: "sig",
		Logs:      []string{"Program log: Instruction: Bid"},
	})
	require.NoError(t, err)
	f.broker.Publish(domain.TopicBidPlaced, raw)

	skipped := f.metrics.EventsSkipped.WithLabelValues(domain.TopicBidPlaced, observability.SkipNoEventData)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(skipped) == 1.0
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, f.store.All())
}

func TestPersister_OutOfRangeTimestampSkipped(t *testing.T) {
	f := newBidFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.run(t, ctx)

	p := testBidPayload()
	p.Timestamp = 253402300800 // past year 9999
	f.broker.Publish(domain.TopicBidPlaced, bidEnvelope(t, p))

	skipped := f.metrics.EventsSkipped.WithLabelValues(domain.TopicBidPlaced, observability.SkipBadRecord)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(skipped) == 1.0
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, f.store.All())
}

func TestPersister_TruncatedPayloadSkipped(t *testing.T) {
	f := newBidFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.run(t, ctx)

	line := programDataPrefix + base64.StdEncoding.EncodeToString(append(bidDiscriminator, 1, 2))
	raw, err := json.Marshal(domain.TransactionEvent{
		Signature: "sig",
		Logs:      []string{line},
	})
	require.NoError(t, err)
	f.broker.Publish(domain.TopicBidPlaced, raw)

	skipped := f.metrics.EventsSkipped.WithLabelValues(domain.TopicBidPlaced, observability.SkipBadLayout)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(skipped) == 1.0
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, f.store.All())
}

func TestPersister_TrailingBytesSkipped(t *testing.T) {
	f := newBidFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.run(t, ctx)

	payload, err := borsh.Serialize(testBidPayload())
	require.NoError(t, err)
	payload = append(payload, 0xDE, 0xAD, 0xBE, 0xEF)

	line := programDataPrefix + base64.StdEncoding.EncodeToString(append(bidDiscriminator, payload...))
	raw, err := json.Marshal(domain.TransactionEvent{
		Signature: "sig",
		Logs:      []string{line},
	})
	require.NoError(t, err)
	f.broker.Publish(domain.TopicBidPlaced, raw)

	skipped := f.metrics.EventsSkipped.WithLabelValues(domain.TopicBidPlaced, observability.SkipBadLayout)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(skipped) == 1.0
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, f.store.All())
}

func TestBidHandler_DecodeRejectsTrailingBytes(t *testing.T) {
	payload, err := borsh.Serialize(testBidPayload())
	require.NoError(t, err)

	logger := log.New(io.Discard, "", 0)
	h := NewBidHandler(memory.NewBidStore(), logger)

	_, err = h.Decode(append(payload, 0))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errBadRecord)

	_, err = h.Decode(payload)
	assert.NoError(t, err)
}

func TestLibraryHandler_Decode(t *testing.T) {
	p := domain.InitLibraryPayload{Name: "Gallery", Timestamp: 1700000000}
	p.LibraryAddress[0] = 9
	payload, err := borsh.Serialize(p)
	require.NoError(t, err)

	h := NewLibraryHandler(memory.NewLibraryStore())
	rec, err := h.Decode(payload)
	require.NoError(t, err)

	lib := rec.(*domain.Library)
	assert.Equal(t, "Gallery", lib.Name)
	assert.NotEmpty(t, lib.LibraryAddress)
}

func TestNFTHandler_Decode(t *testing.T) {
	p := domain.MintNFTPayload{
		Name:       "Piece",
		Timestamp:  1700000000,
		NFTPrice:   1000,
		NFTBidStep: 50,
	}
	payload, err := borsh.Serialize(p)
	require.NoError(t, err)

	h := NewNFTHandler(memory.NewNFTStore())
	rec, err := h.Decode(payload)
	require.NoError(t, err)

	nft := rec.(*domain.NFT)
	assert.Equal(t, "Piece", nft.Name)
	assert.Equal(t, uint64(1000), nft.NFTPrice)
	assert.Equal(t, uint64(50), nft.NFTBidStep)
}

func TestTransferHandler_Decode(t *testing.T) {
	p := domain.TransferNFTPayload{NFTName: "Piece", Timestamp: 1700000000}
	p.Recipient[0] = 1
	p.Owner[0] = 2
	payload, err := borsh.Serialize(p)
	require.NoError(t, err)

	h := NewTransferHandler(memory.NewWinnerStore())
	rec, err := h.Decode(payload)
	require.NoError(t, err)

	w := rec.(*domain.Winner)
	assert.Equal(t, "Piece", w.NFTName)
	assert.NotEqual(t, w.Recipient, w.Owner)
}
