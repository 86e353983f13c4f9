// Package archive copies the shared feed into the analytical event store.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"nft-auction-feed/internal/broker"
	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/observability"
	"nft-auction-feed/internal/storage"
)

// Config tunes archiver batching.
type Config struct {
	// BatchSize flushes when this many events are pending.
	BatchSize int
	// FlushInterval flushes pending events even when the batch is not full.
	FlushInterval time.Duration
}

// DefaultConfig returns batching defaults suitable for the feed's volume.
func DefaultConfig() Config {
	return Config{
		BatchSize:     100,
		FlushInterval: 5 * time.Second,
	}
}

// Archiver consumes the feed topic and writes batches to the event archive.
// A failed batch write is logged and dropped; the archive is best-effort and
// never blocks the feed.
type Archiver struct {
	broker  broker.Broker
	store   storage.EventArchive
	config  Config
	logger  *log.Logger
	metrics *observability.Metrics
}

// New creates an archiver over the given archive store.
func New(b broker.Broker, store storage.EventArchive, config Config, logger *log.Logger, metrics *observability.Metrics) *Archiver {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = DefaultConfig().FlushInterval
	}
	return &Archiver{
		broker:  b,
		store:   store,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

// Run consumes the feed until ctx is cancelled, flushing any pending batch
// on the way out.
func (a *Archiver) Run(ctx context.Context) error {
	msgs, release, err := a.broker.Subscribe(ctx, domain.TopicAllEvents)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", domain.TopicAllEvents, err)
	}
	defer release()

	a.logger.Printf("[archive] consuming topic=%s batch=%d", domain.TopicAllEvents, a.config.BatchSize)

	ticker := time.NewTicker(a.config.FlushInterval)
	defer ticker.Stop()

	batch := make([]*domain.ArchivedEvent, 0, a.config.BatchSize)

	for {
		select {
		case <-ctx.Done():
			a.flush(batch)
			return ctx.Err()
		case <-ticker.C:
			a.flush(batch)
			batch = batch[:0]
		case msg, ok := <-msgs:
			if !ok {
				a.flush(batch)
				return fmt.Errorf("subscription %s closed", domain.TopicAllEvents)
			}
			batch = append(batch, toArchivedEvent(msg.Data))
			if len(batch) >= a.config.BatchSize {
				a.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

// flush writes one batch. Uses a fresh context so shutdown still flushes.
func (a *Archiver) flush(batch []*domain.ArchivedEvent) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.store.InsertBatch(ctx, batch); err != nil {
		a.metrics.ArchiveErrors.Inc()
		a.logger.Printf("[archive] insert batch of %d: %v", len(batch), err)
		return
	}
	a.metrics.EventsArchived.Add(float64(len(batch)))
}

// toArchivedEvent labels a raw feed frame with its event type. Frames that
// do not parse keep an empty type; the payload is archived either way.
func toArchivedEvent(raw []byte) *domain.ArchivedEvent {
	var frame struct {
		EventType string `json:"event_type"`
	}
	_ = json.Unmarshal(raw, &frame)

	payload := make([]byte, len(raw))
	copy(payload, raw)

	return &domain.ArchivedEvent{
		EventType:  frame.EventType,
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	}
}
