package clickhouse

import (
	"context"
	"fmt"

	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/storage"
)

// EventArchiveStore implements storage.EventArchive using ClickHouse.
// It keeps every frame of the shared feed queryable for analytics.
type EventArchiveStore struct {
	conn *Conn
}

// NewEventArchiveStore creates a new EventArchiveStore.
func NewEventArchiveStore(conn *Conn) *EventArchiveStore {
	return &EventArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EventArchive = (*EventArchiveStore)(nil)

// InsertBatch appends a batch of feed events.
func (s *EventArchiveStore) InsertBatch(ctx context.Context, events []*domain.ArchivedEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO auction_events (event_type, payload, received_at)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		if err := batch.Append(e.EventType, string(e.Payload), e.ReceivedAt); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}
