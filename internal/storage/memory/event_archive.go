package memory

import (
	"context"
	"sync"

	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/storage"
)

// EventArchive implements storage.EventArchive in memory.
type EventArchive struct {
	mu     sync.RWMutex
	events []*domain.ArchivedEvent
}

// NewEventArchive creates an empty EventArchive.
func NewEventArchive() *EventArchive {
	return &EventArchive{}
}

// Compile-time interface check.
var _ storage.EventArchive = (*EventArchive)(nil)

// InsertBatch appends a batch of feed events.
func (a *EventArchive) InsertBatch(_ context.Context, events []*domain.ArchivedEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, e := range events {
		copied := *e
		a.events = append(a.events, &copied)
	}
	return nil
}

// All returns every archived event. Test helper.
func (a *EventArchive) All() []*domain.ArchivedEvent {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]*domain.ArchivedEvent, 0, len(a.events))
	for _, e := range a.events {
		copied := *e
		result = append(result, &copied)
	}
	return result
}
