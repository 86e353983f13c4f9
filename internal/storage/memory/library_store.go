// Package memory provides in-memory store implementations for tests and
// --use-memory runs. All stores are safe for concurrent use.
package memory

import (
	"context"
	"sync"

	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/storage"
)

// LibraryStore implements storage.LibraryStore in memory.
type LibraryStore struct {
	mu        sync.RWMutex
	libraries []*domain.Library
}

// NewLibraryStore creates an empty LibraryStore.
func NewLibraryStore() *LibraryStore {
	return &LibraryStore{}
}

// Compile-time interface check.
var _ storage.LibraryStore = (*LibraryStore)(nil)

// Insert adds a new library record.
func (s *LibraryStore) Insert(_ context.Context, l *domain.Library) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *l
	s.libraries = append(s.libraries, &copied)
	return nil
}

// GetByAddress retrieves all libraries with the given address.
func (s *LibraryStore) GetByAddress(_ context.Context, address string) ([]*domain.Library, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Library
	for _, l := range s.libraries {
		if l.LibraryAddress == address {
			copied := *l
			result = append(result, &copied)
		}
	}
	return result, nil
}
