package memory

import (
	"context"
	"sync"

	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/storage"
)

// WinnerStore implements storage.WinnerStore in memory.
type WinnerStore struct {
	mu      sync.RWMutex
	winners []*domain.Winner
}

// NewWinnerStore creates an empty WinnerStore.
func NewWinnerStore() *WinnerStore {
	return &WinnerStore{}
}

// Compile-time interface check.
var _ storage.WinnerStore = (*WinnerStore)(nil)

// Insert adds a new winner record.
func (s *WinnerStore) Insert(_ context.Context, w *domain.Winner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *w
	s.winners = append(s.winners, &copied)
	return nil
}

// GetByNFTName retrieves all settlements for an NFT name.
func (s *WinnerStore) GetByNFTName(_ context.Context, name string) ([]*domain.Winner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Winner
	for _, w := range s.winners {
		if w.NFTName == name {
			copied := *w
			result = append(result, &copied)
		}
	}
	return result, nil
}
