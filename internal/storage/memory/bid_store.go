package memory

import (
	"context"
	"sync"

	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/storage"
)

// BidStore implements storage.BidStore in memory.
type BidStore struct {
	mu   sync.RWMutex
	bids []*domain.PlacedBid
}

// NewBidStore creates an empty BidStore.
func NewBidStore() *BidStore {
	return &BidStore{}
}

// Compile-time interface check.
var _ storage.BidStore = (*BidStore)(nil)

// Insert adds a new bid record. Duplicates on natural keys are allowed,
// matching the Postgres implementation.
func (s *BidStore) Insert(_ context.Context, b *domain.PlacedBid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *b
	s.bids = append(s.bids, &copied)
	return nil
}

// GetByNFTAddress retrieves all bids placed on an NFT.
func (s *BidStore) GetByNFTAddress(_ context.Context, address string) ([]*domain.PlacedBid, error) {
	return s.filter(func(b *domain.PlacedBid) bool { return b.NFTAddress == address }), nil
}

// GetByBidder retrieves all bids placed by a bidder.
func (s *BidStore) GetByBidder(_ context.Context, bidder string) ([]*domain.PlacedBid, error) {
	return s.filter(func(b *domain.PlacedBid) bool { return b.Bidder == bidder }), nil
}

// All returns every stored bid. Test helper.
func (s *BidStore) All() []*domain.PlacedBid {
	return s.filter(func(*domain.PlacedBid) bool { return true })
}

func (s *BidStore) filter(keep func(*domain.PlacedBid) bool) []*domain.PlacedBid {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PlacedBid
	for _, b := range s.bids {
		if keep(b) {
			copied := *b
			result = append(result, &copied)
		}
	}
	return result
}
