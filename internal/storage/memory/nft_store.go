package memory

import (
	"context"
	"sync"

	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/storage"
)

// NFTStore implements storage.NFTStore in memory.
type NFTStore struct {
	mu   sync.RWMutex
	nfts []*domain.NFT
}

// NewNFTStore creates an empty NFTStore.
func NewNFTStore() *NFTStore {
	return &NFTStore{}
}

// Compile-time interface check.
var _ storage.NFTStore = (*NFTStore)(nil)

// Insert adds a new NFT record.
func (s *NFTStore) Insert(_ context.Context, n *domain.NFT) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *n
	s.nfts = append(s.nfts, &copied)
	return nil
}

// GetByLibraryAddress retrieves all NFTs minted into a library.
func (s *NFTStore) GetByLibraryAddress(_ context.Context, address string) ([]*domain.NFT, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.NFT
	for _, n := range s.nfts {
		if n.LibraryAddress == address {
			copied := *n
			result = append(result, &copied)
		}
	}
	return result, nil
}
