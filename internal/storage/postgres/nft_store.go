package postgres

import (
	"context"
	"fmt"

	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/storage"
)

// NFTStore implements storage.NFTStore using PostgreSQL.
type NFTStore struct {
	pool *Pool
}

// NewNFTStore creates a new NFTStore.
func NewNFTStore(pool *Pool) *NFTStore {
	return &NFTStore{pool: pool}
}

// Compile-time interface check.
var _ storage.NFTStore = (*NFTStore)(nil)

// Insert adds a new NFT record. Unsigned amounts are stored as BIGINT and
// must fit the signed range.
func (s *NFTStore) Insert(ctx context.Context, n *domain.NFT) error {
	query := `
		INSERT INTO nfts (id, timestamp, nft_price, nft_bid_step, name, library_address, nft_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		n.ID,
		n.Timestamp,
		int64(n.NFTPrice),
		int64(n.NFTBidStep),
		n.Name,
		n.LibraryAddress,
		n.NFTAddress,
	)
	if err != nil {
		return fmt.Errorf("insert nft: %w", err)
	}
	return nil
}

// GetByLibraryAddress retrieves all NFTs minted into a library.
func (s *NFTStore) GetByLibraryAddress(ctx context.Context, address string) ([]*domain.NFT, error) {
	query := `
		SELECT id, timestamp, nft_price, nft_bid_step, name, library_address, nft_address
		FROM nfts
		WHERE library_address = $1
	`

	rows, err := s.pool.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("get nfts by library address: %w", err)
	}
	defer rows.Close()

	var nfts []*domain.NFT
	for rows.Next() {
		var (
			n       domain.NFT
			price   int64
			bidStep int64
		)
		if err := rows.Scan(&n.ID, &n.Timestamp, &price, &bidStep, &n.Name, &n.LibraryAddress, &n.NFTAddress); err != nil {
			return nil, fmt.Errorf("scan nft: %w", err)
		}
		n.NFTPrice = uint64(price)
		n.NFTBidStep = uint64(bidStep)
		nfts = append(nfts, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nfts: %w", err)
	}

	return nfts, nil
}
