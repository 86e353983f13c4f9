package postgres

import (
	"context"
	"fmt"

	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/storage"
)

// BidStore implements storage.BidStore using PostgreSQL.
type BidStore struct {
	pool *Pool
}

// NewBidStore creates a new BidStore.
func NewBidStore(pool *Pool) *BidStore {
	return &BidStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BidStore = (*BidStore)(nil)

// Insert adds a new bid record. There is no uniqueness constraint on natural
// keys: redelivered envelopes produce duplicate rows by contract.
func (s *BidStore) Insert(ctx context.Context, b *domain.PlacedBid) error {
	query := `
		INSERT INTO placed_bids (id, timestamp, nft_name, nft_address, bidder, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		b.ID,
		b.Timestamp,
		b.NFTName,
		b.NFTAddress,
		b.Bidder,
		int64(b.Amount),
	)
	if err != nil {
		return fmt.Errorf("insert placed bid: %w", err)
	}
	return nil
}

// GetByNFTAddress retrieves all bids placed on an NFT.
func (s *BidStore) GetByNFTAddress(ctx context.Context, address string) ([]*domain.PlacedBid, error) {
	return s.getByColumn(ctx, "nft_address", address)
}

// GetByBidder retrieves all bids placed by a bidder.
func (s *BidStore) GetByBidder(ctx context.Context, bidder string) ([]*domain.PlacedBid, error) {
	return s.getByColumn(ctx, "bidder", bidder)
}

func (s *BidStore) getByColumn(ctx context.Context, column, value string) ([]*domain.PlacedBid, error) {
	query := fmt.Sprintf(`
		SELECT id, timestamp, nft_name, nft_address, bidder, amount
		FROM placed_bids
		WHERE %s = $1
	`, column)

	rows, err := s.pool.Query(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("get placed bids by %s: %w", column, err)
	}
	defer rows.Close()

	var bids []*domain.PlacedBid
	for rows.Next() {
		var (
			b      domain.PlacedBid
			amount int64
		)
		if err := rows.Scan(&b.ID, &b.Timestamp, &b.NFTName, &b.NFTAddress, &b.Bidder, &amount); err != nil {
			return nil, fmt.Errorf("scan placed bid: %w", err)
		}
		b.Amount = uint64(amount)
		bids = append(bids, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate placed bids: %w", err)
	}

	return bids, nil
}
