package postgres

import (
	"context"
	"fmt"

	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/storage"
)

// WinnerStore implements storage.WinnerStore using PostgreSQL.
type WinnerStore struct {
	pool *Pool
}

// NewWinnerStore creates a new WinnerStore.
func NewWinnerStore(pool *Pool) *WinnerStore {
	return &WinnerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WinnerStore = (*WinnerStore)(nil)

// Insert adds a new winner record.
func (s *WinnerStore) Insert(ctx context.Context, w *domain.Winner) error {
	query := `
		INSERT INTO winners (id, timestamp, nft_name, recipient, owner)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query, w.ID, w.Timestamp, w.NFTName, w.Recipient, w.Owner)
	if err != nil {
		return fmt.Errorf("insert winner: %w", err)
	}
	return nil
}

// GetByNFTName retrieves all settlements for an NFT name.
func (s *WinnerStore) GetByNFTName(ctx context.Context, name string) ([]*domain.Winner, error) {
	query := `
		SELECT id, timestamp, nft_name, recipient, owner
		FROM winners
		WHERE nft_name = $1
	`

	rows, err := s.pool.Query(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("get winners by nft name: %w", err)
	}
	defer rows.Close()

	var winners []*domain.Winner
	for rows.Next() {
		var w domain.Winner
		if err := rows.Scan(&w.ID, &w.Timestamp, &w.NFTName, &w.Recipient, &w.Owner); err != nil {
			return nil, fmt.Errorf("scan winner: %w", err)
		}
		winners = append(winners, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate winners: %w", err)
	}

	return winners, nil
}
