package postgres

import (
	"context"
	"fmt"

	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/storage"
)

// LibraryStore implements storage.LibraryStore using PostgreSQL.
type LibraryStore struct {
	pool *Pool
}

// NewLibraryStore creates a new LibraryStore.
func NewLibraryStore(pool *Pool) *LibraryStore {
	return &LibraryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LibraryStore = (*LibraryStore)(nil)

// Insert adds a new library record.
func (s *LibraryStore) Insert(ctx context.Context, l *domain.Library) error {
	query := `
		INSERT INTO libraries (id, timestamp, name, library_address)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query, l.ID, l.Timestamp, l.Name, l.LibraryAddress)
	if err != nil {
		return fmt.Errorf("insert library: %w", err)
	}
	return nil
}

// GetByAddress retrieves all libraries with the given address.
func (s *LibraryStore) GetByAddress(ctx context.Context, address string) ([]*domain.Library, error) {
	query := `
		SELECT id, timestamp, name, library_address
		FROM libraries
		WHERE library_address = $1
	`

	rows, err := s.pool.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("get libraries by address: %w", err)
	}
	defer rows.Close()

	var libraries []*domain.Library
	for rows.Next() {
		var l domain.Library
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Name, &l.LibraryAddress); err != nil {
			return nil, fmt.Errorf("scan library: %w", err)
		}
		libraries = append(libraries, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate libraries: %w", err)
	}

	return libraries, nil
}
