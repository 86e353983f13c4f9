package storage

import (
	"context"

	"nft-auction-feed/internal/domain"
)

// LibraryStore provides access to libraries storage.
type LibraryStore interface {
	// Insert adds a new library record. Records are append-only.
	Insert(ctx context.Context, l *domain.Library) error

	// GetByAddress retrieves all libraries with the given library address.
	GetByAddress(ctx context.Context, address string) ([]*domain.Library, error)
}

// NFTStore provides access to nfts storage.
type NFTStore interface {
	// Insert adds a new NFT record. Records are append-only.
	Insert(ctx context.Context, n *domain.NFT) error

	// GetByLibraryAddress retrieves all NFTs minted into a library.
	GetByLibraryAddress(ctx context.Context, address string) ([]*domain.NFT, error)
}

// BidStore provides access to placed_bids storage.
type BidStore interface {
	// Insert adds a new bid record. Duplicate deliveries produce duplicate
	// rows; the pipeline does not deduplicate on natural keys.
	Insert(ctx context.Context, b *domain.PlacedBid) error

	// GetByNFTAddress retrieves all bids placed on an NFT.
	GetByNFTAddress(ctx context.Context, address string) ([]*domain.PlacedBid, error)

	// GetByBidder retrieves all bids placed by a bidder.
	GetByBidder(ctx context.Context, bidder string) ([]*domain.PlacedBid, error)
}

// WinnerStore provides access to winners storage.
type WinnerStore interface {
	// Insert adds a new winner record. Records are append-only.
	Insert(ctx context.Context, w *domain.Winner) error

	// GetByNFTName retrieves all settlements for an NFT name.
	GetByNFTName(ctx context.Context, name string) ([]*domain.Winner, error)
}

// EventArchive provides access to the analytical archive of feed events.
type EventArchive interface {
	// InsertBatch appends a batch of feed events. Not atomic across batches.
	InsertBatch(ctx context.Context, events []*domain.ArchivedEvent) error
}
