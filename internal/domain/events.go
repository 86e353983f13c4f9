package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// Topic names on the broker. One per auction event type, plus the shared
// feed topic every persisted record is republished to.
const (
	TopicInitLibrary = "init_library"
	TopicMintNFT     = "mint_nft"
	TopicBidPlaced   = "bid_placed"
	TopicTransferNFT = "transfer_nft"
	TopicAllEvents   = "all_events"
)

// Timestamps outside this range cannot be stored as TIMESTAMPTZ.
// Bounds are year 1 and year 9999 in Unix seconds.
const (
	minUnixTime = -62135596800
	maxUnixTime = 253402300799
)

// eventTime converts an on-chain Unix timestamp to time.Time, rejecting
// values outside the representable range.
func eventTime(ts int64) (time.Time, error) {
	if ts < minUnixTime || ts > maxUnixTime {
		return time.Time{}, fmt.Errorf("timestamp %d out of range", ts)
	}
	return time.Unix(ts, 0).UTC(), nil
}

// newRecordID generates a time-ordered unique identifier.
func newRecordID() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("generate record id: %w", err)
	}
	return id, nil
}

// InitLibraryPayload is the Borsh layout emitted by the init_library
// instruction. Field order matches the on-chain event declaration.
type InitLibraryPayload struct {
	Name           string
	Timestamp      int64
	LibraryAddress [32]uint8
}

// Library is the persisted record of a created NFT library.
type Library struct {
	ID             uuid.UUID `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Name           string    `json:"name"`
	LibraryAddress string    `json:"library_address"`
}

// NewLibrary converts a decoded payload into a persistable record.
func NewLibrary(p InitLibraryPayload) (*Library, error) {
	ts, err := eventTime(p.Timestamp)
	if err != nil {
		return nil, err
	}
	id, err := newRecordID()
	if err != nil {
		return nil, err
	}
	return &Library{
		ID:             id,
		Timestamp:      ts,
		Name:           p.Name,
		LibraryAddress: base58.Encode(p.LibraryAddress[:]),
	}, nil
}

// MintNFTPayload is the Borsh layout emitted by the mint_nft instruction.
type MintNFTPayload struct {
	Name           string
	Timestamp      int64
	LibraryAddress [32]uint8
	NFTPrice       uint64
	NFTBidStep     uint64
	NFTAddress     [32]uint8
}

// NFT is the persisted record of a minted NFT.
type NFT struct {
	ID             uuid.UUID `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	NFTPrice       uint64    `json:"nft_price"`
	NFTBidStep     uint64    `json:"nft_bid_step"`
	Name           string    `json:"name"`
	LibraryAddress string    `json:"library_address"`
	NFTAddress     string    `json:"nft_address"`
}

// NewNFT converts a decoded payload into a persistable record.
func NewNFT(p MintNFTPayload) (*NFT, error) {
	ts, err := eventTime(p.Timestamp)
	if err != nil {
		return nil, err
	}
	id, err := newRecordID()
	if err != nil {
		return nil, err
	}
	return &NFT{
		ID:             id,
		Timestamp:      ts,
		NFTPrice:       p.NFTPrice,
		NFTBidStep:     p.NFTBidStep,
		Name:           p.Name,
		LibraryAddress: base58.Encode(p.LibraryAddress[:]),
		NFTAddress:     base58.Encode(p.NFTAddress[:]),
	}, nil
}

// PlacedBidPayload is the Borsh layout emitted by the bid_nft instruction.
type PlacedBidPayload struct {
	NFTName    string
	NFTAddress [32]uint8
	Bidder     [32]uint8
	Amount     uint64
	Timestamp  int64
}

// PlacedBid is the persisted record of a bid on an NFT auction.
type PlacedBid struct {
	ID         uuid.UUID `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	NFTName    string    `json:"nft_name"`
	NFTAddress string    `json:"nft_address"`
	Bidder     string    `json:"bidder"`
	Amount     uint64    `json:"amount"`
}

// NewPlacedBid converts a decoded payload into a persistable record.
func NewPlacedBid(p PlacedBidPayload) (*PlacedBid, error) {
	ts, err := eventTime(p.Timestamp)
	if err != nil {
		return nil, err
	}
	id, err := newRecordID()
	if err != nil {
		return nil, err
	}
	return &PlacedBid{
		ID:         id,
		Timestamp:  ts,
		NFTName:    p.NFTName,
		NFTAddress: base58.Encode(p.NFTAddress[:]),
		Bidder:     base58.Encode(p.Bidder[:]),
		Amount:     p.Amount,
	}, nil
}

// TransferNFTPayload is the Borsh layout emitted by the transfer_nft
// instruction, fired when an auction settles.
type TransferNFTPayload struct {
	NFTName   string
	Recipient [32]uint8
	Owner     [32]uint8
	Timestamp int64
}

// Winner is the persisted record of a settled auction transfer.
type Winner struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	NFTName   string    `json:"nft_name"`
	Recipient string    `json:"recipient"`
	Owner     string    `json:"owner"`
}

// NewWinner converts a decoded payload into a persistable record.
func NewWinner(p TransferNFTPayload) (*Winner, error) {
	ts, err := eventTime(p.Timestamp)
	if err != nil {
		return nil, err
	}
	id, err := newRecordID()
	if err != nil {
		return nil, err
	}
	return &Winner{
		ID:        id,
		Timestamp: ts,
		NFTName:   p.NFTName,
		Recipient: base58.Encode(p.Recipient[:]),
		Owner:     base58.Encode(p.Owner[:]),
	}, nil
}

// ArchivedEvent is one frame of the shared feed kept for analytics.
type ArchivedEvent struct {
	EventType  string
	Payload    []byte
	ReceivedAt time.Time
}
