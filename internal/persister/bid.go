package persister

import (
	"context"
	"fmt"
	"log"

	"github.com/near/borsh-go"

	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/storage"
)

// BidHandler persists bid_placed events.
type BidHandler struct {
	store  storage.BidStore
	logger *log.Logger
}

// NewBidHandler creates the bid_placed handler.
func NewBidHandler(store storage.BidStore, logger *log.Logger) *BidHandler {
	return &BidHandler{store: store, logger: logger}
}

var _ Handler = (*BidHandler)(nil)

func (h *BidHandler) Topic() string     { return domain.TopicBidPlaced }
func (h *BidHandler) EventType() string { return domain.TopicBidPlaced }

// Decode deserializes the bid_placed payload into a bid record. Bidder keys
// off the ed25519 curve are stored anyway but flagged in the log, since they
// cannot belong to a wallet.
func (h *BidHandler) Decode(data []byte) (any, error) {
	var p domain.PlacedBidPayload
	if err := borsh.Deserialize(&p, data); err != nil {
		return nil, fmt.Errorf("deserialize bid_placed: %w", err)
	}
	if err := checkConsumed(p, data); err != nil {
		return nil, fmt.Errorf("deserialize bid_placed: %w", err)
	}
	rec, err := domain.NewPlacedBid(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRecord, err)
	}
	if !domain.IsOnCurve(p.Bidder) {
		h.logger.Printf("[persister] bid_placed: bidder %s is off-curve", rec.Bidder)
	}
	return rec, nil
}

// Persist writes the bid record.
func (h *BidHandler) Persist(ctx context.Context, record any) error {
	return h.store.Insert(ctx, record.(*domain.PlacedBid))
}
