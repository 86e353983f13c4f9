package persister

import (
	"context"
	"fmt"

	"github.com/near/borsh-go"

	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/storage"
)

// TransferHandler persists transfer_nft settlement events.
type TransferHandler struct {
	store storage.WinnerStore
}

// NewTransferHandler creates the transfer_nft handler.
func NewTransferHandler(store storage.WinnerStore) *TransferHandler {
	return &TransferHandler{store: store}
}

var _ Handler = (*TransferHandler)(nil)

func (h *TransferHandler) Topic() string     { return domain.TopicTransferNFT }
func (h *TransferHandler) EventType() string { return domain.TopicTransferNFT }

// Decode deserializes the transfer_nft payload into a winner record.
func (h *TransferHandler) Decode(data []byte) (any, error) {
	var p domain.TransferNFTPayload
	if err := borsh.Deserialize(&p, data); err != nil {
		return nil, fmt.Errorf("deserialize transfer_nft: %w", err)
	}
	if err := checkConsumed(p, data); err != nil {
		return nil, fmt.Errorf("deserialize transfer_nft: %w", err)
	}
	rec, err := domain.NewWinner(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRecord, err)
	}
	return rec, nil
}

// Persist writes the winner record.
func (h *TransferHandler) Persist(ctx context.Context, record any) error {
	return h.store.Insert(ctx, record.(*domain.Winner))
}
