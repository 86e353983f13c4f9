package persister

import (
	"context"
	"fmt"

	"github.com/near/borsh-go"

	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/storage"
)

// NFTHandler persists mint_nft events.
type NFTHandler struct {
	store storage.NFTStore
}

// NewNFTHandler creates the mint_nft handler.
func NewNFTHandler(store storage.NFTStore) *NFTHandler {
	return &NFTHandler{store: store}
}

var _ Handler = (*NFTHandler)(nil)

func (h *NFTHandler) Topic() string     { return domain.TopicMintNFT }
func (h *NFTHandler) EventType() string { return domain.TopicMintNFT }

// Decode deserializes the mint_nft payload into an NFT record.
func (h *NFTHandler) Decode(data []byte) (any, error) {
	var p domain.MintNFTPayload
	if err := borsh.Deserialize(&p, data); err != nil {
		return nil, fmt.Errorf("deserialize mint_nft: %w", err)
	}
	if err := checkConsumed(p, data); err != nil {
		return nil, fmt.Errorf("deserialize mint_nft: %w", err)
	}
	rec, err := domain.NewNFT(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRecord, err)
	}
	return rec, nil
}

// Persist writes the NFT record.
func (h *NFTHandler) Persist(ctx context.Context, record any) error {
	return h.store.Insert(ctx, record.(*domain.NFT))
}
