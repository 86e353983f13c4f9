package persister

import (
	"context"
	"fmt"

	"github.com/near/borsh-go"

	"nft-auction-feed/internal/domain"
	"nft-auction-feed/internal/storage"
)

// LibraryHandler persists init_library events.
type LibraryHandler struct {
	store storage.LibraryStore
}

// NewLibraryHandler creates the init_library handler.
func NewLibraryHandler(store storage.LibraryStore) *LibraryHandler {
	return &LibraryHandler{store: store}
}

var _ Handler = (*LibraryHandler)(nil)

func (h *LibraryHandler) Topic() string     { return domain.TopicInitLibrary }
func (h *LibraryHandler) EventType() string { return domain.TopicInitLibrary }

// Decode deserializes the init_library payload into a library record.
func (h *LibraryHandler) Decode(data []byte) (any, error) {
	var p domain.InitLibraryPayload
	if err := borsh.Deserialize(&p, data); err != nil {
		return nil, fmt.Errorf("deserialize init_library: %w", err)
	}
	if err := checkConsumed(p, data); err != nil {
		return nil, fmt.Errorf("deserialize init_library: %w", err)
	}
	rec, err := domain.NewLibrary(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRecord, err)
	}
	return rec, nil
}

// Persist writes the library record.
func (h *LibraryHandler) Persist(ctx context.Context, record any) error {
	return h.store.Insert(ctx, record.(*domain.Library))
}
