package interfaces

import (
	"context"

	domaintypes "lifestuff/internal/domain/types"
)

// PacketStore is the network key-value store addressed by content-derived
// names. Implementations must be safe for concurrent use.
//
// Put creates the packet if absent and overwrites it only when the existing
// packet has the same owner key; otherwise it fails with ErrConflict.
type PacketStore interface {
	Put(ctx context.Context, name domaintypes.Identifier, packet domaintypes.SignedData) error
	Get(ctx context.Context, name domaintypes.Identifier) (domaintypes.SignedData, error)
	Delete(ctx context.Context, name domaintypes.Identifier, proof domaintypes.OwnershipProof) error
	KeyUnique(ctx context.Context, name domaintypes.Identifier) (bool, error)
}
