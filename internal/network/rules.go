package network

import (
	"fmt"

	"lifestuff/internal/crypto"
	"lifestuff/internal/domain"
)

// CheckPut applies the store's write rules: the packet must be signed by its
// owner key, and an existing packet may only be replaced by the same owner.
func CheckPut(existing *domain.SignedData, p domain.SignedData) error {
	if !crypto.VerifyPacket(p) {
		return domain.ErrInvalidSignature
	}
	if existing != nil && existing.PublicKey != p.PublicKey {
		return domain.ErrConflict
	}
	return nil
}

// CheckDelete applies the store's delete rules.
func CheckDelete(existing *domain.SignedData, name domain.Identifier, proof domain.OwnershipProof) error {
	if existing == nil {
		return fmt.Errorf("%s: %w", name.Short(), domain.ErrNotFound)
	}
	if !crypto.VerifyOwnership(name, existing.PublicKey, proof) {
		return domain.ErrNotOwner
	}
	return nil
}
