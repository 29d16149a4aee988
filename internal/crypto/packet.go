package crypto

import (
	"crypto/subtle"

	"lifestuff/internal/domain"
)

// SignPacket wraps data in a SignedData owned by priv.
func SignPacket(priv domain.Ed25519Private, data []byte) domain.SignedData {
	return domain.SignedData{
		Data:      data,
		Signature: SignEd25519(priv, data),
		PublicKey: priv.Public(),
	}
}

// VerifyPacket checks the packet's signature against its embedded owner key.
func VerifyPacket(p domain.SignedData) bool {
	return VerifyEd25519(p.PublicKey, p.Data, p.Signature)
}

// ProveOwnership signs name so the store will accept a delete from priv.
func ProveOwnership(priv domain.Ed25519Private, name domain.Identifier) domain.OwnershipProof {
	return domain.OwnershipProof{
		PublicKey: priv.Public(),
		Signature: SignEd25519(priv, name.Slice()),
	}
}

// VerifyOwnership reports whether proof was made by owner over name.
func VerifyOwnership(name domain.Identifier, owner domain.Ed25519Public, proof domain.OwnershipProof) bool {
	if subtle.ConstantTimeCompare(owner[:], proof.PublicKey[:]) != 1 {
		return false
	}
	return VerifyEd25519(owner, name.Slice(), proof.Signature)
}
