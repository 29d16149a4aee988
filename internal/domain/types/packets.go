package types

// SignedData is the unit stored under a network name. Signature is an Ed25519
// signature of Data by PublicKey, which also identifies the packet's owner.
type SignedData struct {
	Data      []byte        `json:"data"`
	Signature []byte        `json:"signature"`
	PublicKey Ed25519Public `json:"public_key"`
}

// OwnershipProof authorises a delete: a signature of the packet name by the
// key that owns the stored packet.
type OwnershipProof struct {
	PublicKey Ed25519Public `json:"public_key"`
	Signature []byte        `json:"signature"`
}
