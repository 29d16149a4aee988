package passport

import (
	"fmt"

	"lifestuff/internal/crypto"
	"lifestuff/internal/domain"
	"lifestuff/internal/util/memzero"
)

// Role tags a key pair with what it identifies.
type Role int

const (
	AnMaid Role = iota
	Maid
	Pmid
	AnMid
	AnSmid
	AnTmid
)

// Roles lists every role in generation order: signers precede the keys they
// sign.
var Roles = []Role{AnMaid, Maid, Pmid, AnMid, AnSmid, AnTmid}

var roleNames = [...]string{
	AnMaid: "anmaid",
	Maid:   "maid",
	Pmid:   "pmid",
	AnMid:  "anmid",
	AnSmid: "ansmid",
	AnTmid: "antmid",
}

func (r Role) String() string {
	if r >= AnMaid && r <= AnTmid {
		return roleNames[r]
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Signer returns the role whose key validates r. Anonymous roles sign
// themselves.
func (r Role) Signer() Role {
	switch r {
	case Maid:
		return AnMaid
	case Pmid:
		return Maid
	default:
		return r
	}
}

// KeyPair is one role's keys.
type KeyPair struct {
	Role              Role
	SigningPrivate    domain.Ed25519Private
	SigningPublic     domain.Ed25519Public
	EncryptionPrivate domain.X25519Private
	EncryptionPublic  domain.X25519Public
	// Validation is the signer's signature over the two public halves.
	Validation []byte
}

// Name is where the pair's public packet lives on the network.
func (k KeyPair) Name() domain.Identifier {
	return crypto.Hash(k.SigningPublic.Slice(), k.EncryptionPublic.Slice())
}

// PublicPacket is the signed public-key packet (a fob) published at Name.
func (k KeyPair) PublicPacket() domain.SignedData {
	return crypto.SignPacket(k.SigningPrivate, publicBytes(k.SigningPublic, k.EncryptionPublic, k.Validation))
}

// Sign signs msg with the pair's signing key.
func (k KeyPair) Sign(msg []byte) []byte { return crypto.SignEd25519(k.SigningPrivate, msg) }

// Prove returns an ownership proof for name.
func (k KeyPair) Prove(name domain.Identifier) domain.OwnershipProof {
	return crypto.ProveOwnership(k.SigningPrivate, name)
}

func (k *KeyPair) wipe() {
	memzero.Zero(k.SigningPrivate[:])
	memzero.Zero(k.EncryptionPrivate[:])
}

// NewKeyPair generates a pair for role validated by signer. A nil signer
// means the pair signs itself.
func NewKeyPair(role Role, signer *KeyPair) (KeyPair, error) {
	edPriv, edPub, err := crypto.GenerateEd25519()
	if err != nil {
		return KeyPair{}, err
	}
	xPriv, xPub, err := crypto.GenerateX25519()
	if err != nil {
		return KeyPair{}, err
	}
	kp := KeyPair{
		Role:              role,
		SigningPrivate:    edPriv,
		SigningPublic:     edPub,
		EncryptionPrivate: xPriv,
		EncryptionPublic:  xPub,
	}
	signingKey := edPriv
	if signer != nil {
		signingKey = signer.SigningPrivate
	}
	kp.Validation = crypto.SignEd25519(signingKey, validationMessage(edPub, xPub))
	return kp, nil
}

// Validate checks k's validation signature against signer's public key.
func Validate(k KeyPair, signer domain.Ed25519Public) bool {
	return crypto.VerifyEd25519(signer, validationMessage(k.SigningPublic, k.EncryptionPublic), k.Validation)
}

func validationMessage(sign domain.Ed25519Public, enc domain.X25519Public) []byte {
	out := make([]byte, 0, len(sign)+len(enc))
	out = append(out, sign[:]...)
	return append(out, enc[:]...)
}

func publicBytes(sign domain.Ed25519Public, enc domain.X25519Public, validation []byte) []byte {
	return append(validationMessage(sign, enc), validation...)
}

// ParsePublicPacket recovers the public halves carried by a fob.
func ParsePublicPacket(p domain.SignedData) (domain.Ed25519Public, domain.X25519Public, []byte, error) {
	var (
		sign domain.Ed25519Public
		enc  domain.X25519Public
	)
	if len(p.Data) < len(sign)+len(enc) {
		return sign, enc, nil, fmt.Errorf("public key packet: %w", domain.ErrMalformedPacket)
	}
	copy(sign[:], p.Data)
	copy(enc[:], p.Data[len(sign):])
	return sign, enc, p.Data[len(sign)+len(enc):], nil
}
