package share

import (
	"fmt"

	"lifestuff/internal/crypto"
	"lifestuff/internal/domain"
	"lifestuff/internal/services/message"
)

// Keys is one generation of a share's key material. SigningPrivate is zero
// for members without admin rights.
type Keys struct {
	SigningPrivate    domain.Ed25519Private
	SigningPublic     domain.Ed25519Public
	EncryptionPrivate domain.X25519Private
	EncryptionPublic  domain.X25519Public
}

// NewKeys generates a fresh share key pair.
func NewKeys() (Keys, error) {
	sPriv, sPub, err := crypto.GenerateEd25519()
	if err != nil {
		return Keys{}, err
	}
	ePriv, ePub, err := crypto.GenerateX25519()
	if err != nil {
		return Keys{}, err
	}
	return Keys{SigningPrivate: sPriv, SigningPublic: sPub, EncryptionPrivate: ePriv, EncryptionPublic: ePub}, nil
}

// Name is where the share's public key packet lives.
func (k Keys) Name() domain.Identifier {
	return crypto.Hash(k.SigningPublic.Slice(), k.EncryptionPublic.Slice())
}

// Admin reports whether k carries the signing private key.
func (k Keys) Admin() bool { return k.SigningPrivate != domain.Ed25519Private{} }

func (k Keys) publicBytes() []byte {
	return append(append([]byte{}, k.SigningPublic[:]...), k.EncryptionPublic[:]...)
}

func (k Keys) packet() domain.SignedData {
	return crypto.SignPacket(k.SigningPrivate, k.publicBytes())
}

func validationMessage(shareID, directoryID string) []byte {
	return crypto.HashStrings(shareID, directoryID).Slice()
}

// message builds the key-carrying message for a recipient.
func (k Keys) message(tag message.Tag, rec Record, admin bool) message.Share {
	m := message.Share{
		Tag:             tag,
		ShareID:         rec.ShareID,
		DirectoryID:     rec.DirectoryID,
		Identity:        k.Name().String(),
		ValidationToken: crypto.B64(crypto.SignEd25519(k.SigningPrivate, validationMessage(rec.ShareID, rec.DirectoryID))),
		PublicKey:       crypto.B64(k.publicBytes()),
		DecryptKey:      crypto.B64(k.EncryptionPrivate.Slice()),
	}
	if tag == message.InsertShare {
		m.Filename = rec.Name
	}
	if admin {
		m.PrivateKey = crypto.B64(k.SigningPrivate.Slice())
	}
	return m
}

// keysFromMessage decodes and checks the key material in m.
func keysFromMessage(m message.Share) (Keys, error) {
	var k Keys
	pub, err := crypto.FromB64(m.PublicKey)
	if err != nil || len(pub) != len(k.SigningPublic)+len(k.EncryptionPublic) {
		return Keys{}, fmt.Errorf("share public key: %w", domain.ErrMalformedPacket)
	}
	copy(k.SigningPublic[:], pub)
	copy(k.EncryptionPublic[:], pub[len(k.SigningPublic):])

	dec, err := crypto.FromB64(m.DecryptKey)
	if err != nil || len(dec) != len(k.EncryptionPrivate) {
		return Keys{}, fmt.Errorf("share decrypt key: %w", domain.ErrMalformedPacket)
	}
	copy(k.EncryptionPrivate[:], dec)

	if m.PrivateKey != "" {
		priv, err := crypto.FromB64(m.PrivateKey)
		if err != nil || len(priv) != len(k.SigningPrivate) {
			return Keys{}, fmt.Errorf("share private key: %w", domain.ErrMalformedPacket)
		}
		copy(k.SigningPrivate[:], priv)
		if k.SigningPrivate.Public() != k.SigningPublic {
			return Keys{}, fmt.Errorf("share private key mismatch: %w", domain.ErrAuthentication)
		}
	}

	token, err := crypto.FromB64(m.ValidationToken)
	if err != nil || !crypto.VerifyEd25519(k.SigningPublic, validationMessage(m.ShareID, m.DirectoryID), token) {
		return Keys{}, fmt.Errorf("share validation token: %w", domain.ErrAuthentication)
	}
	if m.Identity != k.Name().String() {
		return Keys{}, fmt.Errorf("share identity: %w", domain.ErrAuthentication)
	}
	return k, nil
}
