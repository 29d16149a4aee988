package derive

import (
	"fmt"

	"lifestuff/internal/crypto"
	"lifestuff/internal/domain"
)

const (
	infoTmidName = "lifestuff/tmid-name"
	infoSession  = "lifestuff/session"
)

// Deriver seals and opens session snapshots with a fixed KDF cost.
type Deriver struct {
	KDF crypto.KDFParams
}

// New returns a Deriver using params.
func New(params crypto.KDFParams) Deriver { return Deriver{KDF: params} }

// EncryptTmidName seals a Tmid name under a key derived from keyword and pin,
// for storage inside a Mid or Smid payload.
func EncryptTmidName(keyword, pin string, name domain.Identifier) ([]byte, error) {
	key, err := tmidNameKey(keyword, pin)
	if err != nil {
		return nil, err
	}
	return crypto.SecretSeal(key, name.Slice())
}

// DecryptTmidName reverses EncryptTmidName.
func DecryptTmidName(keyword, pin string, sealed []byte) (domain.Identifier, error) {
	var name domain.Identifier
	key, err := tmidNameKey(keyword, pin)
	if err != nil {
		return name, err
	}
	raw, err := crypto.SecretOpen(key, sealed)
	if err != nil {
		return name, err
	}
	if len(raw) != domain.IdentifierSize {
		return name, fmt.Errorf("tmid name is %d bytes: %w", len(raw), domain.ErrMalformedPacket)
	}
	copy(name[:], raw)
	return name, nil
}

func tmidNameKey(keyword, pin string) (*[crypto.KeyBytes]byte, error) {
	seed := crypto.HashStrings(keyword, pin)
	b, err := crypto.Expand(seed.Slice(), []byte(infoTmidName), crypto.KeyBytes)
	if err != nil {
		return nil, err
	}
	var key [crypto.KeyBytes]byte
	copy(key[:], b)
	return &key, nil
}

// EncryptSession seals a serialised session snapshot. The key is hardened from
// password and pin; the Mid name is bound as additional data.
func (d Deriver) EncryptSession(keyword, pin, password string, plaintext []byte) ([]byte, error) {
	key, err := d.sessionKey(keyword, pin, password)
	if err != nil {
		return nil, err
	}
	mid := MidName(keyword, pin)
	return crypto.Seal(key, plaintext, mid.Slice())
}

// DecryptSession reverses EncryptSession. A wrong factor yields
// domain.ErrAuthentication; unparseable input yields domain.ErrMalformedPacket.
func (d Deriver) DecryptSession(keyword, pin, password string, sealed []byte) ([]byte, error) {
	key, err := d.sessionKey(keyword, pin, password)
	if err != nil {
		return nil, err
	}
	mid := MidName(keyword, pin)
	return crypto.Open(key, sealed, mid.Slice())
}

func (d Deriver) sessionKey(keyword, pin, password string) ([]byte, error) {
	secret := crypto.HashStrings(password, pin)
	salt := crypto.HashStrings(pin, keyword)
	seed := crypto.DeriveKEK(d.KDF, secret.Slice(), salt[:crypto.SaltBytes])
	return crypto.Expand(seed, []byte(infoSession), crypto.KeyBytes)
}
