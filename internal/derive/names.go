package derive

import (
	"crypto/rand"
	"encoding/binary"

	"lifestuff/internal/crypto"
	"lifestuff/internal/domain"
)

// smidSalt is fixed and public so that Smid lookups need nothing but the
// keyword and pin.
const smidSalt = "lifestuff/smid"

// MidName returns the name of the master id packet for keyword and pin.
func MidName(keyword, pin string) domain.Identifier {
	return crypto.HashStrings(keyword, pin)
}

// SmidName returns the name of the surrogate master id packet. It never equals
// MidName for the same inputs.
func SmidName(keyword, pin string) domain.Identifier {
	return crypto.HashStrings(keyword, pin, smidSalt)
}

// TmidName returns the name of a session packet. rid rotates on every save so
// each generation lands under a fresh name.
func TmidName(keyword, pin, password string, rid uint32) domain.Identifier {
	var r [4]byte
	binary.BigEndian.PutUint32(r[:], rid)
	return crypto.Hash([]byte(keyword), []byte(pin), []byte(password), r[:])
}

// NewTmidName draws discriminators until the resulting name differs from every
// name in avoid.
func NewTmidName(keyword, pin, password string, avoid ...domain.Identifier) (domain.Identifier, error) {
	for {
		var r [4]byte
		if _, err := rand.Read(r[:]); err != nil {
			return domain.Identifier{}, err
		}
		name := TmidName(keyword, pin, password, binary.BigEndian.Uint32(r[:]))
		if !contains(avoid, name) {
			return name, nil
		}
	}
}

func contains(ids []domain.Identifier, id domain.Identifier) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
