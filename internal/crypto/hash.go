package crypto

import (
	"crypto/sha512"
	"encoding/binary"

	"lifestuff/internal/domain"
)

// Hash returns the SHA-512 digest of parts. Every part is prefixed with its
// uvarint length, so distinct part lists never share an encoding.
func Hash(parts ...[]byte) domain.Identifier {
	h := sha512.New()
	var prefix [binary.MaxVarintLen64]byte
	for _, p := range parts {
		n := binary.PutUvarint(prefix[:], uint64(len(p)))
		h.Write(prefix[:n])
		h.Write(p)
	}
	var out domain.Identifier
	copy(out[:], h.Sum(nil))
	return out
}

// HashStrings is Hash over the bytes of each string.
func HashStrings(parts ...string) domain.Identifier {
	bs := make([][]byte, len(parts))
	for i, p := range parts {
		bs[i] = []byte(p)
	}
	return Hash(bs...)
}
