package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// B64 encodes key material carried inside JSON share messages.
func B64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// FromB64 is the inverse of B64.
func FromB64(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }

const (
	fingerprintBytes = 10
	fingerprintGroup = 4
)

// Fingerprint renders a public key for a person to compare by eye: the first
// ten bytes of a domain-separated hash, as hex in groups of four.
func Fingerprint(pub []byte) string {
	sum := Hash([]byte("lifestuff/fingerprint"), pub)
	digits := hex.EncodeToString(sum[:fingerprintBytes])
	var b strings.Builder
	for i := 0; i < len(digits); i += fingerprintGroup {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i:min(i+fingerprintGroup, len(digits))])
	}
	return b.String()
}
