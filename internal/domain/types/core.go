package types

import (
	"encoding/hex"
	"fmt"
)

// IdentifierSize is the length of a network name (a SHA-512 digest).
const IdentifierSize = 64

// Identifier is a content-derived, fixed-length network name.
type Identifier [IdentifierSize]byte

// String returns the lowercase hex form of the identifier.
func (id Identifier) String() string { return hex.EncodeToString(id[:]) }

// Short returns the first eight bytes in hex, for logs.
func (id Identifier) Short() string { return hex.EncodeToString(id[:8]) }

// IsZero reports whether id is unset.
func (id Identifier) IsZero() bool { return id == Identifier{} }

// Slice returns the identifier as a []byte.
func (id Identifier) Slice() []byte { return id[:] }

// MarshalText encodes the identifier as hex.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes a hex identifier.
func (id *Identifier) UnmarshalText(b []byte) error {
	parsed, err := ParseIdentifier(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseIdentifier decodes the hex form produced by Identifier.String.
func ParseIdentifier(s string) (Identifier, error) {
	var id Identifier
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("identifier: %w", err)
	}
	if len(b) != IdentifierSize {
		return id, fmt.Errorf("identifier: want %d bytes, got %d", IdentifierSize, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// PublicID is the public username a user is reachable under.
type PublicID string

// String returns the string form of the public id.
func (p PublicID) String() string { return string(p) }
