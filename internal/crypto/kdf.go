package crypto

import (
	"crypto/sha512"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	KeyBytes  = 32
	SaltBytes = 16
)

// KDFParams tunes Argon2id.
type KDFParams struct {
	Time      uint32 `json:"time"`
	MemoryKiB uint32 `json:"memory_kib"`
	Threads   uint8  `json:"threads"`
}

var (
	// DefaultKDF is used for real accounts.
	DefaultKDF = KDFParams{Time: 1, MemoryKiB: 64 * 1024, Threads: 4}

	// InteractiveKDF trades hardness for speed; tests and the CLI's
	// --kdf=interactive use it.
	InteractiveKDF = KDFParams{Time: 1, MemoryKiB: 1024, Threads: 1}
)

// DeriveKEK derives a key-encryption key from a secret and salt using Argon2id.
func DeriveKEK(params KDFParams, secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, params.Time, params.MemoryKiB, params.Threads, KeyBytes)
}

// Expand stretches secret into n bytes bound to info with HKDF-SHA512.
func Expand(secret, info []byte, n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(hkdf.New(sha512.New, secret, nil, info), out); err != nil {
		return nil, err
	}
	return out, nil
}
