package store

import (
	"crypto/rand"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"lifestuff/internal/domain"
)

const (
	// The current supported version of the sealed chunk format stored on disk.
	chunkFormatVersion = 1
)

var (
	// Returned when the vault key is wrong or the chunk file has been modified.
	errChunkAuth = fmt.Errorf("sealed chunk: %w", domain.ErrAuthentication)
)

// envelope is the on-disk JSON structure of a sealed chunk.
type envelope struct {
	V      int    `json:"v"`
	Nonce  []byte `json:"nonce"`
	Cipher []byte `json:"cipher"`
}

// seal encrypts raw under key, binding it to the chunk name.
func seal(key []byte, name domain.Identifier, raw []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return json.Marshal(envelope{
		V:      chunkFormatVersion,
		Nonce:  nonce,
		Cipher: aead.Seal(nil, nonce, raw, name[:]),
	})
}

// unseal opens an envelope produced by seal for the same name.
func unseal(key []byte, name domain.Identifier, b []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("sealed chunk: %w", domain.ErrMalformedPacket)
	}
	if env.V > chunkFormatVersion {
		return nil, fmt.Errorf("unsupported chunk version %d", env.V)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("sealed chunk nonce: %w", domain.ErrMalformedPacket)
	}
	pt, err := aead.Open(nil, env.Nonce, env.Cipher, name[:])
	if err != nil {
		return nil, errChunkAuth
	}
	return pt, nil
}
