package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/nacl/box"
	"golang.org/x/crypto/nacl/secretbox"

	"lifestuff/internal/domain"
)

const secretboxNonceSize = 24

// SecretSeal encrypts msg with a 32-byte key and returns nonce||box.
func SecretSeal(key *[KeyBytes]byte, msg []byte) ([]byte, error) {
	var nonce [secretboxNonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], msg, &nonce, key), nil
}

// SecretOpen reverses SecretSeal.
func SecretOpen(key *[KeyBytes]byte, sealed []byte) ([]byte, error) {
	if len(sealed) < secretboxNonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("secretbox too short: %w", domain.ErrMalformedPacket)
	}
	var nonce [secretboxNonceSize]byte
	copy(nonce[:], sealed[:secretboxNonceSize])
	msg, ok := secretbox.Open(nil, sealed[secretboxNonceSize:], &nonce, key)
	if !ok {
		return nil, domain.ErrAuthentication
	}
	return msg, nil
}

// SealAnonymous encrypts msg so that only the holder of pub's private key can
// open it.
func SealAnonymous(pub domain.X25519Public, msg []byte) ([]byte, error) {
	k := [32]byte(pub)
	return box.SealAnonymous(nil, msg, &k, rand.Reader)
}

// OpenAnonymous reverses SealAnonymous.
func OpenAnonymous(pub domain.X25519Public, priv domain.X25519Private, sealed []byte) ([]byte, error) {
	if len(sealed) < box.AnonymousOverhead {
		return nil, fmt.Errorf("sealed box too short: %w", domain.ErrMalformedPacket)
	}
	pk, sk := [32]byte(pub), [32]byte(priv)
	msg, ok := box.OpenAnonymous(nil, sealed, &pk, &sk)
	if !ok {
		return nil, domain.ErrAuthentication
	}
	return msg, nil
}
