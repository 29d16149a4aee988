package vault

import (
	"context"
	"errors"
	"fmt"

	"lifestuff/internal/crypto"
	"lifestuff/internal/domain"
	"lifestuff/internal/passport"
)

// ErrStopped is returned by every operation after Stop.
var ErrStopped = errors.New("vault stopped")

// Backend stores chunks under content-derived names.
type Backend interface {
	Store(ctx context.Context, name domain.Identifier, data []byte) error
	Fetch(ctx context.Context, name domain.Identifier) ([]byte, error)
	Delete(ctx context.Context, name domain.Identifier) error
	RegisterPmid(ctx context.Context, pmid passport.KeyPair) error
	Stop() error
}

// Kind selects a Backend implementation.
type Kind string

const (
	KindNetwork Kind = "network"
	KindLocal   Kind = "local"
)

// ParseKind validates a backend name from configuration.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindNetwork, KindLocal:
		return k, nil
	default:
		return "", fmt.Errorf("vault backend %q: %w", s, domain.ErrInvalidParameter)
	}
}

// chunkKey derives the symmetric key chunks are sealed under.
func chunkKey(pmid passport.KeyPair) ([]byte, error) {
	return crypto.Expand(pmid.EncryptionPrivate.Slice(), []byte("lifestuff/vault"), crypto.KeyBytes)
}

func checkPmid(pmid passport.KeyPair) error {
	if pmid.Role != passport.Pmid {
		return fmt.Errorf("register %v as pmid: %w", pmid.Role, domain.ErrInvalidParameter)
	}
	return nil
}

// New builds the backend kind selects. dir is only used by KindLocal.
func New(kind Kind, store domain.PacketStore, dir string) (Backend, error) {
	switch kind {
	case KindNetwork:
		return NewNetwork(store), nil
	case KindLocal:
		return NewLocal(dir), nil
	default:
		return nil, fmt.Errorf("vault backend %q: %w", kind, domain.ErrInvalidParameter)
	}
}
