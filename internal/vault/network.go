package vault

import (
	"context"
	"fmt"
	"sync"

	"lifestuff/internal/crypto"
	"lifestuff/internal/domain"
	"lifestuff/internal/passport"
	"lifestuff/internal/services/fob"
	"lifestuff/internal/util/memzero"
)

// Network keeps chunks in the network store. Each chunk is sealed under a
// key derived from the Pmid and signed by it, so only the Pmid owner can
// overwrite, read or delete it.
type Network struct {
	store domain.PacketStore
	fobs  *fob.Service

	mu      sync.RWMutex
	pmid    *passport.KeyPair
	key     []byte
	stopped bool
}

// NewNetwork returns a backend over store.
func NewNetwork(store domain.PacketStore) *Network {
	return &Network{store: store, fobs: fob.New(store)}
}

// RegisterPmid binds the backend to pmid. The Pmid fob must already be
// published and match.
func (n *Network) RegisterPmid(ctx context.Context, pmid passport.KeyPair) error {
	if err := checkPmid(pmid); err != nil {
		return err
	}
	pub, err := n.fobs.Lookup(ctx, pmid.Name())
	if err != nil {
		return fmt.Errorf("pmid fob: %w", err)
	}
	if pub.SigningPublic != pmid.SigningPublic || pub.EncryptionPublic != pmid.EncryptionPublic {
		return fmt.Errorf("pmid fob mismatch: %w", domain.ErrAuthentication)
	}
	key, err := chunkKey(pmid)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped {
		return ErrStopped
	}
	n.pmid, n.key = &pmid, key
	log.Debugf("network vault registered pmid %s", pmid.Name().Short())
	return nil
}

func (n *Network) bound() (passport.KeyPair, []byte, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	switch {
	case n.stopped:
		return passport.KeyPair{}, nil, ErrStopped
	case n.pmid == nil:
		return passport.KeyPair{}, nil, fmt.Errorf("network vault: %w", domain.ErrUninitialised)
	}
	return *n.pmid, n.key, nil
}

func (n *Network) Store(ctx context.Context, name domain.Identifier, data []byte) error {
	pmid, key, err := n.bound()
	if err != nil {
		return err
	}
	sealed, err := crypto.Seal(key, data, name[:])
	if err != nil {
		return err
	}
	return n.store.Put(ctx, name, crypto.SignPacket(pmid.SigningPrivate, sealed))
}

func (n *Network) Fetch(ctx context.Context, name domain.Identifier) ([]byte, error) {
	pmid, key, err := n.bound()
	if err != nil {
		return nil, err
	}
	p, err := n.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if p.PublicKey != pmid.SigningPublic || !crypto.VerifyPacket(p) {
		return nil, fmt.Errorf("chunk %s: %w", name.Short(), domain.ErrAuthentication)
	}
	return crypto.Open(key, p.Data, name[:])
}

func (n *Network) Delete(ctx context.Context, name domain.Identifier) error {
	pmid, _, err := n.bound()
	if err != nil {
		return err
	}
	return n.store.Delete(ctx, name, pmid.Prove(name))
}

// Stop unbinds the Pmid. The network store itself is shared and stays open.
func (n *Network) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopped = true
	n.pmid = nil
	memzero.Zero(n.key)
	n.key = nil
	return nil
}

var _ Backend = (*Network)(nil)
