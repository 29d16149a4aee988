package fob

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"lifestuff/internal/crypto"
	"lifestuff/internal/domain"
	"lifestuff/internal/passport"
)

// Public is a fob as read back from the network.
type Public struct {
	SigningPublic    domain.Ed25519Public
	EncryptionPublic domain.X25519Public
	Validation       []byte
}

// Service manages fob packets in a network store.
type Service struct {
	store domain.PacketStore
}

// New returns a fob service writing to store.
func New(store domain.PacketStore) *Service { return &Service{store: store} }

// Publish writes a fob for every key of one passport generation. If any put
// fails the fobs already written are withdrawn again.
func (s *Service) Publish(ctx context.Context, pp *passport.Passport, confirmed bool) error {
	keys := pp.Keys(confirmed)
	if len(keys) == 0 {
		return fmt.Errorf("publish fobs: %w", domain.ErrUninitialised)
	}

	var (
		mu      sync.Mutex
		written []passport.KeyPair
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, kp := range keys {
		g.Go(func() error {
			if err := s.store.Put(gctx, kp.Name(), kp.PublicPacket()); err != nil {
				return fmt.Errorf("publish %v fob: %w", kp.Role, err)
			}
			mu.Lock()
			written = append(written, kp)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if uerr := s.unpublish(context.WithoutCancel(ctx), written); uerr != nil {
			log.Warnf("withdraw partially published fobs: %v", uerr)
		}
		return err
	}
	log.Debugf("published %d fobs", len(keys))
	return nil
}

// Unpublish deletes the fobs of one passport generation. Every delete is
// attempted; the first failure is returned. Fobs already gone count as
// withdrawn.
func (s *Service) Unpublish(ctx context.Context, pp *passport.Passport, confirmed bool) error {
	return s.unpublish(ctx, pp.Keys(confirmed))
}

func (s *Service) unpublish(ctx context.Context, keys []passport.KeyPair) error {
	var g errgroup.Group
	for _, kp := range keys {
		g.Go(func() error {
			name := kp.Name()
			err := s.store.Delete(ctx, name, kp.Prove(name))
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("withdraw %v fob: %w", kp.Role, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Lookup fetches the fob stored at name and checks its packet signature.
func (s *Service) Lookup(ctx context.Context, name domain.Identifier) (Public, error) {
	p, err := s.store.Get(ctx, name)
	if err != nil {
		return Public{}, err
	}
	sign, enc, validation, err := passport.ParsePublicPacket(p)
	if err != nil {
		return Public{}, err
	}
	if p.PublicKey != sign || !crypto.VerifyPacket(p) || crypto.Hash(sign.Slice(), enc.Slice()) != name {
		return Public{}, fmt.Errorf("fob %s: %w", name.Short(), domain.ErrAuthentication)
	}
	return Public{SigningPublic: sign, EncryptionPublic: enc, Validation: validation}, nil
}
