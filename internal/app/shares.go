package app

import (
	"errors"
	"fmt"
	"path/filepath"

	"lifestuff/internal/crypto"
	"lifestuff/internal/domain"
	"lifestuff/internal/passport"
	sharesvc "lifestuff/internal/services/share"
	"lifestuff/internal/store"
)

// Shares returns a share service acting as me, loaded with the share state
// SaveShares last sealed for the logged-in account.
func (w *Wire) Shares(me domain.PublicID) (*sharesvc.Service, error) {
	svc := sharesvc.New(me, w.Store, w.Messages)
	dir, err := w.shareDir()
	if err != nil {
		return nil, err
	}
	b, err := dir.Get(shareStateName(me))
	if errors.Is(err, domain.ErrNotFound) {
		return svc, nil
	}
	if err != nil {
		return nil, err
	}
	if err := svc.RestoreState(b); err != nil {
		return nil, err
	}
	return svc, nil
}

// SaveShares seals the share state of svc, acting as me, under the home
// directory.
func (w *Wire) SaveShares(me domain.PublicID, svc *sharesvc.Service) error {
	dir, err := w.shareDir()
	if err != nil {
		return err
	}
	b, err := svc.MarshalState()
	if err != nil {
		return err
	}
	return dir.Put(shareStateName(me), b)
}

func shareStateName(me domain.PublicID) domain.Identifier {
	return crypto.HashStrings("lifestuff/share-state", string(me))
}

// shareDir opens the share state directory sealed under a key derived from
// the account's Maid.
func (w *Wire) shareDir() (*store.ChunkDir, error) {
	maid, err := w.Client.Session().Passport().Key(passport.Maid, true)
	if err != nil {
		return nil, fmt.Errorf("share state needs a logged in account: %w", err)
	}
	key, err := crypto.Expand(maid.EncryptionPrivate.Slice(), []byte("lifestuff/shares"), crypto.KeyBytes)
	if err != nil {
		return nil, err
	}
	return store.NewChunkDir(filepath.Join(w.home, "shares"), key)
}
