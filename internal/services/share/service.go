package share

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lifestuff/internal/crypto"
	"lifestuff/internal/domain"
	"lifestuff/internal/services/message"
)

// Service manages the shares one public id owns or belongs to.
type Service struct {
	me    domain.PublicID
	store domain.PacketStore
	msgs  *message.Service
	reg   *Registry
	ring  *KeyRing
}

// New returns a share service acting as me.
func New(me domain.PublicID, store domain.PacketStore, msgs *message.Service) *Service {
	return &Service{me: me, store: store, msgs: msgs, reg: NewRegistry(), ring: NewKeyRing()}
}

// Registry returns the records of shares this service administers.
func (s *Service) Registry() *Registry { return s.reg }

// KeyRing returns the memberships received from other admins.
func (s *Service) KeyRing() *KeyRing { return s.ring }

// CreateShare creates a share for directoryID (a new id when empty) and sends
// every member an insert_share message.
func (s *Service) CreateShare(ctx context.Context, directoryID, name string, members map[domain.PublicID]Rights) (Record, error) {
	if directoryID == "" {
		directoryID = uuid.NewString()
	}
	l := s.reg.lock(directoryID)
	l.Lock()
	defer l.Unlock()

	if _, ok := s.reg.Get(directoryID); ok {
		return Record{}, fmt.Errorf("share for %s: %w", directoryID, domain.ErrConflict)
	}
	rec := Record{DirectoryID: directoryID, Name: name, Owner: s.me, Members: make(map[domain.PublicID]Rights, len(members))}
	for id, r := range members {
		rec.Members[id] = r
	}
	return s.rotate(ctx, nil, rec, func(domain.PublicID) (message.Tag, bool) { return message.InsertShare, true })
}

// AddMember rotates the share and sends the new member insert_share and
// everyone else update_share.
func (s *Service) AddMember(ctx context.Context, directoryID string, id domain.PublicID, rights Rights) (Record, error) {
	l := s.reg.lock(directoryID)
	l.Lock()
	defer l.Unlock()

	old, err := s.record(directoryID)
	if err != nil {
		return Record{}, err
	}
	if _, ok := old.Members[id]; ok {
		return Record{}, fmt.Errorf("%s already in %s: %w", id, directoryID, domain.ErrConflict)
	}
	next := old.clone()
	next.Members[id] = rights
	return s.rotate(ctx, &old, next, func(m domain.PublicID) (message.Tag, bool) {
		if m == id {
			return message.InsertShare, true
		}
		return message.UpdateShare, true
	})
}

// RemoveMember rotates the share without id and tells id the share is gone.
func (s *Service) RemoveMember(ctx context.Context, directoryID string, id domain.PublicID) (Record, error) {
	return s.removeMember(ctx, directoryID, id, true)
}

func (s *Service) removeMember(ctx context.Context, directoryID string, id domain.PublicID, notify bool) (Record, error) {
	l := s.reg.lock(directoryID)
	l.Lock()
	defer l.Unlock()

	old, err := s.record(directoryID)
	if err != nil {
		return Record{}, err
	}
	if _, ok := old.Members[id]; !ok {
		return Record{}, fmt.Errorf("%s in %s: %w", id, directoryID, domain.ErrNotFound)
	}
	next := old.clone()
	delete(next.Members, id)
	rec, err := s.rotate(ctx, &old, next, func(domain.PublicID) (message.Tag, bool) { return message.UpdateShare, true })
	if err != nil {
		return rec, err
	}
	if notify {
		m := message.Share{Tag: message.RemoveShare, ShareID: rec.ShareID, DirectoryID: directoryID}
		if err := s.msgs.Send(ctx, s.me, id, m); err != nil {
			log.Warnf("notify removed member %s: %v", id, err)
		}
	}
	return rec, nil
}

// SetRights changes a member's rights. An upgrade hands the member the
// current admin key material; a downgrade rotates the share and the member
// receives nothing from that rotation.
func (s *Service) SetRights(ctx context.Context, directoryID string, id domain.PublicID, rights Rights) (Record, error) {
	l := s.reg.lock(directoryID)
	l.Lock()
	defer l.Unlock()

	old, err := s.record(directoryID)
	if err != nil {
		return Record{}, err
	}
	cur, ok := old.Members[id]
	if !ok {
		return Record{}, fmt.Errorf("%s in %s: %w", id, directoryID, domain.ErrNotFound)
	}
	next := old.clone()
	next.Members[id] = rights

	switch {
	case rights == cur:
		return old, nil
	case rights > cur:
		s.reg.swap(next)
		m := next.Keys.message(message.MemberAccess, next, rights == Admin)
		if err := s.msgs.Send(ctx, s.me, id, m); err != nil {
			return next, err
		}
		return next, nil
	default:
		return s.rotate(ctx, &old, next, func(m domain.PublicID) (message.Tag, bool) {
			return message.UpdateShare, m != id
		})
	}
}

// DeleteShare tells every member the share is gone and drops its key packet.
func (s *Service) DeleteShare(ctx context.Context, directoryID string) error {
	l := s.reg.lock(directoryID)
	l.Lock()
	defer l.Unlock()

	rec, err := s.record(directoryID)
	if err != nil {
		return err
	}
	s.reg.remove(directoryID)

	var g errgroup.Group
	m := message.Share{Tag: message.RemoveShare, ShareID: rec.ShareID, DirectoryID: directoryID}
	for id := range rec.Members {
		g.Go(func() error { return s.msgs.Send(ctx, s.me, id, m) })
	}
	s.dropKeyPacket(ctx, rec.Keys)
	return g.Wait()
}

// Leave tells the share's admin this member is leaving and forgets the keys.
func (s *Service) Leave(ctx context.Context, directoryID string) error {
	mem, ok := s.ring.Get(directoryID)
	if !ok {
		return fmt.Errorf("membership of %s: %w", directoryID, domain.ErrNotFound)
	}
	m := message.Share{Tag: message.LeaveShare, ShareID: mem.ShareID, DirectoryID: directoryID}
	if err := s.msgs.Send(ctx, s.me, mem.From, m); err != nil {
		return err
	}
	s.ring.remove(directoryID)
	return nil
}

// HandleMessage applies one received share message. Once a membership
// exists, only the admin that granted it may change or revoke it; an
// update_share, member_access or remove_share without a membership is
// ignored, as is anything from another sender.
func (s *Service) HandleMessage(ctx context.Context, from domain.PublicID, m message.Share) error {
	switch m.Tag {
	case message.InsertShare, message.UpdateShare, message.MemberAccess, message.RemoveShare:
		prev, ok := s.ring.Get(m.DirectoryID)
		if !s.acceptFrom(from, m, prev, ok) {
			return nil
		}
		if m.Tag == message.RemoveShare {
			s.ring.remove(m.DirectoryID)
			return nil
		}
		keys, err := keysFromMessage(m)
		if err != nil {
			return err
		}
		mem := Membership{ShareID: m.ShareID, DirectoryID: m.DirectoryID, Name: m.Filename, From: from, Keys: keys}
		if ok && m.Tag != message.InsertShare {
			mem.Name = prev.Name
		}
		s.ring.put(mem)

	case message.LeaveShare:
		rec, ok := s.reg.Get(m.DirectoryID)
		if !ok {
			return nil
		}
		if _, member := rec.Members[from]; !member {
			return nil
		}
		if _, err := s.removeMember(ctx, m.DirectoryID, from, false); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) acceptFrom(from domain.PublicID, m message.Share, prev Membership, member bool) bool {
	switch {
	case member && prev.From != from:
		log.Warnf("ignoring %s for %s from %s: membership granted by %s", m.Tag, m.DirectoryID, from, prev.From)
		return false
	case !member && m.Tag != message.InsertShare:
		log.Warnf("ignoring %s for %s from %s: not a member", m.Tag, m.DirectoryID, from)
		return false
	}
	return true
}

// Sync receives and applies queued share messages.
func (s *Service) Sync(ctx context.Context) (int, error) {
	return s.msgs.Receive(ctx, s.me, 0, s.HandleMessage)
}

// Seal encrypts content to the directory's current share key.
func (s *Service) Seal(directoryID string, plaintext []byte) ([]byte, error) {
	keys, err := s.keys(directoryID)
	if err != nil {
		return nil, err
	}
	return crypto.SealAnonymous(keys.EncryptionPublic, plaintext)
}

// Open decrypts content sealed to the directory's current share key.
func (s *Service) Open(directoryID string, sealed []byte) ([]byte, error) {
	keys, err := s.keys(directoryID)
	if err != nil {
		return nil, err
	}
	return crypto.OpenAnonymous(keys.EncryptionPublic, keys.EncryptionPrivate, sealed)
}

func (s *Service) keys(directoryID string) (Keys, error) {
	if rec, ok := s.reg.Get(directoryID); ok {
		return rec.Keys, nil
	}
	if mem, ok := s.ring.Get(directoryID); ok {
		return mem.Keys, nil
	}
	return Keys{}, fmt.Errorf("share %s: %w", directoryID, domain.ErrNotFound)
}

func (s *Service) record(directoryID string) (Record, error) {
	rec, ok := s.reg.Get(directoryID)
	if !ok {
		return Record{}, fmt.Errorf("share %s: %w", directoryID, domain.ErrNotFound)
	}
	return rec, nil
}

// rotate moves next onto a fresh share id and key pair, notifies the members
// tagFor selects and drops old's key packet. Callers hold the directory lock.
func (s *Service) rotate(ctx context.Context, old *Record, next Record, tagFor func(domain.PublicID) (message.Tag, bool)) (Record, error) {
	keys, err := NewKeys()
	if err != nil {
		return Record{}, err
	}
	next.ShareID = uuid.NewString()
	next.Keys = keys

	if err := s.store.Put(ctx, keys.Name(), keys.packet()); err != nil {
		return Record{}, fmt.Errorf("publish share key: %w", err)
	}
	s.reg.swap(next)

	var g errgroup.Group
	for id, rights := range next.Members {
		tag, ok := tagFor(id)
		if !ok {
			continue
		}
		m := keys.message(tag, next, rights == Admin)
		g.Go(func() error { return s.msgs.Send(ctx, s.me, id, m) })
	}
	notifyErr := g.Wait()

	if old != nil {
		s.dropKeyPacket(ctx, old.Keys)
	}
	if notifyErr != nil {
		return next, fmt.Errorf("notify members of %s: %w", next.DirectoryID, errors.Join(domain.ErrPartialFailure, notifyErr))
	}
	log.Debugf("rotated share %s to %s", next.DirectoryID, next.ShareID)
	return next, nil
}

func (s *Service) dropKeyPacket(ctx context.Context, keys Keys) {
	name := keys.Name()
	if err := s.store.Delete(ctx, name, crypto.ProveOwnership(keys.SigningPrivate, name)); err != nil {
		log.Warnf("delete old share key %s: %v", name.Short(), err)
	}
}
