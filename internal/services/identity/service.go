package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"lifestuff/internal/derive"
	"lifestuff/internal/domain"
	"lifestuff/internal/passport"
	"lifestuff/internal/session"
)

// Fobs publishes and withdraws passport public keys.
type Fobs interface {
	Publish(ctx context.Context, pp *passport.Passport, confirmed bool) error
	Unpublish(ctx context.Context, pp *passport.Passport, confirmed bool) error
}

// Service drives the credential packet chain of one session.
type Service struct {
	mu      sync.Mutex
	store   domain.PacketStore
	fobs    Fobs
	deriver derive.Deriver
	sess    *session.Session

	state State
	tmid  domain.Identifier
	stmid domain.Identifier
}

// New returns a chain service for sess.
func New(store domain.PacketStore, fobs Fobs, d derive.Deriver, sess *session.Session) *Service {
	return &Service{store: store, fobs: fobs, deriver: d, sess: sess}
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Service) expect(want State) error {
	if s.state != want {
		return fmt.Errorf("%v, want %v: %w", s.state, want, domain.ErrInvalidState)
	}
	return nil
}

// GetUserInfo probes whether an account exists for keyword and pin. It does
// not touch local state.
func (s *Service) GetUserInfo(ctx context.Context, keyword, pin string) (Existence, error) {
	for _, name := range []domain.Identifier{derive.MidName(keyword, pin), derive.SmidName(keyword, pin)} {
		unique, err := s.store.KeyUnique(ctx, name)
		if err != nil {
			return UserDoesNotExist, err
		}
		if !unique {
			return UserExists, nil
		}
	}
	return UserDoesNotExist, nil
}

// CreateUserSysPackets generates a new passport, reserves the Mid and Smid
// names, publishes its fobs and confirms it. It fails with
// domain.ErrUserExists when keyword and pin are already in use, including
// when another creator reserved them first.
func (s *Service) CreateUserSysPackets(ctx context.Context, keyword, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(LoggedOut); err != nil {
		return err
	}

	if exists, err := s.GetUserInfo(ctx, keyword, pin); err != nil {
		return err
	} else if exists == UserExists {
		return domain.ErrUserExists
	}

	pp := s.sess.Passport()
	if err := pp.CreateSigningPackets(); err != nil {
		return err
	}
	var rb rollback
	fail := func(err error) error {
		rb.run(ctx)
		pp.RevertSigningPackets()
		return err
	}

	c := chain{keyword: keyword, pin: pin}
	for _, r := range []struct {
		name domain.Identifier
		role passport.Role
	}{{c.mid(), passport.AnMid}, {c.smid(), passport.AnSmid}} {
		owner, err := pp.Key(r.role, false)
		if err != nil {
			return fail(err)
		}
		if err := s.reserve(ctx, r.name, owner); err != nil {
			return fail(err)
		}
		name := r.name
		rb.add(func(ctx context.Context) error { return s.remove(ctx, name, owner) })
	}

	if err := s.fobs.Publish(ctx, pp, false); err != nil {
		return fail(err)
	}
	if err := pp.ConfirmSigningPackets(); err != nil {
		return fail(err)
	}

	s.sess.SetCredentials(keyword, pin, "")
	s.state = Creating
	log.Infof("created identity packets for %s", c.mid().Short())
	return nil
}

// CreateTmidPacket writes the first chain: Tmid holds current, Stmid holds
// previous, and Mid/Smid point at them. A late conflict on Mid or Smid is
// reported as domain.ErrUserExists.
func (s *Service) CreateTmidPacket(ctx context.Context, password string, current, previous []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(Creating); err != nil {
		return err
	}

	keyword, pin, _ := s.sess.Credentials()
	c := chain{keyword: keyword, pin: pin, password: password}
	var err error
	if c.tmid, err = derive.NewTmidName(keyword, pin, password); err != nil {
		return err
	}
	if c.stmid, err = derive.NewTmidName(keyword, pin, password, c.tmid); err != nil {
		return err
	}

	var rb rollback
	if err := s.writeChain(ctx, c, current, previous, nil, &rb); err != nil {
		rb.run(ctx)
		return err
	}

	s.sess.SetPassword(password)
	s.tmid, s.stmid = c.tmid, c.stmid
	s.state = LoggedIn
	return nil
}

// GetMasterDataMap fetches and decrypts both halves of the chain. It succeeds
// when at least one snapshot decrypts; Current is empty if only the previous
// one did.
func (s *Service) GetMasterDataMap(ctx context.Context, keyword, pin, password string) (MasterData, error) {
	var md MasterData
	tmid, current, curErr := s.fetch(ctx, derive.MidName(keyword, pin), keyword, pin, password)
	stmid, previous, prevErr := s.fetch(ctx, derive.SmidName(keyword, pin), keyword, pin, password)

	if curErr != nil && prevErr != nil {
		switch {
		case errors.Is(curErr, domain.ErrAuthentication):
			return md, curErr
		case errors.Is(prevErr, domain.ErrAuthentication):
			return md, prevErr
		default:
			return md, curErr
		}
	}
	if curErr != nil {
		log.Warnf("current session unavailable, recovering from previous: %v", curErr)
	}
	md.TmidName, md.StmidName = tmid, stmid
	md.Current, md.Previous = current, previous
	return md, nil
}

// ValidateUser logs in: it recovers the newest parseable snapshot into the
// session and records the live chain.
func (s *Service) ValidateUser(ctx context.Context, keyword, pin, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(LoggedOut); err != nil {
		return err
	}

	md, err := s.GetMasterDataMap(ctx, keyword, pin, password)
	if err != nil {
		return err
	}

	tmid, stmid := md.TmidName, md.StmidName
	var parseErr error
	if len(md.Current) > 0 {
		parseErr = s.sess.Parse(md.Current)
	}
	if len(md.Current) == 0 || parseErr != nil {
		if len(md.Previous) == 0 {
			return parseErr
		}
		if parseErr != nil {
			log.Warnf("current snapshot unreadable, using previous: %v", parseErr)
		}
		if err := s.sess.Parse(md.Previous); err != nil {
			return err
		}
		// The previous packet becomes the live Tmid so the next save
		// discards the broken one.
		tmid, stmid = md.StmidName, md.TmidName
	}

	s.sess.SetCredentials(keyword, pin, password)
	s.tmid, s.stmid = tmid, stmid
	s.state = LoggedIn
	return nil
}

// SaveSession stores the session as a new Tmid and shifts the old Tmid into
// the Smid slot. Failing to delete the old Stmid is logged and not returned.
func (s *Service) SaveSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(LoggedIn); err != nil {
		return err
	}
	s.state = SavingSession
	defer func() { s.state = LoggedIn }()

	k, err := s.signers()
	if err != nil {
		return err
	}
	snapshot, err := s.sess.Serialise()
	if err != nil {
		return err
	}
	keyword, pin, password := s.sess.Credentials()
	c := chain{keyword: keyword, pin: pin, password: password}
	newTmid, err := derive.NewTmidName(keyword, pin, password, s.tmid, s.stmid)
	if err != nil {
		return err
	}
	oldTmid, oldStmid := s.tmid, s.stmid

	var rb rollback
	if err := s.putSession(ctx, c, newTmid, snapshot, k.antmid); err != nil {
		return err
	}
	rb.add(func(ctx context.Context) error { return s.remove(ctx, newTmid, k.antmid) })

	if err := s.putPointer(ctx, keyword, pin, c.mid(), newTmid, k.anmid); err != nil {
		rb.run(ctx)
		return err
	}
	rb.add(func(ctx context.Context) error { return s.putPointer(ctx, keyword, pin, c.mid(), oldTmid, k.anmid) })

	if err := s.putPointer(ctx, keyword, pin, c.smid(), oldTmid, k.ansmid); err != nil {
		rb.run(ctx)
		return err
	}

	if err := s.remove(ctx, oldStmid, k.antmid); err != nil {
		log.Warnf("%v: %v", domain.ErrFailedToDeleteOldPacket, err)
	}
	s.tmid, s.stmid = newTmid, oldTmid
	return nil
}

// ChangeKeyword moves the chain under a new keyword.
func (s *Service) ChangeKeyword(ctx context.Context, keyword string) error {
	return s.change(ctx, func(c *chain) { c.keyword = keyword })
}

// ChangePin moves the chain under a new pin.
func (s *Service) ChangePin(ctx context.Context, pin string) error {
	return s.change(ctx, func(c *chain) { c.pin = pin })
}

// ChangePassword re-encrypts the chain under a new password.
func (s *Service) ChangePassword(ctx context.Context, password string) error {
	return s.change(ctx, func(c *chain) { c.password = password })
}

// change writes a complete chain under the factors apply produces from the
// current ones, then best-effort deletes the old chain. The current factors
// are read under the lock so a change never builds on a superseded one. The
// session only takes the new factors once the new chain is in place.
func (s *Service) change(ctx context.Context, apply func(*chain)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(LoggedIn); err != nil {
		return err
	}
	s.state = ChangingCredential
	defer func() { s.state = LoggedIn }()

	oldKeyword, oldPin, oldPassword := s.sess.Credentials()
	old := chain{keyword: oldKeyword, pin: oldPin, password: oldPassword, tmid: s.tmid, stmid: s.stmid}
	c := chain{keyword: oldKeyword, pin: oldPin, password: oldPassword}
	apply(&c)
	keyword, pin, password := c.keyword, c.pin, c.password
	moved := c.mid() != old.mid()

	if moved {
		if exists, err := s.GetUserInfo(ctx, keyword, pin); err != nil {
			return err
		} else if exists == UserExists {
			return domain.ErrUserExists
		}
	}

	current, previous, err := s.sess.SerialisePair()
	if err != nil {
		return err
	}
	if c.tmid, err = derive.NewTmidName(keyword, pin, password, old.tmid, old.stmid); err != nil {
		return err
	}
	if c.stmid, err = derive.NewTmidName(keyword, pin, password, old.tmid, old.stmid, c.tmid); err != nil {
		return err
	}

	var rb rollback
	if err := s.writeChain(ctx, c, current, previous, &old, &rb); err != nil {
		rb.run(ctx)
		return err
	}

	if err := s.removeChain(ctx, old, moved); err != nil {
		log.Warnf("%v: %v", domain.ErrFailedToDeleteOldPacket, err)
	}
	s.sess.SetCredentials(keyword, pin, password)
	s.tmid, s.stmid = c.tmid, c.stmid
	return nil
}

// removeChain deletes c's session packets and, when withPointers is set, its
// Mid and Smid. All deletes are attempted; the first error is returned.
func (s *Service) removeChain(ctx context.Context, c chain, withPointers bool) error {
	k, err := s.signers()
	if err != nil {
		return err
	}
	var g errgroup.Group
	del := func(name domain.Identifier, owner passport.KeyPair) {
		if name.IsZero() {
			return
		}
		g.Go(func() error { return s.remove(ctx, name, owner) })
	}
	del(c.tmid, k.antmid)
	del(c.stmid, k.antmid)
	if withPointers {
		del(c.mid(), k.anmid)
		del(c.smid(), k.ansmid)
	}
	return g.Wait()
}

// RemoveMe deletes the whole account: the chain and every confirmed fob.
// Every delete is attempted; the first error is returned and the service
// stays logged in so the removal can be retried.
func (s *Service) RemoveMe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.expect(LoggedIn); err != nil {
		return err
	}

	keyword, pin, password := s.sess.Credentials()
	c := chain{keyword: keyword, pin: pin, password: password, tmid: s.tmid, stmid: s.stmid}
	var g errgroup.Group
	g.Go(func() error { return s.removeChain(ctx, c, true) })
	g.Go(func() error { return s.fobs.Unpublish(ctx, s.sess.Passport(), true) })
	if err := g.Wait(); err != nil {
		return err
	}

	s.reset()
	return nil
}

// Abandon tears down whatever chain packets a failed account creation left
// behind, reserved Mid and Smid included, and returns to LoggedOut. Fobs
// are left to the caller.
func (s *Service) Abandon(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == LoggedOut {
		return nil
	}
	keyword, pin, password := s.sess.Credentials()
	c := chain{keyword: keyword, pin: pin, password: password, tmid: s.tmid, stmid: s.stmid}
	err := s.removeChain(context.WithoutCancel(ctx), c, true)
	s.reset()
	return err
}

// LogOut forgets the live chain.
func (s *Service) LogOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Service) reset() {
	s.state = LoggedOut
	s.tmid, s.stmid = domain.Identifier{}, domain.Identifier{}
}
