package identity

import (
	"context"
	"errors"
	"fmt"

	"lifestuff/internal/crypto"
	"lifestuff/internal/derive"
	"lifestuff/internal/domain"
	"lifestuff/internal/passport"
)

// chain names one generation of credential packets.
type chain struct {
	keyword  string
	pin      string
	password string
	tmid     domain.Identifier
	stmid    domain.Identifier
}

func (c chain) mid() domain.Identifier  { return derive.MidName(c.keyword, c.pin) }
func (c chain) smid() domain.Identifier { return derive.SmidName(c.keyword, c.pin) }

// signers are the confirmed keys that own chain packets.
type signers struct {
	anmid  passport.KeyPair
	ansmid passport.KeyPair
	antmid passport.KeyPair
}

func (s *Service) signers() (signers, error) {
	pp := s.sess.Passport()
	var (
		out signers
		err error
	)
	if out.anmid, err = pp.Key(passport.AnMid, true); err != nil {
		return out, err
	}
	if out.ansmid, err = pp.Key(passport.AnSmid, true); err != nil {
		return out, err
	}
	if out.antmid, err = pp.Key(passport.AnTmid, true); err != nil {
		return out, err
	}
	return out, nil
}

// rollback collects compensating steps and runs them newest first.
type rollback []func(context.Context) error

func (r *rollback) add(f func(context.Context) error) { *r = append(*r, f) }

func (r rollback) run(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := len(r) - 1; i >= 0; i-- {
		if err := r[i](ctx); err != nil {
			log.Warnf("rollback step failed: %v", err)
		}
	}
}

func (s *Service) putSession(ctx context.Context, c chain, name domain.Identifier, snapshot []byte, owner passport.KeyPair) error {
	sealed, err := s.deriver.EncryptSession(c.keyword, c.pin, c.password, snapshot)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, name, crypto.SignPacket(owner.SigningPrivate, sealed)); err != nil {
		return fmt.Errorf("put session packet %s: %w", name.Short(), err)
	}
	return nil
}

func (s *Service) putPointer(ctx context.Context, keyword, pin string, name, target domain.Identifier, owner passport.KeyPair) error {
	sealed, err := derive.EncryptTmidName(keyword, pin, target)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, name, crypto.SignPacket(owner.SigningPrivate, sealed)); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("pointer %s taken: %w", name.Short(), domain.ErrUserExists)
		}
		return fmt.Errorf("put pointer packet %s: %w", name.Short(), err)
	}
	return nil
}

// reserve claims name with an empty pointer owned by owner. The store only
// lets the same owner replace it, so a second creator gets ErrUserExists.
func (s *Service) reserve(ctx context.Context, name domain.Identifier, owner passport.KeyPair) error {
	if err := s.store.Put(ctx, name, crypto.SignPacket(owner.SigningPrivate, nil)); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("reserve %s: %w", name.Short(), domain.ErrUserExists)
		}
		return fmt.Errorf("reserve %s: %w", name.Short(), err)
	}
	return nil
}

// remove deletes name, treating an already missing packet as removed.
func (s *Service) remove(ctx context.Context, name domain.Identifier, owner passport.KeyPair) error {
	err := s.store.Delete(ctx, name, owner.Prove(name))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete %s: %w", name.Short(), err)
	}
	return nil
}

// writeChain writes the four packets of c. Pointers that replace old's at the
// same name are restored on rollback; everything else is deleted.
func (s *Service) writeChain(ctx context.Context, c chain, current, previous []byte, old *chain, rb *rollback) error {
	k, err := s.signers()
	if err != nil {
		return err
	}

	if err := s.putSession(ctx, c, c.tmid, current, k.antmid); err != nil {
		return err
	}
	rb.add(func(ctx context.Context) error { return s.remove(ctx, c.tmid, k.antmid) })

	if err := s.putSession(ctx, c, c.stmid, previous, k.antmid); err != nil {
		return err
	}
	rb.add(func(ctx context.Context) error { return s.remove(ctx, c.stmid, k.antmid) })

	if err := s.putPointer(ctx, c.keyword, c.pin, c.mid(), c.tmid, k.anmid); err != nil {
		return err
	}
	if old != nil && old.mid() == c.mid() {
		rb.add(func(ctx context.Context) error {
			return s.putPointer(ctx, old.keyword, old.pin, old.mid(), old.tmid, k.anmid)
		})
	} else {
		rb.add(func(ctx context.Context) error { return s.remove(ctx, c.mid(), k.anmid) })
	}

	if err := s.putPointer(ctx, c.keyword, c.pin, c.smid(), c.stmid, k.ansmid); err != nil {
		return err
	}
	if old != nil && old.smid() == c.smid() {
		rb.add(func(ctx context.Context) error {
			return s.putPointer(ctx, old.keyword, old.pin, old.smid(), old.stmid, k.ansmid)
		})
	} else {
		rb.add(func(ctx context.Context) error { return s.remove(ctx, c.smid(), k.ansmid) })
	}
	return nil
}

// fetch follows one pointer to its session packet and decrypts it.
func (s *Service) fetch(ctx context.Context, pointer domain.Identifier, keyword, pin, password string) (domain.Identifier, []byte, error) {
	var target domain.Identifier
	ptr, err := s.store.Get(ctx, pointer)
	if err != nil {
		return target, nil, missing("pointer", pointer, err)
	}
	if !crypto.VerifyPacket(ptr) {
		return target, nil, fmt.Errorf("pointer %s signature: %w", pointer.Short(), domain.ErrAuthentication)
	}
	if len(ptr.Data) == 0 {
		return target, nil, fmt.Errorf("pointer %s reserved: %w", pointer.Short(), domain.ErrUserDoesNotExist)
	}
	target, err = derive.DecryptTmidName(keyword, pin, ptr.Data)
	if err != nil {
		return target, nil, fmt.Errorf("pointer %s payload: %w", pointer.Short(), domain.ErrAuthentication)
	}

	pkt, err := s.store.Get(ctx, target)
	if err != nil {
		return target, nil, missing("session", target, err)
	}
	if !crypto.VerifyPacket(pkt) {
		return target, nil, fmt.Errorf("session %s signature: %w", target.Short(), domain.ErrAuthentication)
	}
	plain, err := s.deriver.DecryptSession(keyword, pin, password, pkt.Data)
	if err != nil {
		return target, nil, fmt.Errorf("session %s: %w", target.Short(), domain.ErrAuthentication)
	}
	return target, plain, nil
}

// missing maps a failed fetch of a required packet to ErrUserDoesNotExist,
// keeping any network error reachable through errors.Is/As.
func missing(what string, name domain.Identifier, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", what, name.Short(), domain.ErrUserDoesNotExist)
	}
	return fmt.Errorf("%s %s: %w", what, name.Short(), errors.Join(domain.ErrUserDoesNotExist, err))
}
