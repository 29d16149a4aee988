package client

import (
	"context"
	"errors"
	"fmt"

	"lifestuff/internal/derive"
	"lifestuff/internal/domain"
	"lifestuff/internal/drive"
	"lifestuff/internal/input"
	"lifestuff/internal/vault"
)

// createRecord lists what a CreateUser run has completed so far.
type createRecord struct {
	identity bool // fobs published, passport confirmed
	backend  vault.Backend
	drive    *drive.Drive
}

// rollback undoes rec in reverse dependency order. Every step is attempted.
func (c *Client) rollback(ctx context.Context, rec *createRecord) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	if err := c.ids.Abandon(ctx); err != nil {
		errs = append(errs, fmt.Errorf("remove chain: %w", err))
	}
	if rec.drive != nil {
		if err := unmountDrive(ctx, rec.drive); err != nil {
			errs = append(errs, fmt.Errorf("unmount: %w", err))
		}
	}
	if rec.backend != nil {
		if err := rec.backend.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop vault: %w", err))
		}
	}
	if rec.identity {
		if err := c.fobs.Unpublish(ctx, c.sess.Passport(), true); err != nil {
			errs = append(errs, fmt.Errorf("unpublish fobs: %w", err))
		}
	}
	c.sess.Reset()
	return errors.Join(errs...)
}

// CreateUser creates an account for the confirmed keyword, pin and password.
// The drive is mounted and unmounted once to prove the vault works before
// the session is stored. On any failure everything already done is undone
// and the original error is returned.
func (c *Client) CreateUser(ctx context.Context) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	const a = ActionCreateUser
	if c.loggedIn {
		return fmt.Errorf("create user: %w", domain.ErrInvalidState)
	}

	c.progress(a, InitialiseProcess)
	c.progress(a, ConfirmingUserInput)
	v, err := c.secrets(input.Keyword, input.Pin, input.Password)
	if err != nil {
		return err
	}
	keyword, pin, password := v[0], v[1], v[2]

	var rec createRecord
	defer func() {
		if err == nil {
			return
		}
		if rerr := c.rollback(ctx, &rec); rerr != nil {
			log.Warnf("create user rollback: %v", rerr)
		}
	}()

	c.progress(a, CreatingUserCredentials)
	c.sess.CreateIdentifiers()
	c.sess.SetQuota(DefaultQuota, 0)
	c.progress(a, JoiningNetwork)
	if err := c.ids.CreateUserSysPackets(ctx, keyword, pin); err != nil {
		return err
	}
	rec.identity = true

	c.progress(a, InitialisingClientComponents)
	b, err := c.startVault(ctx, a)
	if err != nil {
		return err
	}
	rec.backend = b

	c.progress(a, VerifyingMount)
	d, err := c.mountDrive(ctx, b)
	if err != nil {
		return err
	}
	rec.drive = d

	c.progress(a, VerifyingUnmount)
	if err := unmountDrive(ctx, d); err != nil {
		return err
	}
	rec.drive = nil

	c.progress(a, StoringUserCredentials)
	current, previous, err := c.sess.SerialisePair()
	if err != nil {
		return err
	}
	if err := c.ids.CreateTmidPacket(ctx, password, current, previous); err != nil {
		return err
	}

	c.backend = b
	c.loggedIn = true
	c.input.Reset()
	log.Infof("created user %s", derive.MidName(keyword, pin).Short())
	return nil
}
