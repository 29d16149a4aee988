package client

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"lifestuff/internal/crypto"
	"lifestuff/internal/derive"
	"lifestuff/internal/domain"
	"lifestuff/internal/drive"
	"lifestuff/internal/input"
	"lifestuff/internal/passport"
	"lifestuff/internal/services/fob"
	"lifestuff/internal/services/identity"
	"lifestuff/internal/session"
	"lifestuff/internal/vault"
)

// DefaultQuota is the storage quota a new account starts with.
const DefaultQuota int64 = 1 << 30

// Config holds what a Client is built from.
type Config struct {
	Store     domain.PacketStore
	Backend   vault.Kind
	VaultDir  string // chunk directory root for vault.KindLocal
	MountRoot string // drives mount at MountRoot/<unique user id>
	KDF       crypto.KDFParams
	Progress  Progress
}

// Client is the orchestration facade for one user at a time.
type Client struct {
	mu  sync.Mutex
	cfg Config

	input *input.State
	sess  *session.Session
	fobs  *fob.Service
	ids   *identity.Service

	backend  vault.Backend
	drive    *drive.Drive
	loggedIn bool
}

// New returns a logged out client.
func New(cfg Config) (*Client, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("client: no network store: %w", domain.ErrUninitialised)
	}
	if cfg.Backend == "" {
		cfg.Backend = vault.KindNetwork
	}
	if _, err := vault.ParseKind(string(cfg.Backend)); err != nil {
		return nil, err
	}
	if cfg.Progress == nil {
		cfg.Progress = func(Action, ProgressCode) {}
	}
	if cfg.KDF == (crypto.KDFParams{}) {
		cfg.KDF = crypto.DefaultKDF
	}

	sess := session.New()
	fobs := fob.New(cfg.Store)
	in := input.NewState()
	in.SetPasswordChecker(sess.PasswordMatches)
	return &Client{
		cfg:   cfg,
		input: in,
		sess:  sess,
		fobs:  fobs,
		ids:   identity.New(cfg.Store, fobs, derive.New(cfg.KDF), sess),
	}, nil
}

// InsertUserInput inserts text into field at character position pos.
func (c *Client) InsertUserInput(field input.Field, pos int, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input.Insert(field, pos, text)
}

// RemoveUserInput removes n characters of field starting at pos.
func (c *Client) RemoveUserInput(field input.Field, pos, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input.Remove(field, pos, n)
}

// ClearUserInput empties field.
func (c *Client) ClearUserInput(field input.Field) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input.Clear(field)
}

// ConfirmUserInput finalises and validates field.
func (c *Client) ConfirmUserInput(field input.Field) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input.Confirm(field)
}

// secrets returns the confirmed values of fields, in order.
func (c *Client) secrets(fields ...input.Field) ([]string, error) {
	out := make([]string, len(fields))
	for i, f := range fields {
		v, err := c.input.Value(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// UserExists probes the network for an account under the confirmed keyword
// and pin.
func (c *Client) UserExists(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := c.secrets(input.Keyword, input.Pin)
	if err != nil {
		return false, err
	}
	exists, err := c.ids.GetUserInfo(ctx, v[0], v[1])
	return exists == identity.UserExists, err
}

// LoggedIn reports whether a user is logged in.
func (c *Client) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loggedIn
}

// Session returns the session of the logged-in user.
func (c *Client) Session() *session.Session { return c.sess }

// MountPath returns where the drive is mounted, or "" if it is not.
func (c *Client) MountPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drive == nil {
		return ""
	}
	return c.drive.MountPath()
}

// OwnerPath returns the user's own directory on the mounted drive, or "".
func (c *Client) OwnerPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drive == nil {
		return ""
	}
	return c.drive.OwnerPath()
}

func (c *Client) progress(a Action, p ProgressCode) {
	log.Debugf("%v: %v", a, p)
	c.cfg.Progress(a, p)
}

func (c *Client) mountPath() string {
	return filepath.Join(c.cfg.MountRoot, c.sess.UniqueUserID())
}

// startVault builds the configured backend and binds it to the confirmed Pmid.
func (c *Client) startVault(ctx context.Context, a Action) (vault.Backend, error) {
	c.progress(a, CreatingVault)
	b, err := vault.New(c.cfg.Backend, c.cfg.Store, c.cfg.VaultDir)
	if err != nil {
		return nil, err
	}
	c.progress(a, StartingVault)
	pmid, err := c.sess.Passport().Key(passport.Pmid, true)
	if err != nil {
		_ = b.Stop()
		return nil, err
	}
	if err := b.RegisterPmid(ctx, pmid); err != nil {
		_ = b.Stop()
		return nil, err
	}
	return b, nil
}

// mountDrive mounts the session's root and waits for it.
func (c *Client) mountDrive(ctx context.Context, storage drive.Storage) (*drive.Drive, error) {
	d := drive.Mount(ctx, drive.Config{
		Storage:   storage,
		MountPath: c.mountPath(),
		RootID:    c.sess.RootParentID(),
	})
	if err := d.WaitUntilMounted(ctx); err != nil {
		d.Unmount()
		_ = d.WaitUntilUnmounted(context.WithoutCancel(ctx))
		return nil, err
	}
	return d, nil
}

func unmountDrive(ctx context.Context, d *drive.Drive) error {
	d.Unmount()
	return d.WaitUntilUnmounted(ctx)
}

// LogIn retrieves the session for the confirmed keyword, pin and password
// and starts the vault. Nothing is rolled back on failure because nothing
// was created; the local state is discarded.
func (c *Client) LogIn(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	const a = ActionLogIn
	if c.loggedIn {
		return fmt.Errorf("log in: %w", domain.ErrInvalidState)
	}

	c.progress(a, InitialiseProcess)
	c.progress(a, ConfirmingUserInput)
	v, err := c.secrets(input.Keyword, input.Pin, input.Password)
	if err != nil {
		return err
	}
	keyword, pin, password := v[0], v[1], v[2]

	c.progress(a, JoiningNetwork)
	exists, err := c.ids.GetUserInfo(ctx, keyword, pin)
	if err != nil {
		return err
	}
	if exists != identity.UserExists {
		return domain.ErrUserDoesNotExist
	}

	c.progress(a, RetrievingUserCredentials)
	if err := c.ids.ValidateUser(ctx, keyword, pin, password); err != nil {
		c.sess.Reset()
		return err
	}

	c.progress(a, InitialisingClientComponents)
	b, err := c.startVault(ctx, a)
	if err != nil {
		c.ids.LogOut()
		c.sess.Reset()
		return err
	}

	c.backend = b
	c.loggedIn = true
	c.input.Reset()
	log.Infof("logged in %s", derive.MidName(keyword, pin).Short())
	return nil
}

// MountDrive mounts the logged-in user's drive.
func (c *Client) MountDrive(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loggedIn {
		return fmt.Errorf("mount drive: %w", domain.ErrInvalidState)
	}
	if c.drive != nil {
		return nil
	}
	d, err := c.mountDrive(ctx, c.backend)
	if err != nil {
		return err
	}
	c.drive = d
	return nil
}

// UnMountDrive unmounts the drive and joins its loop.
func (c *Client) UnMountDrive(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unmount(ctx)
}

func (c *Client) unmount(ctx context.Context) error {
	if c.drive == nil {
		return nil
	}
	err := unmountDrive(ctx, c.drive)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	c.drive = nil
	return err
}

// SaveSession writes the current session as a new Tmid.
func (c *Client) SaveSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loggedIn {
		return fmt.Errorf("save session: %w", domain.ErrInvalidState)
	}
	return c.ids.SaveSession(ctx)
}

// LogOut unmounts the drive, stops the vault and wipes the session. Unsaved
// session changes are lost.
func (c *Client) LogOut(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loggedIn {
		return nil
	}
	if err := c.unmount(ctx); err != nil {
		return err
	}
	c.teardown()
	return nil
}

func (c *Client) teardown() {
	if c.backend != nil {
		if err := c.backend.Stop(); err != nil {
			log.Warnf("stop vault: %v", err)
		}
		c.backend = nil
	}
	c.ids.LogOut()
	c.sess.Reset()
	c.input.Reset()
	c.loggedIn = false
}
