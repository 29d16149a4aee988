package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"lifestuff/internal/crypto"
	"lifestuff/internal/domain"
)

// OwnerDir is the directory under the mount point holding the user's own files.
const OwnerDir = "Owner"

// Storage is the part of a vault backend the drive needs.
type Storage interface {
	Store(ctx context.Context, name domain.Identifier, data []byte) error
	Fetch(ctx context.Context, name domain.Identifier) ([]byte, error)
}

// Config describes one mount.
type Config struct {
	Storage   Storage
	MountPath string
	RootID    string // root parent id of the session
}

// rootRecord is the root directory entry kept in storage.
type rootRecord struct {
	RootID    string `json:"root_id"`
	Mounts    uint64 `json:"mounts"`
	MountedAt int64  `json:"mounted_at"`
}

// RootName returns the storage name of the root record for rootID.
func RootName(rootID string) domain.Identifier {
	return crypto.HashStrings("lifestuff/drive-root", rootID)
}

// Drive is a mounted filesystem handle.
type Drive struct {
	cfg Config

	mounted chan struct{}
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once

	mu       sync.Mutex
	mountErr error
	err      error
	record   rootRecord
}

// Mount starts the mount loop. ctx bounds the mount itself, not the life of
// the drive.
func Mount(ctx context.Context, cfg Config) *Drive {
	d := &Drive{
		cfg:     cfg,
		mounted: make(chan struct{}),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go d.loop(ctx)
	return d
}

func (d *Drive) loop(ctx context.Context) {
	defer close(d.done)

	rec, err := d.mount(ctx)
	d.mu.Lock()
	d.mountErr = err
	d.record = rec
	d.mu.Unlock()
	close(d.mounted)
	if err != nil {
		log.Errorf("mount %s: %v", d.cfg.MountPath, err)
		return
	}
	log.Infof("mounted %s (mount %d)", d.cfg.MountPath, rec.Mounts)

	<-d.stop

	err = d.unmount(rec)
	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
	if err != nil {
		log.Warnf("unmount %s: %v", d.cfg.MountPath, err)
		return
	}
	log.Infof("unmounted %s", d.cfg.MountPath)
}

func (d *Drive) mount(ctx context.Context) (rootRecord, error) {
	if d.cfg.Storage == nil || d.cfg.MountPath == "" || d.cfg.RootID == "" {
		return rootRecord{}, fmt.Errorf("mount: %w", domain.ErrUninitialised)
	}
	rec := rootRecord{RootID: d.cfg.RootID}
	name := RootName(d.cfg.RootID)
	b, err := d.cfg.Storage.Fetch(ctx, name)
	switch {
	case err == nil:
		if err := json.Unmarshal(b, &rec); err != nil {
			return rootRecord{}, fmt.Errorf("root record: %w", domain.ErrMalformedPacket)
		}
		if rec.RootID != d.cfg.RootID {
			return rootRecord{}, fmt.Errorf("root record for %q: %w", rec.RootID, domain.ErrAuthentication)
		}
	case errors.Is(err, domain.ErrNotFound):
	default:
		return rootRecord{}, err
	}

	rec.Mounts++
	rec.MountedAt = time.Now().UnixMicro()
	b, err = json.Marshal(rec)
	if err != nil {
		return rootRecord{}, err
	}
	if err := d.cfg.Storage.Store(ctx, name, b); err != nil {
		return rootRecord{}, err
	}
	if err := os.MkdirAll(filepath.Join(d.cfg.MountPath, OwnerDir), 0o700); err != nil {
		return rootRecord{}, err
	}
	return rec, nil
}

// unmount checks the root record is still readable and removes the mount
// point. Files under it are the user's and are left alone.
func (d *Drive) unmount(rec rootRecord) error {
	ctx := context.Background()
	b, err := d.cfg.Storage.Fetch(ctx, RootName(rec.RootID))
	if err != nil {
		return err
	}
	var got rootRecord
	if err := json.Unmarshal(b, &got); err != nil || got.Mounts != rec.Mounts {
		return fmt.Errorf("root record changed while mounted: %w", domain.ErrConflict)
	}
	if err := os.Remove(filepath.Join(d.cfg.MountPath, OwnerDir)); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Debugf("keep %s: %v", OwnerDir, err)
		return nil
	}
	if err := os.Remove(d.cfg.MountPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Debugf("keep %s: %v", d.cfg.MountPath, err)
	}
	return nil
}

// WaitUntilMounted blocks until the mount finished and returns its error.
func (d *Drive) WaitUntilMounted(ctx context.Context) error {
	select {
	case <-d.mounted:
	case <-ctx.Done():
		return ctx.Err()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mountErr
}

// Unmount asks the mount loop to exit. It is safe to call more than once.
func (d *Drive) Unmount() {
	d.once.Do(func() { close(d.stop) })
}

// WaitUntilUnmounted joins the mount loop and returns the unmount error.
func (d *Drive) WaitUntilUnmounted(ctx context.Context) error {
	select {
	case <-d.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mountErr != nil {
		return nil
	}
	return d.err
}

// Mounts returns how many times the root has been mounted, including this one.
func (d *Drive) Mounts() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.record.Mounts
}

// MountPath returns the mount point.
func (d *Drive) MountPath() string { return d.cfg.MountPath }

// OwnerPath returns the user's own directory under the mount point.
func (d *Drive) OwnerPath() string { return filepath.Join(d.cfg.MountPath, OwnerDir) }
