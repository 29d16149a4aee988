package drive_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"lifestuff/internal/domain"
	"lifestuff/internal/drive"
)

type memStorage struct {
	mu        sync.Mutex
	chunks    map[domain.Identifier][]byte
	failStore bool
}

func newMemStorage() *memStorage {
	return &memStorage{chunks: make(map[domain.Identifier][]byte)}
}

func (m *memStorage) Store(_ context.Context, name domain.Identifier, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failStore {
		return &domain.NetworkError{Op: "store", Code: domain.CodeTransport}
	}
	m.chunks[name] = append([]byte(nil), data...)
	return nil
}

func (m *memStorage) Fetch(_ context.Context, name domain.Identifier) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.chunks[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestDrive_MountUnmount(t *testing.T) {
	ctx := waitCtx(t)
	storage := newMemStorage()
	mountPath := filepath.Join(t.TempDir(), "drive")

	d := drive.Mount(ctx, drive.Config{Storage: storage, MountPath: mountPath, RootID: "root-1"})
	if err := d.WaitUntilMounted(ctx); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if _, err := os.Stat(d.OwnerPath()); err != nil {
		t.Fatalf("owner dir: %v", err)
	}
	if d.OwnerPath() != filepath.Join(mountPath, drive.OwnerDir) {
		t.Fatalf("owner path = %s", d.OwnerPath())
	}
	if d.Mounts() != 1 {
		t.Fatalf("mounts = %d", d.Mounts())
	}

	d.Unmount()
	d.Unmount()
	if err := d.WaitUntilUnmounted(ctx); err != nil {
		t.Fatalf("unmount: %v", err)
	}
	if _, err := os.Stat(mountPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("mount point left behind: %v", err)
	}

	again := drive.Mount(ctx, drive.Config{Storage: storage, MountPath: mountPath, RootID: "root-1"})
	if err := again.WaitUntilMounted(ctx); err != nil {
		t.Fatalf("remount: %v", err)
	}
	if again.Mounts() != 2 {
		t.Fatalf("mounts after remount = %d", again.Mounts())
	}
	again.Unmount()
	if err := again.WaitUntilUnmounted(ctx); err != nil {
		t.Fatalf("unmount: %v", err)
	}
}

func TestDrive_MountFailureEndsLoop(t *testing.T) {
	ctx := waitCtx(t)
	storage := newMemStorage()
	storage.failStore = true

	d := drive.Mount(ctx, drive.Config{Storage: storage, MountPath: filepath.Join(t.TempDir(), "d"), RootID: "r"})
	if err := d.WaitUntilMounted(ctx); domain.CodeOf(err) != domain.CodeTransport {
		t.Fatalf("mount: want transport error, got %v", err)
	}
	// The loop exits by itself; joining must not need Unmount.
	if err := d.WaitUntilUnmounted(ctx); err != nil {
		t.Fatalf("join after failed mount: %v", err)
	}
}

func TestDrive_RequiresConfig(t *testing.T) {
	ctx := waitCtx(t)
	d := drive.Mount(ctx, drive.Config{MountPath: t.TempDir()})
	if err := d.WaitUntilMounted(ctx); !errors.Is(err, domain.ErrUninitialised) {
		t.Fatalf("want ErrUninitialised, got %v", err)
	}
}

func TestDrive_KeepsUserFiles(t *testing.T) {
	ctx := waitCtx(t)
	mountPath := filepath.Join(t.TempDir(), "drive")
	d := drive.Mount(ctx, drive.Config{Storage: newMemStorage(), MountPath: mountPath, RootID: "r"})
	if err := d.WaitUntilMounted(ctx); err != nil {
		t.Fatalf("mount: %v", err)
	}
	file := filepath.Join(d.OwnerPath(), "notes.txt")
	if err := os.WriteFile(file, []byte("keep me"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	d.Unmount()
	if err := d.WaitUntilUnmounted(ctx); err != nil {
		t.Fatalf("unmount: %v", err)
	}
	if b, err := os.ReadFile(file); err != nil || string(b) != "keep me" {
		t.Fatalf("user file: %q, %v", b, err)
	}
}
