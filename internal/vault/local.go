package vault

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"lifestuff/internal/domain"
	"lifestuff/internal/passport"
	"lifestuff/internal/store"
	"lifestuff/internal/util/memzero"
)

// Local keeps sealed chunks in a directory per Pmid under root.
type Local struct {
	root string

	mu      sync.RWMutex
	chunks  *store.ChunkDir
	stopped bool
}

// NewLocal returns a backend rooted at dir.
func NewLocal(dir string) *Local { return &Local{root: dir} }

// RegisterPmid opens the chunk directory belonging to pmid.
func (l *Local) RegisterPmid(_ context.Context, pmid passport.KeyPair) error {
	if err := checkPmid(pmid); err != nil {
		return err
	}
	key, err := chunkKey(pmid)
	if err != nil {
		return err
	}
	defer memzero.Zero(key)
	dir := filepath.Join(l.root, pmid.Name().Short())
	chunks, err := store.NewChunkDir(dir, key)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return ErrStopped
	}
	l.chunks = chunks
	log.Debugf("local vault at %s", dir)
	return nil
}

func (l *Local) dir(ctx context.Context) (*store.ChunkDir, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	switch {
	case l.stopped:
		return nil, ErrStopped
	case l.chunks == nil:
		return nil, fmt.Errorf("local vault: %w", domain.ErrUninitialised)
	}
	return l.chunks, nil
}

func (l *Local) Store(ctx context.Context, name domain.Identifier, data []byte) error {
	c, err := l.dir(ctx)
	if err != nil {
		return err
	}
	return c.Put(name, data)
}

func (l *Local) Fetch(ctx context.Context, name domain.Identifier) ([]byte, error) {
	c, err := l.dir(ctx)
	if err != nil {
		return nil, err
	}
	return c.Get(name)
}

func (l *Local) Delete(ctx context.Context, name domain.Identifier) error {
	c, err := l.dir(ctx)
	if err != nil {
		return err
	}
	return c.Delete(name)
}

// Stop closes the backend. Chunk files stay on disk.
func (l *Local) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = true
	l.chunks = nil
	return nil
}

var _ Backend = (*Local)(nil)
