package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"lifestuff/internal/domain"
)

const chunkExt = ".chunk"

var errKeySize = errors.New("vault key must be 32 bytes")

// ChunkDir stores sealed chunks as one file per name.
type ChunkDir struct {
	dir string
	key []byte
	mu  sync.Mutex
}

// NewChunkDir creates dir if needed and returns a store sealing under key.
func NewChunkDir(dir string, key []byte) (*ChunkDir, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, errKeySize
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &ChunkDir{dir: dir, key: append([]byte(nil), key...)}, nil
}

// Dir returns the directory chunks live in.
func (c *ChunkDir) Dir() string { return c.dir }

func (c *ChunkDir) path(name domain.Identifier) string {
	return filepath.Join(c.dir, name.String()+chunkExt)
}

// Put seals data and writes it under name, replacing any previous chunk.
func (c *ChunkDir) Put(name domain.Identifier, data []byte) error {
	b, err := seal(c.key, name, data)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := writeFile(c.path(name), b, 0o600); err != nil {
		return err
	}
	log.Tracef("wrote chunk %s (%d bytes)", name.Short(), len(data))
	return nil
}

// Get reads and opens the chunk under name.
func (c *ChunkDir) Get(name domain.Identifier) ([]byte, error) {
	c.mu.Lock()
	b, err := readFile(c.path(name))
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("chunk %s: %w", name.Short(), domain.ErrNotFound)
	}
	return unseal(c.key, name, b)
}

// Has reports whether a chunk exists under name.
func (c *ChunkDir) Has(name domain.Identifier) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := os.Stat(c.path(name))
	return err == nil
}

// Delete removes the chunk under name.
func (c *ChunkDir) Delete(name domain.Identifier) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := os.Remove(c.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("chunk %s: %w", name.Short(), domain.ErrNotFound)
	}
	return err
}
