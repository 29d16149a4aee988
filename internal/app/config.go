package app

import (
	"fmt"
	"net/http"
	"path/filepath"

	"lifestuff/internal/crypto"
	"lifestuff/internal/domain"
	"lifestuff/internal/network"
	"lifestuff/internal/vault"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home        string       // data directory, e.g. $HOME/.lifestuff
	RelayURL    string       // relay base URL; empty uses <Home>/network.db
	HTTP        *http.Client // optional; defaults to http.DefaultClient
	Backend     string       // vault backend: network or local
	Workers     int          // network worker pool size
	ReadRetries int          // retries for idempotent network reads
	KDF         string       // default or interactive
}

// Defaults for unset Config fields.
const (
	DefaultWorkers = 4
	DefaultBackend = string(vault.KindNetwork)
	DefaultKDF     = "default"
)

func (c Config) withDefaults() Config {
	if c.HTTP == nil {
		c.HTTP = http.DefaultClient
	}
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.ReadRetries < 0 {
		c.ReadRetries = network.DefaultReadRetries
	}
	if c.KDF == "" {
		c.KDF = DefaultKDF
	}
	return c
}

// KDFParams resolves the KDF profile name.
func (c Config) KDFParams() (crypto.KDFParams, error) {
	switch c.KDF {
	case "", "default":
		return crypto.DefaultKDF, nil
	case "interactive":
		return crypto.InteractiveKDF, nil
	default:
		return crypto.KDFParams{}, fmt.Errorf("kdf %q: %w", c.KDF, domain.ErrInvalidParameter)
	}
}

// NetworkFile is the bolt database used when no relay is configured.
func (c Config) NetworkFile() string { return filepath.Join(c.Home, "network.db") }

// VaultDir is where the local vault backend keeps chunks.
func (c Config) VaultDir() string { return filepath.Join(c.Home, "vault") }

// MountRoot is where drives are mounted.
func (c Config) MountRoot() string { return filepath.Join(c.Home, "drive") }
