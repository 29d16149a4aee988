package app

import (
	"errors"
	"fmt"

	"lifestuff/internal/client"
	"lifestuff/internal/domain"
	"lifestuff/internal/network"
	"lifestuff/internal/relay"
	messagesvc "lifestuff/internal/services/message"
	"lifestuff/internal/store"
	"lifestuff/internal/vault"
)

// Wire bundles the stores, services and clients for the CLI.
type Wire struct {
	Relay    domain.RelayClient // relay over HTTP, or the local bolt file
	Store    domain.PacketStore // Relay behind the worker pool
	Messages *messagesvc.Service
	Client   *client.Client

	home       string
	dispatcher *network.Dispatcher
	closers    []func() error
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, progress client.Progress) (*Wire, error) {
	cfg = cfg.withDefaults()
	kdf, err := cfg.KDFParams()
	if err != nil {
		return nil, err
	}
	kind, err := vault.ParseKind(cfg.Backend)
	if err != nil {
		return nil, err
	}

	w := &Wire{home: cfg.Home}

	// Relay client, or a local network file standing in for one
	if cfg.RelayURL != "" {
		rc := relay.NewHTTP(cfg.RelayURL)
		rc.HTTP = cfg.HTTP
		w.Relay = rc
	} else {
		db, err := store.OpenBolt(cfg.NetworkFile())
		if err != nil {
			return nil, err
		}
		w.Relay = db
		w.closers = append(w.closers, db.Close)
	}

	// Asynchronous network client
	w.dispatcher = network.NewDispatcher(w.Relay, cfg.Workers)
	w.Store = network.NewClient(w.dispatcher, cfg.ReadRetries)

	// High-level services
	w.Messages = messagesvc.New(w.Relay)
	w.Client, err = client.New(client.Config{
		Store:     w.Store,
		Backend:   kind,
		VaultDir:  cfg.VaultDir(),
		MountRoot: cfg.MountRoot(),
		KDF:       kdf,
		Progress:  progress,
	})
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("client: %w", err)
	}
	return w, nil
}

// Close stops the worker pool and releases the local network file.
func (w *Wire) Close() error {
	if w.dispatcher != nil {
		w.dispatcher.Stop()
		w.dispatcher = nil
	}
	var errs []error
	for i := len(w.closers) - 1; i >= 0; i-- {
		errs = append(errs, w.closers[i]())
	}
	w.closers = nil
	return errors.Join(errs...)
}
