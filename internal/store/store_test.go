package store_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lifestuff/internal/crypto"
	"lifestuff/internal/domain"
	"lifestuff/internal/store"
)

func openBolt(t *testing.T, path string) *store.Bolt {
	t.Helper()
	s, err := store.OpenBolt(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func TestBolt_PacketRules(t *testing.T) {
	ctx := context.Background()
	s := openBolt(t, filepath.Join(t.TempDir(), "network.db"))
	defer s.Close()

	owner, _, _ := crypto.GenerateEd25519()
	other, _, _ := crypto.GenerateEd25519()
	name := crypto.HashStrings("mid")

	if err := s.Put(ctx, name, crypto.SignPacket(owner, []byte("v1"))); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, name, crypto.SignPacket(owner, []byte("v2"))); err != nil {
		t.Fatalf("owner overwrite: %v", err)
	}
	if err := s.Put(ctx, name, crypto.SignPacket(other, []byte("x"))); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("foreign overwrite: want ErrConflict, got %v", err)
	}

	forged := crypto.SignPacket(owner, []byte("v3"))
	forged.Data = []byte("tampered")
	if err := s.Put(ctx, crypto.HashStrings("forged"), forged); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("forged put: want ErrInvalidSignature, got %v", err)
	}

	got, err := s.Get(ctx, name)
	if err != nil || string(got.Data) != "v2" {
		t.Fatalf("get: %q, %v", got.Data, err)
	}

	if err := s.Delete(ctx, name, crypto.ProveOwnership(other, name)); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("foreign delete: want ErrNotOwner, got %v", err)
	}
	if err := s.Delete(ctx, name, crypto.ProveOwnership(owner, name)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, name); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get after delete: want ErrNotFound, got %v", err)
	}
	if unique, err := s.KeyUnique(ctx, name); err != nil || !unique {
		t.Fatalf("key unique after delete = %v, %v", unique, err)
	}
	if err := s.Delete(ctx, name, crypto.ProveOwnership(owner, name)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestBolt_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "network.db")
	priv, _, _ := crypto.GenerateEd25519()
	name := crypto.HashStrings("tmid")

	s := openBolt(t, path)
	if err := s.Put(ctx, name, crypto.SignPacket(priv, []byte("session"))); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Send(ctx, domain.Message{From: "a", To: "b", Fields: []string{"insert_share"}}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s = openBolt(t, path)
	defer s.Close()
	got, err := s.Get(ctx, name)
	if err != nil || string(got.Data) != "session" {
		t.Fatalf("get after reopen: %q, %v", got.Data, err)
	}
	packets, messages, err := s.Stats()
	if err != nil || packets != 1 || messages != 1 {
		t.Fatalf("stats = %d, %d, %v", packets, messages, err)
	}
}

func TestBolt_MessageQueue(t *testing.T) {
	ctx := context.Background()
	s := openBolt(t, filepath.Join(t.TempDir(), "network.db"))
	defer s.Close()

	for _, tag := range []string{"one", "two", "three"} {
		if err := s.Send(ctx, domain.Message{From: "alice", To: "bob", Fields: []string{tag}}); err != nil {
			t.Fatalf("send %s: %v", tag, err)
		}
	}

	msgs, err := s.Fetch(ctx, "bob", 2)
	if err != nil || len(msgs) != 2 {
		t.Fatalf("fetch: %d, %v", len(msgs), err)
	}
	if msgs[0].Fields[0] != "one" || msgs[1].Fields[0] != "two" {
		t.Fatalf("order = %v, %v", msgs[0].Fields, msgs[1].Fields)
	}
	if msgs[0].Timestamp == 0 {
		t.Fatal("timestamp not stamped")
	}

	if err := s.Ack(ctx, "bob", 1); err != nil {
		t.Fatalf("ack: %v", err)
	}
	msgs, err = s.Fetch(ctx, "bob", 0)
	if err != nil || len(msgs) != 2 || msgs[0].Fields[0] != "two" {
		t.Fatalf("after ack: %v, %v", msgs, err)
	}

	if msgs, _ := s.Fetch(ctx, "carol", 0); len(msgs) != 0 {
		t.Fatalf("empty queue returned %d", len(msgs))
	}
	if err := s.Ack(ctx, "carol", 5); err != nil {
		t.Fatalf("ack on empty queue: %v", err)
	}
}

func TestBolt_CancelledContext(t *testing.T) {
	s := openBolt(t, filepath.Join(t.TempDir(), "network.db"))
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Get(ctx, crypto.HashStrings("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestChunkDir_SealedRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "chunks")
	key := bytes.Repeat([]byte{7}, 32)
	c, err := store.NewChunkDir(dir, key)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	name := crypto.HashStrings("chunk")
	if err := c.Put(name, []byte("plaintext chunk")); err != nil {
		t.Fatalf("put: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, name.String()+".chunk"))
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if bytes.Contains(raw, []byte("plaintext chunk")) {
		t.Fatal("chunk stored in the clear")
	}

	got, err := c.Get(name)
	if err != nil || string(got) != "plaintext chunk" {
		t.Fatalf("get: %q, %v", got, err)
	}

	wrong, _ := store.NewChunkDir(dir, bytes.Repeat([]byte{8}, 32))
	if _, err := wrong.Get(name); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("wrong key: want ErrAuthentication, got %v", err)
	}

	// A chunk copied under another name must not open.
	moved := crypto.HashStrings("moved")
	if err := os.WriteFile(filepath.Join(dir, moved.String()+".chunk"), raw, 0o600); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if _, err := c.Get(moved); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("renamed chunk: want ErrAuthentication, got %v", err)
	}

	if err := c.Delete(name); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if c.Has(name) {
		t.Fatal("chunk still present")
	}
	if _, err := c.Get(name); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get after delete: want ErrNotFound, got %v", err)
	}
	if err := c.Delete(name); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestChunkDir_RejectsShortKey(t *testing.T) {
	if _, err := store.NewChunkDir(t.TempDir(), []byte("short")); err == nil {
		t.Fatal("want error for short key")
	}
}
