package relay_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"lifestuff/internal/crypto"
	"lifestuff/internal/domain"
	"lifestuff/internal/network"
	"lifestuff/internal/relay"
	"lifestuff/internal/store"
)

type memoryRelay struct {
	*network.MemoryStore
	*network.MemoryMessenger
}

func newRelay(t *testing.T, backend domain.RelayClient) *relay.HTTP {
	t.Helper()
	srv := httptest.NewServer(relay.NewHandler(backend))
	t.Cleanup(srv.Close)
	c := relay.NewHTTP(srv.URL)
	c.HTTP = srv.Client()
	return c
}

func TestHTTP_PacketOutcomes(t *testing.T) {
	ctx := context.Background()
	c := newRelay(t, memoryRelay{network.NewMemoryStore(), network.NewMemoryMessenger()})

	owner, _, _ := crypto.GenerateEd25519()
	other, _, _ := crypto.GenerateEd25519()
	name := crypto.HashStrings("smid")

	if unique, err := c.KeyUnique(ctx, name); err != nil || !unique {
		t.Fatalf("key unique before put = %v, %v", unique, err)
	}
	if err := c.Put(ctx, name, crypto.SignPacket(owner, []byte("v1"))); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := c.Get(ctx, name)
	if err != nil || string(got.Data) != "v1" || !crypto.VerifyPacket(got) {
		t.Fatalf("get: %q, %v", got.Data, err)
	}
	if err := c.Put(ctx, name, crypto.SignPacket(other, []byte("v2"))); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("foreign put: want ErrConflict, got %v", err)
	}
	forged := crypto.SignPacket(owner, []byte("v2"))
	forged.Data = []byte("v3")
	if err := c.Put(ctx, name, forged); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("forged put: want ErrInvalidSignature, got %v", err)
	}
	if err := c.Delete(ctx, name, crypto.ProveOwnership(other, name)); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("foreign delete: want ErrNotOwner, got %v", err)
	}
	if err := c.Delete(ctx, name, crypto.ProveOwnership(owner, name)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Get(ctx, name); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get after delete: want ErrNotFound, got %v", err)
	}
}

func TestHTTP_Messages(t *testing.T) {
	ctx := context.Background()
	backend, err := store.OpenBolt(filepath.Join(t.TempDir(), "relay.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer backend.Close()
	c := newRelay(t, backend)

	for _, tag := range []string{"insert_share", "remove_share"} {
		msg := domain.Message{From: "alice", To: "bob smith", Fields: []string{tag, "id"}}
		if err := c.Send(ctx, msg); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	msgs, err := c.Fetch(ctx, "bob smith", 1)
	if err != nil || len(msgs) != 1 || msgs[0].Fields[0] != "insert_share" {
		t.Fatalf("fetch: %v, %v", msgs, err)
	}
	if msgs[0].From != "alice" || msgs[0].To != "bob smith" {
		t.Fatalf("addressing = %q -> %q", msgs[0].From, msgs[0].To)
	}
	if err := c.Ack(ctx, "bob smith", 1); err != nil {
		t.Fatalf("ack: %v", err)
	}
	msgs, err = c.Fetch(ctx, "bob smith", 0)
	if err != nil || len(msgs) != 1 || msgs[0].Fields[0] != "remove_share" {
		t.Fatalf("after ack: %v, %v", msgs, err)
	}
	if msgs, err := c.Fetch(ctx, "nobody", 0); err != nil || len(msgs) != 0 {
		t.Fatalf("empty fetch: %v, %v", msgs, err)
	}
}

func TestHTTP_UnreachableIsTransport(t *testing.T) {
	srv := httptest.NewServer(relay.NewHandler(memoryRelay{network.NewMemoryStore(), network.NewMemoryMessenger()}))
	url := srv.URL
	srv.Close()

	c := relay.NewHTTP(url)
	_, err := c.Get(context.Background(), crypto.HashStrings("x"))
	if domain.CodeOf(err) != domain.CodeTransport {
		t.Fatalf("code = %d (%v), want transport", domain.CodeOf(err), err)
	}
}
