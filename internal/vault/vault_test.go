package vault_test

import (
	"context"
	"errors"
	"testing"

	"lifestuff/internal/crypto"
	"lifestuff/internal/domain"
	"lifestuff/internal/network"
	"lifestuff/internal/passport"
	"lifestuff/internal/services/fob"
	"lifestuff/internal/vault"
)

func newPassport(t *testing.T, store domain.PacketStore) *passport.Passport {
	t.Helper()
	pp := passport.New()
	if err := pp.CreateSigningPackets(); err != nil {
		t.Fatalf("create keys: %v", err)
	}
	if store != nil {
		if err := fob.New(store).Publish(context.Background(), pp, false); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	if err := pp.ConfirmSigningPackets(); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	return pp
}

func pmidOf(t *testing.T, pp *passport.Passport) passport.KeyPair {
	t.Helper()
	k, err := pp.Key(passport.Pmid, true)
	if err != nil {
		t.Fatalf("pmid: %v", err)
	}
	return k
}

func exercise(t *testing.T, b vault.Backend) {
	t.Helper()
	ctx := context.Background()
	name := crypto.HashStrings("chunk", "1")

	if err := b.Store(ctx, name, []byte("content")); err != nil {
		t.Fatalf("store: %v", err)
	}
	got, err := b.Fetch(ctx, name)
	if err != nil || string(got) != "content" {
		t.Fatalf("fetch: %q, %v", got, err)
	}
	if err := b.Store(ctx, name, []byte("content v2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _ := b.Fetch(ctx, name); string(got) != "content v2" {
		t.Fatalf("fetch after overwrite: %q", got)
	}
	if err := b.Delete(ctx, name); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := b.Fetch(ctx, name); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("fetch after delete: want ErrNotFound, got %v", err)
	}

	if err := b.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := b.Store(ctx, name, []byte("late")); !errors.Is(err, vault.ErrStopped) {
		t.Fatalf("store after stop: want ErrStopped, got %v", err)
	}
}

func TestNetwork_RoundTrip(t *testing.T) {
	store := network.NewMemoryStore()
	pp := newPassport(t, store)

	b := vault.NewNetwork(store)
	if err := b.Store(context.Background(), crypto.HashStrings("x"), nil); !errors.Is(err, domain.ErrUninitialised) {
		t.Fatalf("store before register: want ErrUninitialised, got %v", err)
	}
	if err := b.RegisterPmid(context.Background(), pmidOf(t, pp)); err != nil {
		t.Fatalf("register: %v", err)
	}
	exercise(t, b)
}

func TestNetwork_ChunksAreSealedAndOwned(t *testing.T) {
	ctx := context.Background()
	store := network.NewMemoryStore()
	alice := newPassport(t, store)
	bob := newPassport(t, store)

	a := vault.NewNetwork(store)
	if err := a.RegisterPmid(ctx, pmidOf(t, alice)); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	b := vault.NewNetwork(store)
	if err := b.RegisterPmid(ctx, pmidOf(t, bob)); err != nil {
		t.Fatalf("register bob: %v", err)
	}

	name := crypto.HashStrings("alice", "chunk")
	if err := a.Store(ctx, name, []byte("private")); err != nil {
		t.Fatalf("store: %v", err)
	}
	raw, _ := store.Get(ctx, name)
	if string(raw.Data) == "private" {
		t.Fatal("chunk stored in the clear")
	}
	if _, err := b.Fetch(ctx, name); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("foreign fetch: want ErrAuthentication, got %v", err)
	}
	if err := b.Store(ctx, name, []byte("hijack")); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("foreign store: want ErrConflict, got %v", err)
	}
	if err := b.Delete(ctx, name); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("foreign delete: want ErrNotOwner, got %v", err)
	}
}

func TestNetwork_RegisterNeedsPublishedPmid(t *testing.T) {
	ctx := context.Background()
	store := network.NewMemoryStore()
	pp := newPassport(t, nil)

	b := vault.NewNetwork(store)
	if err := b.RegisterPmid(ctx, pmidOf(t, pp)); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unpublished pmid: want ErrNotFound, got %v", err)
	}
	maid, _ := pp.Key(passport.Maid, true)
	if err := b.RegisterPmid(ctx, maid); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("maid as pmid: want ErrInvalidParameter, got %v", err)
	}
}

func TestLocal_RoundTrip(t *testing.T) {
	pp := newPassport(t, nil)
	b := vault.NewLocal(t.TempDir())
	if _, err := b.Fetch(context.Background(), crypto.HashStrings("x")); !errors.Is(err, domain.ErrUninitialised) {
		t.Fatalf("fetch before register: want ErrUninitialised, got %v", err)
	}
	if err := b.RegisterPmid(context.Background(), pmidOf(t, pp)); err != nil {
		t.Fatalf("register: %v", err)
	}
	exercise(t, b)
}

func TestLocal_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	pp := newPassport(t, nil)
	name := crypto.HashStrings("persist")

	first := vault.NewLocal(dir)
	if err := first.RegisterPmid(ctx, pmidOf(t, pp)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := first.Store(ctx, name, []byte("kept")); err != nil {
		t.Fatalf("store: %v", err)
	}
	_ = first.Stop()

	second := vault.NewLocal(dir)
	if err := second.RegisterPmid(ctx, pmidOf(t, pp)); err != nil {
		t.Fatalf("register again: %v", err)
	}
	if got, err := second.Fetch(ctx, name); err != nil || string(got) != "kept" {
		t.Fatalf("fetch after restart: %q, %v", got, err)
	}
}

func TestNew_SelectsKind(t *testing.T) {
	if _, err := vault.ParseKind("nfs"); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("unknown kind: want ErrInvalidParameter, got %v", err)
	}
	b, err := vault.New(vault.KindLocal, nil, t.TempDir())
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	if _, ok := b.(*vault.Local); !ok {
		t.Fatalf("got %T, want *vault.Local", b)
	}
	b, err = vault.New(vault.KindNetwork, network.NewMemoryStore(), "")
	if err != nil {
		t.Fatalf("new network: %v", err)
	}
	if _, ok := b.(*vault.Network); !ok {
		t.Fatalf("got %T, want *vault.Network", b)
	}
}
