package share_test

import (
	"context"
	"errors"
	"testing"

	"lifestuff/internal/domain"
	"lifestuff/internal/network"
	"lifestuff/internal/services/message"
	"lifestuff/internal/services/share"
)

type world struct {
	store     *network.MemoryStore
	messenger *network.MemoryMessenger
}

func newWorld() world {
	return world{store: network.NewMemoryStore(), messenger: network.NewMemoryMessenger()}
}

func (w world) user(id domain.PublicID) *share.Service {
	return share.New(id, w.store, message.New(w.messenger))
}

func syncAll(t *testing.T, svcs ...*share.Service) {
	t.Helper()
	for _, s := range svcs {
		if _, err := s.Sync(context.Background()); err != nil {
			t.Fatalf("sync: %v", err)
		}
	}
}

func TestCreateShare_MembersGetKeys(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	owner, bob, carol := w.user("owner"), w.user("bob"), w.user("carol")

	rec, err := owner.CreateShare(ctx, "dir", "photos", map[domain.PublicID]share.Rights{
		"bob":   share.Admin,
		"carol": share.ReadOnly,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !w.store.Has(rec.Keys.Name()) {
		t.Fatal("share key packet not published")
	}
	syncAll(t, bob, carol)

	b, ok := bob.KeyRing().Get("dir")
	if !ok || !b.Keys.Admin() || b.Name != "photos" || b.ShareID != rec.ShareID {
		t.Fatalf("bob membership: %+v", b)
	}
	c, ok := carol.KeyRing().Get("dir")
	if !ok || c.Keys.Admin() {
		t.Fatal("carol should hold decrypt keys without the private key")
	}

	sealed, err := owner.Seal("dir", []byte("hello"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if got, err := carol.Open("dir", sealed); err != nil || string(got) != "hello" {
		t.Fatalf("carol open: %q, %v", got, err)
	}
}

func TestSetRights_DowngradeExcludesMember(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	owner, bob, carol := w.user("owner"), w.user("bob"), w.user("carol")

	first, err := owner.CreateShare(ctx, "dir", "docs", map[domain.PublicID]share.Rights{
		"bob":   share.Admin,
		"carol": share.ReadOnly,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	syncAll(t, bob, carol)
	sentBefore := len(w.messenger.Sent())

	rotated, err := owner.SetRights(ctx, "dir", "bob", share.ReadOnly)
	if err != nil {
		t.Fatalf("downgrade: %v", err)
	}
	if rotated.ShareID == first.ShareID || rotated.Keys.Name() == first.Keys.Name() {
		t.Fatal("downgrade did not rotate the share")
	}
	if w.store.Has(first.Keys.Name()) {
		t.Fatal("old share key packet not deleted")
	}
	for _, msg := range w.messenger.Sent()[sentBefore:] {
		if msg.To == "bob" {
			t.Fatalf("downgraded member received %v", msg.Fields)
		}
	}

	syncAll(t, bob, carol)
	sealed, _ := owner.Seal("dir", []byte("after rotation"))
	if _, err := bob.Open("dir", sealed); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("bob's old key opened new content: %v", err)
	}
	if got, err := carol.Open("dir", sealed); err != nil || string(got) != "after rotation" {
		t.Fatalf("carol open: %q, %v", got, err)
	}
}

func TestSetRights_UpgradeKeepsKeys(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	owner, carol := w.user("owner"), w.user("carol")

	first, _ := owner.CreateShare(ctx, "dir", "docs", map[domain.PublicID]share.Rights{"carol": share.ReadOnly})
	syncAll(t, carol)

	rec, err := owner.SetRights(ctx, "dir", "carol", share.Admin)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if rec.ShareID != first.ShareID {
		t.Fatal("upgrade rotated the share")
	}
	syncAll(t, carol)
	c, _ := carol.KeyRing().Get("dir")
	if !c.Keys.Admin() || c.Keys.SigningPublic != first.Keys.SigningPublic {
		t.Fatal("carol did not receive the existing admin key")
	}
}

func TestRemoveMember_And_Leave(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	owner, bob, carol := w.user("owner"), w.user("bob"), w.user("carol")

	_, _ = owner.CreateShare(ctx, "dir", "docs", map[domain.PublicID]share.Rights{
		"bob":   share.ReadOnly,
		"carol": share.ReadOnly,
	})
	syncAll(t, bob, carol)

	if _, err := owner.RemoveMember(ctx, "dir", "bob"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	syncAll(t, bob)
	if _, ok := bob.KeyRing().Get("dir"); ok {
		t.Fatal("bob kept membership after remove_share")
	}

	syncAll(t, carol)
	before, _ := owner.Registry().Get("dir")
	if err := carol.Leave(ctx, "dir"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	syncAll(t, owner)
	after, _ := owner.Registry().Get("dir")
	if _, still := after.Members["carol"]; still {
		t.Fatal("carol still a member after leaving")
	}
	if after.ShareID == before.ShareID {
		t.Fatal("leave did not rotate the share")
	}
	if _, err := owner.RemoveMember(ctx, "dir", "carol"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestHandleMessage_RejectsForgedKeys(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	owner, bob := w.user("owner"), w.user("bob")
	_, _ = owner.CreateShare(ctx, "dir", "docs", map[domain.PublicID]share.Rights{"bob": share.ReadOnly})

	msgs, _ := w.messenger.Fetch(ctx, "bob", 0)
	m, err := message.ParseShare(msgs[0].Fields)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m.DirectoryID = "other"
	if err := bob.HandleMessage(ctx, "owner", m); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("want ErrAuthentication, got %v", err)
	}
}

func TestHandleMessage_IgnoresOtherSenders(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	owner, carol, mallory := w.user("owner"), w.user("carol"), w.user("mallory")

	rec, err := owner.CreateShare(ctx, "dir", "docs", map[domain.PublicID]share.Rights{"carol": share.ReadOnly})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	syncAll(t, carol)

	// mallory runs her own share under the same directory id: carol gets
	// insert_share, then update_share, then remove_share from her.
	if _, err := mallory.CreateShare(ctx, "dir", "evil", map[domain.PublicID]share.Rights{"carol": share.Admin}); err != nil {
		t.Fatalf("mallory create: %v", err)
	}
	if _, err := mallory.AddMember(ctx, "dir", "dave", share.ReadOnly); err != nil {
		t.Fatalf("mallory add: %v", err)
	}
	if err := mallory.DeleteShare(ctx, "dir"); err != nil {
		t.Fatalf("mallory delete: %v", err)
	}
	syncAll(t, carol)

	got, ok := carol.KeyRing().Get("dir")
	if !ok {
		t.Fatal("remove_share from a stranger dropped the membership")
	}
	if got.From != "owner" || got.Name != "docs" || got.ShareID != rec.ShareID {
		t.Fatalf("stranger replaced the membership: %+v", got)
	}
	sealed, _ := owner.Seal("dir", []byte("still mine"))
	if plain, err := carol.Open("dir", sealed); err != nil || string(plain) != "still mine" {
		t.Fatalf("carol open: %q, %v", plain, err)
	}
}

func TestState_RestoreKeepsRecordsAndMemberships(t *testing.T) {
	ctx := context.Background()
	w := newWorld()
	owner, carol := w.user("owner"), w.user("carol")

	rec, err := owner.CreateShare(ctx, "dir", "docs", map[domain.PublicID]share.Rights{"carol": share.ReadOnly})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	syncAll(t, carol)
	sealed, _ := owner.Seal("dir", []byte("kept"))

	ownerState, err := owner.MarshalState()
	if err != nil {
		t.Fatalf("marshal owner: %v", err)
	}
	carolState, err := carol.MarshalState()
	if err != nil {
		t.Fatalf("marshal carol: %v", err)
	}

	owner2, carol2 := w.user("owner"), w.user("carol")
	if err := owner2.RestoreState(ownerState); err != nil {
		t.Fatalf("restore owner: %v", err)
	}
	if err := carol2.RestoreState(carolState); err != nil {
		t.Fatalf("restore carol: %v", err)
	}
	if got, err := carol2.Open("dir", sealed); err != nil || string(got) != "kept" {
		t.Fatalf("restored member open: %q, %v", got, err)
	}
	if list := carol2.KeyRing().List(); len(list) != 1 || list[0].ShareID != rec.ShareID {
		t.Fatalf("restored memberships: %+v", list)
	}

	// The restored owner can still rotate, and the member follows.
	if _, err := owner2.AddMember(ctx, "dir", "dave", share.ReadOnly); err != nil {
		t.Fatalf("rotate after restore: %v", err)
	}
	syncAll(t, carol2)
	sealed, _ = owner2.Seal("dir", []byte("rotated"))
	if got, err := carol2.Open("dir", sealed); err != nil || string(got) != "rotated" {
		t.Fatalf("member after rotation: %q, %v", got, err)
	}

	if err := owner2.RestoreState([]byte(`{"records":[{"DirectoryID":""}]}`)); !errors.Is(err, domain.ErrMalformedPacket) {
		t.Fatalf("bad state: want ErrMalformedPacket, got %v", err)
	}
}

func TestParseRights(t *testing.T) {
	for in, want := range map[string]share.Rights{"admin": share.Admin, "read_only": share.ReadOnly, "": share.ReadOnly} {
		if got, err := share.ParseRights(in); err != nil || got != want {
			t.Fatalf("ParseRights(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := share.ParseRights("owner"); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("want ErrInvalidParameter, got %v", err)
	}
}
