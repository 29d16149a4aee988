package app_test

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"lifestuff/internal/app"
	"lifestuff/internal/client"
	"lifestuff/internal/domain"
	"lifestuff/internal/input"
	"lifestuff/internal/relay"
	sharesvc "lifestuff/internal/services/share"
	"lifestuff/internal/store"
)

func enter(t *testing.T, c *client.Client, field input.Field, text string) {
	t.Helper()
	if err := c.InsertUserInput(field, 0, text); err != nil {
		t.Fatalf("insert %v: %v", field, err)
	}
	if err := c.ConfirmUserInput(field); err != nil {
		t.Fatalf("confirm %v: %v", field, err)
	}
}

func login(t *testing.T, c *client.Client) {
	t.Helper()
	enter(t, c, input.Keyword, "alice")
	enter(t, c, input.Pin, "1234")
	enter(t, c, input.Password, "secret")
}

func TestWire_LocalNetworkFilePersists(t *testing.T) {
	ctx := context.Background()
	cfg := app.Config{Home: t.TempDir(), KDF: "interactive", Backend: "local"}

	w, err := app.NewWire(cfg, nil)
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	login(t, w.Client)
	if err := w.Client.CreateUser(ctx); err != nil {
		t.Fatalf("create: %v", err)
	}
	uid := w.Client.Session().UniqueUserID()
	if err := w.Client.LogOut(ctx); err != nil {
		t.Fatalf("log out: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	w, err = app.NewWire(cfg, nil)
	if err != nil {
		t.Fatalf("rewire: %v", err)
	}
	defer w.Close()
	login(t, w.Client)
	if err := w.Client.LogIn(ctx); err != nil {
		t.Fatalf("log in after restart: %v", err)
	}
	if w.Client.Session().UniqueUserID() != uid {
		t.Fatal("different session after restart")
	}
}

func TestWire_SharesPersistAcrossRestart(t *testing.T) {
	ctx := context.Background()
	cfg := app.Config{Home: t.TempDir(), KDF: "interactive"}

	w, err := app.NewWire(cfg, nil)
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	if _, err := w.Shares("alice"); !errors.Is(err, domain.ErrUninitialised) {
		t.Fatalf("shares before login: want ErrUninitialised, got %v", err)
	}
	login(t, w.Client)
	if err := w.Client.CreateUser(ctx); err != nil {
		t.Fatalf("create: %v", err)
	}
	svc, err := w.Shares("alice")
	if err != nil {
		t.Fatalf("shares: %v", err)
	}
	rec, err := svc.CreateShare(ctx, "dir", "docs", map[domain.PublicID]sharesvc.Rights{"bob": sharesvc.ReadOnly})
	if err != nil {
		t.Fatalf("create share: %v", err)
	}
	if err := w.SaveShares("alice", svc); err != nil {
		t.Fatalf("save shares: %v", err)
	}
	if err := w.Client.LogOut(ctx); err != nil {
		t.Fatalf("log out: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	w, err = app.NewWire(cfg, nil)
	if err != nil {
		t.Fatalf("rewire: %v", err)
	}
	defer w.Close()
	login(t, w.Client)
	if err := w.Client.LogIn(ctx); err != nil {
		t.Fatalf("log in: %v", err)
	}
	svc, err = w.Shares("alice")
	if err != nil {
		t.Fatalf("shares after restart: %v", err)
	}
	got, ok := svc.Registry().Get("dir")
	if !ok || got.ShareID != rec.ShareID || got.Members["bob"] != sharesvc.ReadOnly {
		t.Fatalf("restored record: %+v", got)
	}
	if _, err := svc.AddMember(ctx, "dir", "carol", sharesvc.Admin); err != nil {
		t.Fatalf("rotate restored share: %v", err)
	}

	fresh, err := w.Shares("mallory")
	if err != nil {
		t.Fatalf("shares for another id: %v", err)
	}
	if _, ok := fresh.Registry().Get("dir"); ok {
		t.Fatal("share state leaked across public ids")
	}
}

func TestWire_OverRelay(t *testing.T) {
	ctx := context.Background()
	db, err := store.OpenBolt(filepath.Join(t.TempDir(), "relay.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	srv := httptest.NewServer(relay.NewHandler(db))
	defer srv.Close()

	var codes []client.ProgressCode
	w, err := app.NewWire(app.Config{
		Home:     t.TempDir(),
		RelayURL: srv.URL,
		HTTP:     srv.Client(),
		KDF:      "interactive",
	}, func(_ client.Action, p client.ProgressCode) { codes = append(codes, p) })
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	defer w.Close()

	login(t, w.Client)
	if err := w.Client.CreateUser(ctx); err != nil {
		t.Fatalf("create over relay: %v", err)
	}
	if len(codes) == 0 {
		t.Fatal("no progress reported")
	}
	packets, _, err := db.Stats()
	if err != nil || packets == 0 {
		t.Fatalf("relay holds %d packets, %v", packets, err)
	}
}

func TestConfig_Rejects(t *testing.T) {
	if _, err := app.NewWire(app.Config{Home: t.TempDir(), KDF: "fast"}, nil); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("bad kdf: want ErrInvalidParameter, got %v", err)
	}
	if _, err := app.NewWire(app.Config{Home: t.TempDir(), Backend: "nfs"}, nil); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("bad backend: want ErrInvalidParameter, got %v", err)
	}
}

func TestSetupLogging(t *testing.T) {
	var buf bytes.Buffer
	logger, err := app.SetupLogging(&buf, "debug", "TEST")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	logger.Infof("hello")
	if !bytes.Contains(buf.Bytes(), []byte("TEST: hello")) {
		t.Fatalf("output = %q", buf.String())
	}
	if _, err := app.SetupLogging(&buf, "loud", "TEST"); err == nil {
		t.Fatal("want error for unknown level")
	}
	if len(app.Subsystems()) != 10 {
		t.Fatalf("subsystems = %v", app.Subsystems())
	}
}
