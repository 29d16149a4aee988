package derive_test

import (
	"errors"
	"testing"

	"lifestuff/internal/crypto"
	"lifestuff/internal/derive"
	"lifestuff/internal/domain"
)

func TestNames_Deterministic(t *testing.T) {
	if derive.MidName("alice", "1234") != derive.MidName("alice", "1234") {
		t.Fatal("MidName is not repeatable")
	}
	if derive.MidName("alice", "1234") == derive.MidName("alice", "9999") {
		t.Fatal("different pins share a Mid name")
	}
	if derive.MidName("ab", "12") == derive.MidName("ab1", "2") {
		t.Fatal("concatenation ambiguity in MidName")
	}
	if derive.MidName("alice", "1234") == derive.SmidName("alice", "1234") {
		t.Fatal("Smid name equals Mid name")
	}
	if derive.TmidName("a", "1", "pw", 1) == derive.TmidName("a", "1", "pw", 2) {
		t.Fatal("discriminator does not change the Tmid name")
	}
}

func TestNewTmidName_AvoidsLiveNames(t *testing.T) {
	first, err := derive.NewTmidName("alice", "1234", "pw")
	if err != nil {
		t.Fatalf("new name: %v", err)
	}
	second, err := derive.NewTmidName("alice", "1234", "pw", first)
	if err != nil {
		t.Fatalf("new name: %v", err)
	}
	if first == second {
		t.Fatal("generated name collides with avoided name")
	}
}

func TestTmidName_EncryptRoundTrip(t *testing.T) {
	name := derive.TmidName("alice", "1234", "pw", 42)
	sealed, err := derive.EncryptTmidName("alice", "1234", name)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := derive.DecryptTmidName("alice", "1234", sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got != name {
		t.Fatal("tmid name mismatch")
	}
	if _, err := derive.DecryptTmidName("alice", "0000", sealed); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("wrong pin: want ErrAuthentication, got %v", err)
	}
}

func TestSession_RoundTripAndWrongPassword(t *testing.T) {
	d := derive.New(crypto.InteractiveKDF)
	snapshot := []byte(`{"timestamp":"1"}`)

	sealed, err := d.EncryptSession("alice", "1234", "secret", snapshot)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := d.DecryptSession("alice", "1234", "secret", sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(got) != string(snapshot) {
		t.Fatalf("round trip mismatch: %q", got)
	}

	if _, err := d.DecryptSession("alice", "1234", "Secret", sealed); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("wrong password: want ErrAuthentication, got %v", err)
	}
	if _, err := d.DecryptSession("bob", "1234", "secret", sealed); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("wrong keyword: want ErrAuthentication, got %v", err)
	}
	if _, err := d.DecryptSession("alice", "1234", "secret", sealed[:3]); !errors.Is(err, domain.ErrMalformedPacket) {
		t.Fatalf("truncated: want ErrMalformedPacket, got %v", err)
	}
}
