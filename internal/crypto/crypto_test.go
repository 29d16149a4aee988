package crypto_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"lifestuff/internal/crypto"
	"lifestuff/internal/domain"
)

func TestHash_LengthPrefixed(t *testing.T) {
	a := crypto.HashStrings("ab", "12")
	b := crypto.HashStrings("ab1", "2")
	if a == b {
		t.Fatal("different part boundaries produced the same hash")
	}
	if crypto.HashStrings("ab", "12") != a {
		t.Fatal("hash is not deterministic")
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{7}, crypto.KeyBytes)
	sealed, err := crypto.Seal(key, []byte("hello"), []byte("ad"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	pt, err := crypto.Open(key, sealed, []byte("ad"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(pt) != "hello" {
		t.Fatalf("got %q", pt)
	}
	if _, err := crypto.Open(key, sealed, []byte("other")); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("wrong ad: want ErrAuthentication, got %v", err)
	}
	if _, err := crypto.Open(key, sealed[:5], nil); !errors.Is(err, domain.ErrMalformedPacket) {
		t.Fatalf("short input: want ErrMalformedPacket, got %v", err)
	}
}

func TestSealAnonymous_RoundTrip(t *testing.T) {
	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	sealed, err := crypto.SealAnonymous(pub, []byte("share content"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	got, err := crypto.OpenAnonymous(pub, priv, sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(got) != "share content" {
		t.Fatalf("got %q", got)
	}

	otherPriv, otherPub, _ := crypto.GenerateX25519()
	if _, err := crypto.OpenAnonymous(otherPub, otherPriv, sealed); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("want ErrAuthentication, got %v", err)
	}
}

func TestSignPacket_VerifyAndOwnership(t *testing.T) {
	priv, pub, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	p := crypto.SignPacket(priv, []byte("payload"))
	if p.PublicKey != pub {
		t.Fatal("packet owner does not match signing key")
	}
	if !crypto.VerifyPacket(p) {
		t.Fatal("valid packet rejected")
	}
	p.Data = []byte("tampered")
	if crypto.VerifyPacket(p) {
		t.Fatal("tampered packet accepted")
	}

	name := crypto.HashStrings("name")
	proof := crypto.ProveOwnership(priv, name)
	if !crypto.VerifyOwnership(name, pub, proof) {
		t.Fatal("valid proof rejected")
	}
	_, otherPub, _ := crypto.GenerateEd25519()
	if crypto.VerifyOwnership(name, otherPub, proof) {
		t.Fatal("proof accepted for a different owner")
	}
	if crypto.VerifyOwnership(crypto.HashStrings("other"), pub, proof) {
		t.Fatal("proof accepted for a different name")
	}
}

func TestFingerprint_Grouped(t *testing.T) {
	a := crypto.Fingerprint([]byte("key-a"))
	if len(a) != 24 {
		t.Fatalf("fingerprint %q: want 24 chars", a)
	}
	for i, g := range strings.Split(a, " ") {
		if len(g) != 4 {
			t.Fatalf("group %d = %q", i, g)
		}
	}
	if a == crypto.Fingerprint([]byte("key-b")) {
		t.Fatal("distinct keys share a fingerprint")
	}
	if a != crypto.Fingerprint([]byte("key-a")) {
		t.Fatal("fingerprint is not deterministic")
	}
}
