package passport

import (
	"encoding/json"
	"fmt"
	"sync"

	"lifestuff/internal/domain"
)

// Passport is the identity key set of one session.
type Passport struct {
	mu        sync.Mutex
	pending   map[Role]*KeyPair
	confirmed map[Role]*KeyPair
}

// New returns an empty passport.
func New() *Passport {
	return &Passport{
		pending:   make(map[Role]*KeyPair),
		confirmed: make(map[Role]*KeyPair),
	}
}

// CreateSigningPackets generates a fresh pending generation for every role,
// replacing any earlier pending one.
func (p *Passport) CreateSigningPackets() error {
	gen := make(map[Role]*KeyPair, len(Roles))
	for _, r := range Roles {
		var signer *KeyPair
		if s := r.Signer(); s != r {
			signer = gen[s]
		}
		kp, err := NewKeyPair(r, signer)
		if err != nil {
			return fmt.Errorf("generate %v: %w", r, err)
		}
		gen[r] = &kp
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	wipeAll(p.pending)
	p.pending = gen
	return nil
}

// ConfirmSigningPackets promotes the pending generation.
func (p *Passport) ConfirmSigningPackets() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) == 0 {
		return fmt.Errorf("no pending keys: %w", domain.ErrUninitialised)
	}
	wipeAll(p.confirmed)
	p.confirmed = p.pending
	p.pending = make(map[Role]*KeyPair)
	return nil
}

// RevertSigningPackets discards the pending generation.
func (p *Passport) RevertSigningPackets() {
	p.mu.Lock()
	defer p.mu.Unlock()
	wipeAll(p.pending)
	p.pending = make(map[Role]*KeyPair)
}

// Key returns role's pair from the confirmed or the pending generation.
func (p *Passport) Key(role Role, confirmed bool) (KeyPair, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	gen := p.pending
	if confirmed {
		gen = p.confirmed
	}
	kp, ok := gen[role]
	if !ok {
		return KeyPair{}, fmt.Errorf("%v key (confirmed=%t): %w", role, confirmed, domain.ErrUninitialised)
	}
	return *kp, nil
}

// Keys returns every pair of one generation in Roles order.
func (p *Passport) Keys(confirmed bool) []KeyPair {
	p.mu.Lock()
	defer p.mu.Unlock()
	gen := p.pending
	if confirmed {
		gen = p.confirmed
	}
	out := make([]KeyPair, 0, len(gen))
	for _, r := range Roles {
		if kp, ok := gen[r]; ok {
			out = append(out, *kp)
		}
	}
	return out
}

// Clear wipes both generations.
func (p *Passport) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	wipeAll(p.pending)
	wipeAll(p.confirmed)
	p.pending = make(map[Role]*KeyPair)
	p.confirmed = make(map[Role]*KeyPair)
}

func wipeAll(gen map[Role]*KeyPair) {
	for r, kp := range gen {
		kp.wipe()
		delete(gen, r)
	}
}

// keyringEntry is the serialised form of one confirmed pair.
type keyringEntry struct {
	Role              string `json:"role"`
	SigningPrivate    []byte `json:"signing_private"`
	EncryptionPrivate []byte `json:"encryption_private"`
	EncryptionPublic  []byte `json:"encryption_public"`
	Validation        []byte `json:"validation"`
}

// Serialise encodes the confirmed generation.
func (p *Passport) Serialise() ([]byte, error) {
	keys := p.Keys(true)
	if len(keys) == 0 {
		return nil, fmt.Errorf("no confirmed keys: %w", domain.ErrUninitialised)
	}
	entries := make([]keyringEntry, 0, len(keys))
	for _, kp := range keys {
		entries = append(entries, keyringEntry{
			Role:              kp.Role.String(),
			SigningPrivate:    kp.SigningPrivate.Slice(),
			EncryptionPrivate: kp.EncryptionPrivate.Slice(),
			EncryptionPublic:  kp.EncryptionPublic.Slice(),
			Validation:        kp.Validation,
		})
	}
	return json.Marshal(entries)
}

// Parse loads a keyring produced by Serialise into the confirmed generation.
// Every pair's validation signature must check out.
func (p *Passport) Parse(b []byte) error {
	var entries []keyringEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return fmt.Errorf("keyring: %w", domain.ErrMalformedPacket)
	}
	gen := make(map[Role]*KeyPair, len(entries))
	for _, e := range entries {
		role, err := parseRole(e.Role)
		if err != nil {
			return err
		}
		if len(e.SigningPrivate) != len(domain.Ed25519Private{}) ||
			len(e.EncryptionPrivate) != len(domain.X25519Private{}) ||
			len(e.EncryptionPublic) != len(domain.X25519Public{}) {
			return fmt.Errorf("keyring %v: %w", role, domain.ErrMalformedPacket)
		}
		var kp KeyPair
		kp.Role = role
		copy(kp.SigningPrivate[:], e.SigningPrivate)
		kp.SigningPublic = kp.SigningPrivate.Public()
		copy(kp.EncryptionPrivate[:], e.EncryptionPrivate)
		copy(kp.EncryptionPublic[:], e.EncryptionPublic)
		kp.Validation = e.Validation
		gen[role] = &kp
	}
	for _, kp := range gen {
		signer, ok := gen[kp.Role.Signer()]
		if !ok || !Validate(*kp, signer.SigningPublic) {
			return fmt.Errorf("keyring %v validation: %w", kp.Role, domain.ErrAuthentication)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	wipeAll(p.confirmed)
	p.confirmed = gen
	return nil
}

func parseRole(s string) (Role, error) {
	for r, n := range roleNames {
		if n == s {
			return Role(r), nil
		}
	}
	return 0, fmt.Errorf("keyring role %q: %w", s, domain.ErrMalformedPacket)
}
