package share

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"lifestuff/internal/domain"
)

// Rights a member holds on a share.
type Rights int

const (
	ReadOnly Rights = iota
	Admin
)

func (r Rights) String() string {
	if r == Admin {
		return "admin"
	}
	return "read_only"
}

// ParseRights resolves "admin" or "read_only".
func ParseRights(name string) (Rights, error) {
	switch name {
	case "admin":
		return Admin, nil
	case "read_only", "":
		return ReadOnly, nil
	}
	return ReadOnly, fmt.Errorf("rights %q: %w", name, domain.ErrInvalidParameter)
}

// Record is the owner's view of a share.
type Record struct {
	ShareID     string
	DirectoryID string
	Name        string
	Owner       domain.PublicID
	Keys        Keys
	Members     map[domain.PublicID]Rights
}

func (r Record) clone() Record {
	r.Members = maps.Clone(r.Members)
	return r
}

// Registry holds the current record per directory. Swaps are atomic, so a
// reader sees either the old or the new generation, never both.
type Registry struct {
	mu      sync.RWMutex
	records map[string]Record
	locks   map[string]*sync.Mutex
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]Record),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Get returns a copy of the record for directoryID.
func (r *Registry) Get(directoryID string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[directoryID]
	if !ok {
		return Record{}, false
	}
	return rec.clone(), true
}

func (r *Registry) list() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.clone())
	}
	slices.SortFunc(out, func(a, b Record) int { return strings.Compare(a.DirectoryID, b.DirectoryID) })
	return out
}

func (r *Registry) swap(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.DirectoryID] = rec.clone()
}

func (r *Registry) remove(directoryID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, directoryID)
}

// lock returns the mutex serialising rotations of directoryID.
func (r *Registry) lock(directoryID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[directoryID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[directoryID] = l
	}
	return l
}

// Membership is a member's view of a share, built from received messages.
type Membership struct {
	ShareID     string
	DirectoryID string
	Name        string
	From        domain.PublicID
	Keys        Keys
}

// KeyRing holds memberships by directory.
type KeyRing struct {
	mu      sync.RWMutex
	entries map[string]Membership
}

// NewKeyRing returns an empty key ring.
func NewKeyRing() *KeyRing { return &KeyRing{entries: make(map[string]Membership)} }

// Get returns the membership for directoryID.
func (k *KeyRing) Get(directoryID string) (Membership, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	m, ok := k.entries[directoryID]
	return m, ok
}

// List returns every membership ordered by directory.
func (k *KeyRing) List() []Membership {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := slices.Collect(maps.Values(k.entries))
	slices.SortFunc(out, func(a, b Membership) int { return strings.Compare(a.DirectoryID, b.DirectoryID) })
	return out
}

func (k *KeyRing) put(m Membership) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.entries[m.DirectoryID] = m
}

func (k *KeyRing) remove(directoryID string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.entries, directoryID)
}
