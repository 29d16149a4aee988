package contacts

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"lifestuff/internal/domain"
)

var (
	ErrExists   = errors.New("contact already exists")
	ErrNotFound = errors.New("contact not found")
)

// Order selects an Ordered view.
type Order int

const (
	Insertion Order = iota
	Alphabetical
	Popular
	LastContacted
)

var orderNames = map[string]Order{
	"insertion":      Insertion,
	"alphabetical":   Alphabetical,
	"popular":        Popular,
	"last_contacted": LastContacted,
}

// ParseOrder resolves an order name such as "alphabetical".
func ParseOrder(name string) (Order, error) {
	o, ok := orderNames[name]
	if !ok {
		return 0, fmt.Errorf("contact order %q: %w", name, domain.ErrInvalidParameter)
	}
	return o, nil
}

// Collection holds contacts keyed by public id. It is safe for concurrent use.
type Collection struct {
	mu      sync.RWMutex
	byID    map[domain.PublicID]*Contact
	nextSeq uint64
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{byID: make(map[domain.PublicID]*Contact)}
}

// Add inserts c. Public ids are unique.
func (c *Collection) Add(ct Contact) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[ct.PublicID]; ok {
		return fmt.Errorf("%s: %w", ct.PublicID, ErrExists)
	}
	ct.seq = c.nextSeq
	c.nextSeq++
	c.byID[ct.PublicID] = &ct
	return nil
}

// Update replaces the stored contact with the same public id, keeping its
// insertion position.
func (c *Collection) Update(ct Contact) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.byID[ct.PublicID]
	if !ok {
		return fmt.Errorf("%s: %w", ct.PublicID, ErrNotFound)
	}
	ct.seq = cur.seq
	*cur = ct
	return nil
}

// Remove deletes the contact with id.
func (c *Collection) Remove(id domain.PublicID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[id]; !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	delete(c.byID, id)
	return nil
}

// Get looks a contact up by public id.
func (c *Collection) Get(id domain.PublicID) (Contact, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ct, ok := c.byID[id]
	if !ok {
		return Contact{}, false
	}
	return *ct, true
}

// Len returns the number of contacts.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// SetStatus changes id's status.
func (c *Collection) SetStatus(id domain.PublicID, s Status) error {
	return c.modify(id, func(ct *Contact) { ct.Status = s })
}

// SetPresence changes id's presence.
func (c *Collection) SetPresence(id domain.PublicID, p Presence) error {
	return c.modify(id, func(ct *Contact) { ct.Presence = p })
}

// Touch records an interaction with id at now.
func (c *Collection) Touch(id domain.PublicID, now time.Time) error {
	return c.modify(id, func(ct *Contact) {
		ct.Rank++
		ct.LastContact = uint64(now.UnixMicro())
	})
}

func (c *Collection) modify(id domain.PublicID, fn func(*Contact)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ct, ok := c.byID[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	fn(ct)
	return nil
}

// ByStatus returns the contacts with status s in insertion order.
func (c *Collection) ByStatus(s Status) []Contact {
	return c.filter(func(ct *Contact) bool { return ct.Status == s })
}

// ByPresence returns the contacts with presence p in insertion order.
func (c *Collection) ByPresence(p Presence) []Contact {
	return c.filter(func(ct *Contact) bool { return ct.Presence == p })
}

// Ordered returns every contact sorted by o.
func (c *Collection) Ordered(o Order) []Contact {
	out := c.filter(func(*Contact) bool { return true })
	switch o {
	case Alphabetical:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(string(out[i].PublicID)) < strings.ToLower(string(out[j].PublicID))
		})
	case Popular:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rank > out[j].Rank })
	case LastContacted:
		sort.SliceStable(out, func(i, j int) bool { return out[i].LastContact > out[j].LastContact })
	}
	return out
}

// Search returns the contacts whose public id fuzzily contains query,
// closest matches first. Matching ignores case and diacritics.
func (c *Collection) Search(query string) []Contact {
	type hit struct {
		ct   Contact
		dist int
	}
	var hits []hit
	for _, ct := range c.Ordered(Insertion) {
		if d := fuzzy.RankMatchNormalizedFold(query, string(ct.PublicID)); d >= 0 {
			hits = append(hits, hit{ct: ct, dist: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	out := make([]Contact, len(hits))
	for i, h := range hits {
		out[i] = h.ct
	}
	return out
}

// filter returns matching contacts in insertion order.
func (c *Collection) filter(keep func(*Contact) bool) []Contact {
	c.mu.RLock()
	out := make([]Contact, 0, len(c.byID))
	for _, ct := range c.byID {
		if keep(ct) {
			out = append(out, *ct)
		}
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Clear removes every contact.
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.byID)
	c.nextSeq = 0
}
