package contacts_test

import (
	"errors"
	"testing"
	"time"

	"lifestuff/internal/contacts"
	"lifestuff/internal/domain"
)

func ids(cs []contacts.Contact) []domain.PublicID {
	out := make([]domain.PublicID, len(cs))
	for i, c := range cs {
		out[i] = c.PublicID
	}
	return out
}

func equalIDs(a []domain.PublicID, b ...domain.PublicID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func seed(t *testing.T) *contacts.Collection {
	t.Helper()
	c := contacts.NewCollection()
	for _, ct := range []contacts.Contact{
		{PublicID: "zoe", Status: contacts.Confirmed, Presence: contacts.Online},
		{PublicID: "Bob", Status: contacts.RequestSent},
		{PublicID: "alice", Status: contacts.Confirmed},
	} {
		if err := c.Add(ct); err != nil {
			t.Fatalf("add %s: %v", ct.PublicID, err)
		}
	}
	return c
}

func TestAdd_UniqueByPublicID(t *testing.T) {
	c := seed(t)
	if err := c.Add(contacts.Contact{PublicID: "zoe"}); !errors.Is(err, contacts.ErrExists) {
		t.Fatalf("want ErrExists, got %v", err)
	}
	if err := c.Remove("nobody"); !errors.Is(err, contacts.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestLookups(t *testing.T) {
	c := seed(t)
	if got := ids(c.ByStatus(contacts.Confirmed)); !equalIDs(got, "zoe", "alice") {
		t.Fatalf("by status: %v", got)
	}
	if got := ids(c.ByPresence(contacts.Online)); !equalIDs(got, "zoe") {
		t.Fatalf("by presence: %v", got)
	}
}

func TestOrderedViews(t *testing.T) {
	c := seed(t)
	now := time.Now()
	_ = c.Touch("alice", now)
	_ = c.Touch("alice", now.Add(time.Second))
	_ = c.Touch("Bob", now.Add(2*time.Second))

	if got := ids(c.Ordered(contacts.Insertion)); !equalIDs(got, "zoe", "Bob", "alice") {
		t.Fatalf("insertion: %v", got)
	}
	if got := ids(c.Ordered(contacts.Alphabetical)); !equalIDs(got, "alice", "Bob", "zoe") {
		t.Fatalf("alphabetical: %v", got)
	}
	if got := ids(c.Ordered(contacts.Popular)); !equalIDs(got, "alice", "Bob", "zoe") {
		t.Fatalf("popular: %v", got)
	}
	if got := ids(c.Ordered(contacts.LastContacted)); !equalIDs(got, "Bob", "alice", "zoe") {
		t.Fatalf("last contacted: %v", got)
	}
}

func TestSearch(t *testing.T) {
	c := seed(t)
	if got := ids(c.Search("BO")); !equalIDs(got, "Bob") {
		t.Fatalf("search: %v", got)
	}
	if got := ids(c.Search("ae")); !equalIDs(got, "alice") {
		t.Fatalf("fuzzy search: %v", got)
	}
	if got := c.Search("xyz"); len(got) != 0 {
		t.Fatalf("unexpected hits: %v", ids(got))
	}
}

func TestParseOrder(t *testing.T) {
	if o, err := contacts.ParseOrder("popular"); err != nil || o != contacts.Popular {
		t.Fatalf("popular = %v, %v", o, err)
	}
	if _, err := contacts.ParseOrder("random"); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("want ErrInvalidParameter, got %v", err)
	}
	if contacts.Blocked.String() != "blocked" || contacts.Online.String() != "online" {
		t.Fatal("status or presence names changed")
	}
}
