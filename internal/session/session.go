package session

import (
	"crypto/subtle"
	"sync"
	"time"

	"github.com/google/uuid"

	"lifestuff/internal/contacts"
	"lifestuff/internal/domain"
	"lifestuff/internal/passport"
)

// Session is one user's state. Callers that share it across goroutines
// serialise chain mutations themselves; the accessors here only guard the
// fields they touch.
type Session struct {
	mu sync.Mutex

	keyword  string
	pin      string
	password string

	uniqueUserID string
	rootParentID string
	maxSpace     int64
	usedSpace    int64
	publicIDs    []domain.PublicID

	// last snapshot timestamp in microseconds; snapshots are strictly
	// increasing.
	timestamp int64
	now       func() time.Time

	passport *passport.Passport
	contacts *contacts.Collection
}

// New returns an empty session.
func New() *Session {
	return &Session{
		now:      time.Now,
		passport: passport.New(),
		contacts: contacts.NewCollection(),
	}
}

// WithClock replaces the time source used for snapshot timestamps.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

// Passport returns the session's key set.
func (s *Session) Passport() *passport.Passport { return s.passport }

// Contacts returns the session's contact collection.
func (s *Session) Contacts() *contacts.Collection { return s.contacts }

// Credentials returns the live secret factors.
func (s *Session) Credentials() (keyword, pin, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyword, s.pin, s.password
}

// SetCredentials replaces all three factors.
func (s *Session) SetCredentials(keyword, pin, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyword, s.pin, s.password = keyword, pin, password
}

// SetPassword replaces the password.
func (s *Session) SetPassword(password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.password = password
}

// PasswordMatches compares candidate with the live password.
func (s *Session) PasswordMatches(candidate string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.password), []byte(candidate)) == 1
}

// CreateIdentifiers assigns a fresh unique user id and drive root id.
func (s *Session) CreateIdentifiers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uniqueUserID = uuid.NewString()
	s.rootParentID = uuid.NewString()
}

// UniqueUserID identifies the account's storage.
func (s *Session) UniqueUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uniqueUserID
}

// RootParentID identifies the drive root directory.
func (s *Session) RootParentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rootParentID
}

// Quota returns the storage quota in bytes.
func (s *Session) Quota() (maxSpace, usedSpace int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxSpace, s.usedSpace
}

// SetQuota updates the storage quota.
func (s *Session) SetQuota(maxSpace, usedSpace int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxSpace, s.usedSpace = maxSpace, usedSpace
}

// PublicIDs returns the public usernames this user owns.
func (s *Session) PublicIDs() []domain.PublicID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.PublicID(nil), s.publicIDs...)
}

// AddPublicID records a public username owned by this user.
func (s *Session) AddPublicID(id domain.PublicID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.publicIDs {
		if p == id {
			return
		}
	}
	s.publicIDs = append(s.publicIDs, id)
}

// Timestamp returns the time of the last snapshot produced or parsed.
func (s *Session) Timestamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.UnixMicro(s.timestamp)
}

// Reset wipes every secret and all identity material.
func (s *Session) Reset() {
	s.mu.Lock()
	s.keyword, s.pin, s.password = "", "", ""
	s.uniqueUserID, s.rootParentID = "", ""
	s.maxSpace, s.usedSpace = 0, 0
	s.publicIDs = nil
	s.timestamp = 0
	s.mu.Unlock()

	s.passport.Clear()
	s.contacts.Clear()
}
