package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"lifestuff/internal/contacts"
	"lifestuff/internal/domain"
)

// Per-field snapshot parse failures.
var (
	ErrMissingTimestamp    = errors.New("snapshot: missing timestamp")
	ErrMissingUniqueUserID = errors.New("snapshot: missing unique_user_id")
	ErrMissingRootParentID = errors.New("snapshot: missing root_parent_id")
	ErrMissingKeyring      = errors.New("snapshot: missing serialised_keyring")
	ErrMissingSelectables  = errors.New("snapshot: missing serialised_selectables")
)

// snapshot is the wire form. Pointer fields distinguish absent from empty.
type snapshot struct {
	Timestamp             *string         `json:"timestamp"`
	UniqueUserID          *string         `json:"unique_user_id"`
	RootParentID          *string         `json:"root_parent_id"`
	SerialisedKeyring     *[]byte         `json:"serialised_keyring"`
	SerialisedSelectables *[]byte         `json:"serialised_selectables"`
	MaxSpace              *int64          `json:"max_space,omitempty"`
	UsedSpace             *int64          `json:"used_space,omitempty"`
	Contacts              []contactRecord `json:"contacts,omitempty"`
}

type contactRecord struct {
	OwnPublicUsername string  `json:"own_public_username"`
	PublicUsername    string  `json:"public_username"`
	MpidName          string  `json:"mpid_name"`
	MmidName          string  `json:"mmid_name"`
	Status            int     `json:"status"`
	Rank              uint32  `json:"rank"`
	LastContact       uint64  `json:"last_contact"`
	ProfilePicture    *string `json:"profile_picture,omitempty"`
}

// Serialise returns a snapshot stamped with a timestamp strictly later than
// any previous snapshot from this session.
func (s *Session) Serialise() ([]byte, error) {
	keyring, err := s.passport.Serialise()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	ts := s.now().UnixMicro()
	if ts <= s.timestamp {
		ts = s.timestamp + 1
	}
	s.timestamp = ts
	selectables, err := json.Marshal(s.publicIDs)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	tsText := strconv.FormatInt(ts, 10)
	uid, root := s.uniqueUserID, s.rootParentID
	maxSpace, usedSpace := s.maxSpace, s.usedSpace
	s.mu.Unlock()

	snap := snapshot{
		Timestamp:             &tsText,
		UniqueUserID:          &uid,
		RootParentID:          &root,
		SerialisedKeyring:     &keyring,
		SerialisedSelectables: &selectables,
		MaxSpace:              &maxSpace,
		UsedSpace:             &usedSpace,
	}
	for _, c := range s.contacts.Ordered(contacts.Insertion) {
		rec := contactRecord{
			OwnPublicUsername: string(c.OwnPublicID),
			PublicUsername:    string(c.PublicID),
			MpidName:          c.MpidName,
			MmidName:          c.MmidName,
			Status:            int(c.Status),
			Rank:              c.Rank,
			LastContact:       c.LastContact,
		}
		if c.ProfilePicture != "" {
			pic := c.ProfilePicture
			rec.ProfilePicture = &pic
		}
		snap.Contacts = append(snap.Contacts, rec)
	}
	return json.Marshal(snap)
}

// SerialisePair returns two snapshots of the same state with distinct
// timestamps, used as current and previous when an account is first created.
func (s *Session) SerialisePair() (current, previous []byte, err error) {
	previous, err = s.Serialise()
	if err != nil {
		return nil, nil, err
	}
	current, err = s.Serialise()
	if err != nil {
		return nil, nil, err
	}
	return current, previous, nil
}

// Parse replaces the session's account state with the snapshot in b. The
// secret factors are left untouched.
func (s *Session) Parse(b []byte) error {
	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return fmt.Errorf("snapshot: %w", domain.ErrMalformedPacket)
	}
	switch {
	case snap.Timestamp == nil || *snap.Timestamp == "":
		return ErrMissingTimestamp
	case snap.UniqueUserID == nil || *snap.UniqueUserID == "":
		return ErrMissingUniqueUserID
	case snap.RootParentID == nil || *snap.RootParentID == "":
		return ErrMissingRootParentID
	case snap.SerialisedKeyring == nil || len(*snap.SerialisedKeyring) == 0:
		return ErrMissingKeyring
	case snap.SerialisedSelectables == nil:
		return ErrMissingSelectables
	}
	ts, err := strconv.ParseInt(*snap.Timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("snapshot timestamp %q: %w", *snap.Timestamp, domain.ErrMalformedPacket)
	}
	var publicIDs []domain.PublicID
	if len(*snap.SerialisedSelectables) > 0 {
		if err := json.Unmarshal(*snap.SerialisedSelectables, &publicIDs); err != nil {
			return fmt.Errorf("snapshot selectables: %w", domain.ErrMalformedPacket)
		}
	}
	if err := s.passport.Parse(*snap.SerialisedKeyring); err != nil {
		return err
	}

	s.contacts.Clear()
	for _, rec := range snap.Contacts {
		c := contacts.Contact{
			PublicID:    domain.PublicID(rec.PublicUsername),
			OwnPublicID: domain.PublicID(rec.OwnPublicUsername),
			MpidName:    rec.MpidName,
			MmidName:    rec.MmidName,
			Status:      contacts.Status(rec.Status),
			Rank:        rec.Rank,
			LastContact: rec.LastContact,
		}
		if rec.ProfilePicture != nil {
			c.ProfilePicture = *rec.ProfilePicture
		}
		if err := s.contacts.Add(c); err != nil {
			return fmt.Errorf("snapshot contacts: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timestamp = ts
	s.uniqueUserID = *snap.UniqueUserID
	s.rootParentID = *snap.RootParentID
	s.publicIDs = publicIDs
	s.maxSpace, s.usedSpace = 0, 0
	if snap.MaxSpace != nil {
		s.maxSpace = *snap.MaxSpace
	}
	if snap.UsedSpace != nil {
		s.usedSpace = *snap.UsedSpace
	}
	return nil
}
