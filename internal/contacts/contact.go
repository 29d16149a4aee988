package contacts

import "lifestuff/internal/domain"

// Status is where a contact stands in the add-contact handshake.
type Status int

const (
	Uninitialised Status = iota
	RequestSent
	PendingResponse
	Confirmed
	Blocked
)

func (s Status) String() string {
	switch s {
	case RequestSent:
		return "request_sent"
	case PendingResponse:
		return "pending_response"
	case Confirmed:
		return "confirmed"
	case Blocked:
		return "blocked"
	default:
		return "uninitialised"
	}
}

// Presence is a contact's last known online state.
type Presence int

const (
	Offline Presence = iota
	Online
)

func (p Presence) String() string {
	if p == Online {
		return "online"
	}
	return "offline"
}

// Contact is one entry in a Collection.
type Contact struct {
	PublicID       domain.PublicID
	OwnPublicID    domain.PublicID
	MpidName       string
	MmidName       string
	ProfilePicture string
	Status         Status
	Presence       Presence
	// Rank counts interactions.
	Rank uint32
	// LastContact is microseconds since the epoch.
	LastContact uint64

	seq uint64
}
