package share

import (
	"encoding/json"
	"fmt"

	"lifestuff/internal/domain"
)

type state struct {
	Records     []Record     `json:"records"`
	Memberships []Membership `json:"memberships"`
}

// MarshalState encodes every record and membership the service holds. The
// output carries private keys and must be sealed before it is stored.
func (s *Service) MarshalState() ([]byte, error) {
	return json.Marshal(state{Records: s.reg.list(), Memberships: s.ring.List()})
}

// RestoreState loads records and memberships written by MarshalState.
func (s *Service) RestoreState(b []byte) error {
	var st state
	if err := json.Unmarshal(b, &st); err != nil {
		return fmt.Errorf("share state: %w", domain.ErrMalformedPacket)
	}
	for _, rec := range st.Records {
		if rec.DirectoryID == "" || rec.ShareID == "" {
			return fmt.Errorf("share state record: %w", domain.ErrMalformedPacket)
		}
	}
	for _, m := range st.Memberships {
		if m.DirectoryID == "" {
			return fmt.Errorf("share state membership: %w", domain.ErrMalformedPacket)
		}
	}
	for _, rec := range st.Records {
		s.reg.swap(rec)
	}
	for _, m := range st.Memberships {
		s.ring.put(m)
	}
	return nil
}
