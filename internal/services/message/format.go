package message

import (
	"fmt"

	"lifestuff/internal/domain"
)

// Tag is a share operation.
type Tag string

const (
	InsertShare  Tag = "insert_share"
	RemoveShare  Tag = "remove_share"
	UpdateShare  Tag = "update_share"
	MemberAccess Tag = "member_access"
	LeaveShare   Tag = "leave_share"
)

func (t Tag) valid() bool {
	switch t {
	case InsertShare, RemoveShare, UpdateShare, MemberAccess, LeaveShare:
		return true
	}
	return false
}

// carriesKeys reports whether messages with this tag include key material.
func (t Tag) carriesKeys() bool { return t != RemoveShare && t != LeaveShare }

// Share is a decoded share message. PrivateKey is set only in messages to
// admins; Filename only for InsertShare.
type Share struct {
	Tag             Tag
	ShareID         string
	DirectoryID     string
	Filename        string
	Identity        string
	ValidationToken string
	PublicKey       string
	DecryptKey      string
	PrivateKey      string
}

// Admin reports whether the message grants admin rights.
func (m Share) Admin() bool { return m.PrivateKey != "" }

// Fields encodes m in wire order:
//
//	tag, share_id, directory_id, [filename], identity, validation_token,
//	public_key, decrypt_key, [private_key]
func (m Share) Fields() []string {
	out := []string{string(m.Tag), m.ShareID, m.DirectoryID}
	if !m.Tag.carriesKeys() {
		return out
	}
	if m.Tag == InsertShare {
		out = append(out, m.Filename)
	}
	out = append(out, m.Identity, m.ValidationToken, m.PublicKey, m.DecryptKey)
	if m.PrivateKey != "" {
		out = append(out, m.PrivateKey)
	}
	return out
}

// ParseShare decodes fields produced by Share.Fields.
func ParseShare(fields []string) (Share, error) {
	if len(fields) < 3 {
		return Share{}, fmt.Errorf("share message has %d fields: %w", len(fields), domain.ErrMalformedPacket)
	}
	m := Share{Tag: Tag(fields[0]), ShareID: fields[1], DirectoryID: fields[2]}
	if !m.Tag.valid() {
		return Share{}, fmt.Errorf("share message tag %q: %w", fields[0], domain.ErrUnknownField)
	}
	rest := fields[3:]
	if !m.Tag.carriesKeys() {
		if len(rest) != 0 {
			return Share{}, fmt.Errorf("%s with %d extra fields: %w", m.Tag, len(rest), domain.ErrMalformedPacket)
		}
		return m, nil
	}
	if m.Tag == InsertShare {
		if len(rest) == 0 {
			return Share{}, fmt.Errorf("%s without filename: %w", m.Tag, domain.ErrMalformedPacket)
		}
		m.Filename, rest = rest[0], rest[1:]
	}
	switch len(rest) {
	case 5:
		m.PrivateKey = rest[4]
		fallthrough
	case 4:
		m.Identity, m.ValidationToken, m.PublicKey, m.DecryptKey = rest[0], rest[1], rest[2], rest[3]
	default:
		return Share{}, fmt.Errorf("%s with %d key fields: %w", m.Tag, len(rest), domain.ErrMalformedPacket)
	}
	return m, nil
}
