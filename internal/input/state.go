package input

import (
	"fmt"
	"regexp"

	"lifestuff/internal/domain"
)

var (
	pinShape    = regexp.MustCompile(`^[0-9]+$`)
	secretShape = regexp.MustCompile(`(?s)^.+$`)
)

// PasswordChecker reports whether candidate is the live session's password.
type PasswordChecker func(candidate string) bool

// State holds one buffer per field and tracks which fields are confirmed.
// It is not safe for concurrent use; the client facade serialises access.
type State struct {
	buffers   map[Field]*Buffer
	confirmed map[Field]bool
	checker   PasswordChecker
}

// NewState returns an empty input state.
func NewState() *State {
	return &State{
		buffers:   make(map[Field]*Buffer),
		confirmed: make(map[Field]bool),
	}
}

// SetPasswordChecker installs the callback used to confirm CurrentPassword.
func (s *State) SetPasswordChecker(c PasswordChecker) { s.checker = c }

// Insert adds text to field at rune position pos, creating the buffer on
// first use.
func (s *State) Insert(field Field, pos int, text string) error {
	if !field.valid() {
		return fmt.Errorf("%v: %w", field, domain.ErrUnknownField)
	}
	b, ok := s.buffers[field]
	if !ok {
		b = &Buffer{}
		s.buffers[field] = b
	}
	s.unconfirm(field)
	return b.Insert(pos, text)
}

// Remove deletes n runes from field at pos. Removing from a buffer that was
// never created fails with domain.ErrUninitialised.
func (s *State) Remove(field Field, pos, n int) error {
	b, err := s.existing(field)
	if err != nil {
		return err
	}
	s.unconfirm(field)
	return b.Remove(pos, n)
}

// Clear empties field.
func (s *State) Clear(field Field) error {
	b, err := s.existing(field)
	if err != nil {
		return err
	}
	s.unconfirm(field)
	return b.Clear()
}

// Confirm finalises and validates field. Failed validation returns
// domain.ErrInvalidParameter.
func (s *State) Confirm(field Field) error {
	switch field {
	case Pin, Keyword, Password:
		b, err := s.existing(field)
		if err != nil {
			return err
		}
		b.Finalise()
		if !shapeOK(field, b.String()) {
			return fmt.Errorf("%v has the wrong shape: %w", field, domain.ErrInvalidParameter)
		}

	case ConfirmationPin, ConfirmationKeyword, ConfirmationPassword:
		primaryField, _ := field.primary()
		primary, err := s.existing(primaryField)
		if err != nil {
			return err
		}
		confirmation, err := s.existing(field)
		if err != nil {
			return err
		}
		primary.Finalise()
		confirmation.Finalise()
		if !shapeOK(primaryField, primary.String()) {
			return fmt.Errorf("%v has the wrong shape: %w", primaryField, domain.ErrInvalidParameter)
		}
		if primary.String() != confirmation.String() {
			return fmt.Errorf("%v does not match %v: %w", field, primaryField, domain.ErrInvalidParameter)
		}
		s.confirmed[primaryField] = true

	case CurrentPassword:
		b, err := s.existing(field)
		if err != nil {
			return err
		}
		if s.checker == nil {
			return fmt.Errorf("no password checker: %w", domain.ErrUninitialised)
		}
		b.Finalise()
		if !s.checker(b.String()) {
			return fmt.Errorf("current password does not match: %w", domain.ErrInvalidParameter)
		}

	default:
		return fmt.Errorf("%v: %w", field, domain.ErrUnknownField)
	}
	s.confirmed[field] = true
	return nil
}

// Confirmed reports whether field passed Confirm since it was last edited.
func (s *State) Confirmed(field Field) bool { return s.confirmed[field] }

// Value returns the finalised contents of a confirmed field.
func (s *State) Value(field Field) (string, error) {
	if !s.confirmed[field] {
		return "", fmt.Errorf("%v not confirmed: %w", field, domain.ErrUninitialised)
	}
	return s.buffers[field].String(), nil
}

// Reset wipes every buffer.
func (s *State) Reset() {
	for f, b := range s.buffers {
		b.wipe()
		delete(s.buffers, f)
	}
	clear(s.confirmed)
}

func (s *State) existing(field Field) (*Buffer, error) {
	if !field.valid() {
		return nil, fmt.Errorf("%v: %w", field, domain.ErrUnknownField)
	}
	b, ok := s.buffers[field]
	if !ok || !b.Created() {
		return nil, fmt.Errorf("%v: %w", field, domain.ErrUninitialised)
	}
	return b, nil
}

// unconfirm drops confirmation for field and for any slot paired with it.
func (s *State) unconfirm(field Field) {
	delete(s.confirmed, field)
	if p, ok := field.primary(); ok {
		delete(s.confirmed, p)
		return
	}
	for _, f := range []Field{ConfirmationPin, ConfirmationKeyword, ConfirmationPassword} {
		if p, _ := f.primary(); p == field {
			delete(s.confirmed, f)
		}
	}
}

func shapeOK(field Field, v string) bool {
	if field == Pin {
		return pinShape.MatchString(v)
	}
	return secretShape.MatchString(v)
}
