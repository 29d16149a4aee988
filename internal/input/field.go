package input

import (
	"fmt"

	"lifestuff/internal/domain"
)

// Field names an input slot.
type Field int

const (
	Pin Field = iota
	Keyword
	Password
	ConfirmationPin
	ConfirmationKeyword
	ConfirmationPassword
	CurrentPassword
)

var fieldNames = [...]string{
	Pin:                  "pin",
	Keyword:              "keyword",
	Password:             "password",
	ConfirmationPin:      "confirmation_pin",
	ConfirmationKeyword:  "confirmation_keyword",
	ConfirmationPassword: "confirmation_password",
	CurrentPassword:      "current_password",
}

// Fields lists every slot in declaration order.
var Fields = []Field{Pin, Keyword, Password, ConfirmationPin, ConfirmationKeyword, ConfirmationPassword, CurrentPassword}

func (f Field) String() string {
	if f.valid() {
		return fieldNames[f]
	}
	return fmt.Sprintf("field(%d)", int(f))
}

func (f Field) valid() bool { return f >= Pin && f <= CurrentPassword }

// ParseField resolves an external field name. It is the only place an unknown
// discriminator can enter.
func ParseField(name string) (Field, error) {
	for f, n := range fieldNames {
		if n == name {
			return Field(f), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, domain.ErrUnknownField)
}

// primary returns the field a confirmation slot is compared against.
func (f Field) primary() (Field, bool) {
	switch f {
	case ConfirmationPin:
		return Pin, true
	case ConfirmationKeyword:
		return Keyword, true
	case ConfirmationPassword:
		return Password, true
	default:
		return f, false
	}
}
