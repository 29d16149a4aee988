package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUninitialised is returned when a component is used before it was
	// configured, or an input buffer is edited before it was ever created.
	ErrUninitialised = errors.New("uninitialised")

	// ErrUnknownField is returned for an unrecognised input field name.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidParameter is returned when a confirmation step fails.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUserDoesNotExist is returned when no account is found for a keyword and pin.
	ErrUserDoesNotExist = errors.New("user does not exist")

	// ErrUserExists is returned when an account already occupies the derived names.
	ErrUserExists = errors.New("user exists")

	// ErrAuthentication covers both wrong secrets and tampered packets.
	ErrAuthentication = errors.New("authentication failed")

	// ErrPartialFailure marks an operation whose new state is committed but
	// whose cleanup did not fully complete.
	ErrPartialFailure = errors.New("partial failure")

	// ErrFailedToDeleteOldPacket is the non-fatal partial failure raised when an
	// old-generation packet could not be removed.
	ErrFailedToDeleteOldPacket = fmt.Errorf("failed to delete old packet: %w", ErrPartialFailure)

	// ErrMalformedPacket is returned when packet or ciphertext framing cannot be parsed.
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrInvalidState is returned when a credential operation runs in the wrong state.
	ErrInvalidState = errors.New("invalid state")
)

// Network store outcomes.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("name owned by another key")
	ErrNotOwner         = errors.New("ownership proof rejected")
	ErrInvalidSignature = errors.New("invalid packet signature")
)

// Result codes carried by network completion callbacks.
const (
	CodeSuccess          = 0
	CodeNotFound         = 1
	CodeConflict         = 2
	CodeNotOwner         = 3
	CodeInvalidSignature = 4
	CodeTransport        = 5
	CodeCancelled        = 6
)

// NetworkError surfaces a network-layer failure verbatim with its result code.
type NetworkError struct {
	Op   string
	Code int
	Err  error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network %s: code %d: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("network %s: code %d", e.Op, e.Code)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// CodeOf maps an error returned by a store to its result code.
func CodeOf(err error) int {
	var netErr *NetworkError
	switch {
	case err == nil:
		return CodeSuccess
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrNotOwner):
		return CodeNotOwner
	case errors.Is(err, ErrInvalidSignature):
		return CodeInvalidSignature
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCancelled
	case errors.As(err, &netErr):
		return netErr.Code
	default:
		return CodeTransport
	}
}

// ErrorOf maps a result code back to an error. Unknown codes become a
// NetworkError carrying the code.
func ErrorOf(op string, code int) error {
	switch code {
	case CodeSuccess:
		return nil
	case CodeNotFound:
		return ErrNotFound
	case CodeConflict:
		return ErrConflict
	case CodeNotOwner:
		return ErrNotOwner
	case CodeInvalidSignature:
		return ErrInvalidSignature
	default:
		return &NetworkError{Op: op, Code: code}
	}
}
