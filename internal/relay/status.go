package relay

import (
	"errors"
	"fmt"
	"net/http"

	"lifestuff/internal/domain"
)

// statusOf maps a store error to the status the server replies with.
func statusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrMalformedPacket), errors.Is(err, domain.ErrInvalidParameter):
		return http.StatusBadRequest
	}
	switch domain.CodeOf(err) {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeNotOwner:
		return http.StatusForbidden
	case domain.CodeInvalidSignature:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorOf maps a non-2xx reply back to the store error it stands for.
func errorOf(op, path string, resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("relay %s %s: %w", op, path, domain.ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("relay %s %s: %w", op, path, domain.ErrConflict)
	case http.StatusForbidden:
		return fmt.Errorf("relay %s %s: %w", op, path, domain.ErrNotOwner)
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("relay %s %s: %w", op, path, domain.ErrInvalidSignature)
	case http.StatusBadRequest:
		return fmt.Errorf("relay %s %s: %w", op, path, domain.ErrMalformedPacket)
	default:
		return &domain.NetworkError{
			Op:   op,
			Code: domain.CodeTransport,
			Err:  fmt.Errorf("relay %s %s: %s", op, path, resp.Status),
		}
	}
}
