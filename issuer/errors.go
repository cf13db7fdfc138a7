package issuer

import (
	"errors"
	"fmt"
)

// ErrNoCredentialAvailable is returned when no signing key matches the
// token's allowed algorithms. KeyMaterialService implementations should wrap
// it.
var ErrNoCredentialAvailable = errors.New("no signing credential available")

// SigningError wraps a failure from the Signer. It is returned unchanged to
// the caller, and not retried.
type SigningError struct {
	Cause error
}

func (s *SigningError) Error() string {
	return fmt.Sprintf("signing token: %v", s.Cause)
}

func (s *SigningError) Unwrap() error {
	return s.Cause
}
