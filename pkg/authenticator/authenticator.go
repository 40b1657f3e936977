package authenticator

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/doodlesbykumbi/portcullis/pkg/identity"
)

// ErrUnauthorized is matched by every rejection. Callers must not tell
// rejection reasons apart in responses.
var ErrUnauthorized = errors.New("unauthorized")

// Rejection reasons, exposed through RejectedError.Unwrap for logs and audit
var (
	ErrEmptyCredential = errors.New("empty credential")
	ErrUnknownUser     = errors.New("unknown user")
	ErrBadPassword     = errors.New("password mismatch")
	ErrDanglingToken   = errors.New("token user no longer exists")
)

// ErrNotApplicable is returned by an authenticator that does not recognise the
// credential, so the next one may try it.
var ErrNotApplicable = errors.New("credential not applicable")

// Authenticator defines the interface for all authenticators
type Authenticator interface {
	// Name returns the authenticator name (e.g., "authn", "authn-token")
	Name() string

	// Authenticate validates credentials and returns the identity on success
	Authenticate(ctx context.Context, input Input) (*identity.Identity, error)

	// Status checks if the authenticator is healthy
	Status(ctx context.Context) error
}

// Input contains the input for authentication
type Input struct {
	// Credential is a username or a token
	Credential string
	// Password is ignored for token credentials
	Password string
	ClientIP net.IP
}

// RejectedError is a definitive authentication failure
type RejectedError struct {
	// Step names the authenticator that rejected the credential
	Step   string
	Reason error
}

// Reject returns a RejectedError for step
func Reject(step string, reason error) error {
	return &RejectedError{Step: step, Reason: reason}
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrUnauthorized, e.Step, e.Reason)
}

// Is matches ErrUnauthorized
func (e *RejectedError) Is(target error) bool {
	return target == ErrUnauthorized
}

func (e *RejectedError) Unwrap() error {
	return e.Reason
}

// IsRejected reports whether err is an authentication failure rather than
// an internal error
func IsRejected(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
