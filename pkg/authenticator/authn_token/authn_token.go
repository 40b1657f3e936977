package authn_token

import (
	"context"
	"errors"
	"fmt"

	"github.com/doodlesbykumbi/portcullis/pkg/authenticator"
	"github.com/doodlesbykumbi/portcullis/pkg/identity"
	"github.com/doodlesbykumbi/portcullis/pkg/server/store"
	"github.com/doodlesbykumbi/portcullis/pkg/token"
)

// Name is the authenticator name
const Name = "authn-token"

// Ensure Authenticator implements authenticator.Authenticator
var _ authenticator.Authenticator = (*Authenticator)(nil)

// Authenticator implements signed token authentication
type Authenticator struct {
	signer *token.Signer
	users  store.UserStore
}

// New creates a new token authenticator
func New(signer *token.Signer, users store.UserStore) *Authenticator {
	return &Authenticator{signer: signer, users: users}
}

// Name returns the authenticator name
func (a *Authenticator) Name() string {
	return Name
}

// Authenticate validates the credential as a token and resolves its user.
// Credentials that are not tokens from this service return
// authenticator.ErrNotApplicable.
func (a *Authenticator) Authenticate(ctx context.Context, input authenticator.Input) (*identity.Identity, error) {
	claims, err := a.signer.Validate(input.Credential)
	switch {
	case err == nil:
	case errors.Is(err, token.ErrExpired):
		return nil, authenticator.Reject(Name, err)
	case errors.Is(err, token.ErrMalformed), errors.Is(err, token.ErrSignatureInvalid):
		return nil, fmt.Errorf("%w: %w", authenticator.ErrNotApplicable, err)
	default:
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	user, err := a.users.UserByID(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, authenticator.Reject(Name, authenticator.ErrDanglingToken)
	}
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	return identity.FromToken(user, claims), nil
}

// Status checks if the authenticator is healthy. Tokens are verified in
// memory, so it always is.
func (a *Authenticator) Status(ctx context.Context) error {
	return nil
}
