package authn

import (
	"context"
	"errors"
	"fmt"

	"github.com/doodlesbykumbi/portcullis/pkg/authenticator"
	"github.com/doodlesbykumbi/portcullis/pkg/identity"
	"github.com/doodlesbykumbi/portcullis/pkg/password"
	"github.com/doodlesbykumbi/portcullis/pkg/server/store"
)

// Name is the authenticator name
const Name = "authn"

// Ensure Authenticator implements authenticator.Authenticator
var _ authenticator.Authenticator = (*Authenticator)(nil)

// Authenticator implements username and password authentication
type Authenticator struct {
	users  store.UserStore
	health store.HealthStore
}

// New creates a new password authenticator
func New(users store.UserStore, health store.HealthStore) *Authenticator {
	return &Authenticator{
		users:  users,
		health: health,
	}
}

// Name returns the authenticator name
func (a *Authenticator) Name() string {
	return Name
}

// Authenticate looks the credential up as a username and verifies the password
func (a *Authenticator) Authenticate(ctx context.Context, input authenticator.Input) (*identity.Identity, error) {
	if input.Credential == "" {
		return nil, authenticator.Reject(Name, authenticator.ErrEmptyCredential)
	}

	user, err := a.users.UserByUsername(ctx, input.Credential)
	if errors.Is(err, store.ErrNotFound) {
		return nil, authenticator.Reject(Name, authenticator.ErrUnknownUser)
	}
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	// Verify dispatches on the hash format, so users hashed under a previous
	// algorithm still authenticate
	if !password.Verify(input.Password, user.PasswordHash) {
		return nil, authenticator.Reject(Name, authenticator.ErrBadPassword)
	}

	return identity.FromPassword(user), nil
}

// Status checks if the authenticator is healthy
func (a *Authenticator) Status(ctx context.Context) error {
	if a.health == nil {
		return nil
	}
	return a.health.CheckConnectivity(ctx)
}
