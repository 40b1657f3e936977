package authenticator

import (
	"context"
	"errors"

	"github.com/hashicorp/go-hclog"

	"github.com/doodlesbykumbi/portcullis/pkg/identity"
)

// Chain tries a token first and falls back to a password. A credential the
// token step recognises, valid or not, never reaches the password step.
type Chain struct {
	token    Authenticator
	password Authenticator
	logger   hclog.Logger
}

// Ensure Chain implements Authenticator
var _ Authenticator = (*Chain)(nil)

// NewChain creates a Chain
func NewChain(token, password Authenticator, logger hclog.Logger) *Chain {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Chain{token: token, password: password, logger: logger}
}

// Name returns the authenticator name
func (c *Chain) Name() string {
	return "chain"
}

// Authenticate runs the token step and, if it does not apply, the password step
func (c *Chain) Authenticate(ctx context.Context, input Input) (*identity.Identity, error) {
	if input.Credential == "" {
		return nil, c.rejected(Reject("input", ErrEmptyCredential))
	}

	id, err := c.token.Authenticate(ctx, input)
	switch {
	case err == nil:
		return c.authenticated(id, input)
	case !errors.Is(err, ErrNotApplicable):
		return nil, c.rejected(err)
	}
	c.logger.Trace("credential is not a token", "reason", err)

	id, err = c.password.Authenticate(ctx, input)
	if err != nil {
		return nil, c.rejected(err)
	}
	return c.authenticated(id, input)
}

// Status checks every step
func (c *Chain) Status(ctx context.Context) error {
	if err := c.token.Status(ctx); err != nil {
		return err
	}
	return c.password.Status(ctx)
}

func (c *Chain) authenticated(id *identity.Identity, input Input) (*identity.Identity, error) {
	if input.ClientIP != nil {
		id.WithRemoteIP(input.ClientIP)
	}
	c.logger.Debug("authenticated", "user_id", id.UserID, "method", id.Method)
	return id, nil
}

func (c *Chain) rejected(err error) error {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		c.logger.Debug("authentication rejected", "step", rejected.Step, "reason", rejected.Reason)
	} else {
		c.logger.Error("authentication failed", "error", err)
	}
	return err
}
