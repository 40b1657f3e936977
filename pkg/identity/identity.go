package identity

import (
	"context"
	"net"
	"time"

	"github.com/doodlesbykumbi/portcullis/pkg/model"
	"github.com/doodlesbykumbi/portcullis/pkg/token"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Method is how an identity was established.
type Method string

const (
	MethodPassword Method = "password"
	MethodToken    Method = "token"
)

// Identity represents the authenticated identity for a request.
type Identity struct {
	UserID   int64
	Username string
	GroupID  *int64
	Method   Method

	// Set for token authentication
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Request context
	RemoteIP net.IP
}

// FromPassword creates an Identity for a user that presented its password.
func FromPassword(user *model.User) *Identity {
	return &Identity{
		UserID:   user.ID,
		Username: user.Username,
		GroupID:  user.GroupID,
		Method:   MethodPassword,
	}
}

// FromToken creates an Identity for the user a validated token names.
func FromToken(user *model.User, claims *token.Claims) *Identity {
	id := &Identity{
		UserID:    user.ID,
		Username:  user.Username,
		GroupID:   user.GroupID,
		Method:    MethodToken,
		TokenID:   claims.ID,
		ExpiresAt: claims.Expiry(),
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	return id
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// HasExpiry returns true if the identity came from a token.
func (i *Identity) HasExpiry() bool {
	return i.Method == MethodToken && !i.ExpiresAt.IsZero()
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
