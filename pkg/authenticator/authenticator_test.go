package authenticator

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/portcullis/pkg/identity"
)

// mockAuthenticator is a testify mock for a single step
type mockAuthenticator struct {
	mock.Mock
	name string
}

func (m *mockAuthenticator) Name() string {
	return m.name
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, input Input) (*identity.Identity, error) {
	args := m.Called(ctx, input)
	id, _ := args.Get(0).(*identity.Identity)
	return id, args.Error(1)
}

func (m *mockAuthenticator) Status(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newMocks() (*mockAuthenticator, *mockAuthenticator) {
	return &mockAuthenticator{name: "token"}, &mockAuthenticator{name: "password"}
}

func TestRejectedError(t *testing.T) {
	err := Reject("authn", ErrBadPassword)

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, ErrBadPassword)
	assert.NotErrorIs(t, err, ErrUnknownUser)
	assert.True(t, IsRejected(err))
	assert.Contains(t, err.Error(), "authn")

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "authn", rejected.Step)

	assert.False(t, IsRejected(errors.New("connection reset")))
}

func TestChain_EmptyCredential(t *testing.T) {
	tok, pw := newMocks()
	chain := NewChain(tok, pw, nil)

	_, err := chain.Authenticate(context.Background(), Input{Password: "secret"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, ErrEmptyCredential)
	tok.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	pw.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
}

func TestChain_TokenSucceeds(t *testing.T) {
	tok, pw := newMocks()
	chain := NewChain(tok, pw, nil)
	input := Input{Credential: "tok", ClientIP: net.ParseIP("10.0.0.1")}

	tok.On("Authenticate", mock.Anything, input).Return(&identity.Identity{UserID: 1, Method: identity.MethodToken}, nil)

	id, err := chain.Authenticate(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.UserID)
	assert.Equal(t, input.ClientIP, id.RemoteIP)
	pw.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
}

func TestChain_FallsThroughWhenNotApplicable(t *testing.T) {
	tok, pw := newMocks()
	chain := NewChain(tok, pw, nil)
	input := Input{Credential: "bob", Password: "secret"}

	tok.On("Authenticate", mock.Anything, input).Return(nil, ErrNotApplicable)
	pw.On("Authenticate", mock.Anything, input).Return(&identity.Identity{UserID: 2, Method: identity.MethodPassword}, nil)

	id, err := chain.Authenticate(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id.UserID)
	tok.AssertExpectations(t)
	pw.AssertExpectations(t)
}

func TestChain_TokenRejectionDoesNotFallThrough(t *testing.T) {
	tok, pw := newMocks()
	chain := NewChain(tok, pw, nil)
	input := Input{Credential: "expired-token"}

	tok.On("Authenticate", mock.Anything, input).Return(nil, Reject("token", errors.New("token expired")))

	_, err := chain.Authenticate(context.Background(), input)
	assert.ErrorIs(t, err, ErrUnauthorized)
	pw.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
}

func TestChain_InternalErrorsAreNotRejections(t *testing.T) {
	tok, pw := newMocks()
	chain := NewChain(tok, pw, nil)
	input := Input{Credential: "bob", Password: "secret"}

	tok.On("Authenticate", mock.Anything, input).Return(nil, ErrNotApplicable)
	pw.On("Authenticate", mock.Anything, input).Return(nil, errors.New("connection reset"))

	_, err := chain.Authenticate(context.Background(), input)
	require.Error(t, err)
	assert.False(t, IsRejected(err))
}

func TestChain_PasswordRejected(t *testing.T) {
	tok, pw := newMocks()
	chain := NewChain(tok, pw, nil)
	input := Input{Credential: "bob", Password: "wrong"}

	tok.On("Authenticate", mock.Anything, input).Return(nil, ErrNotApplicable)
	pw.On("Authenticate", mock.Anything, input).Return(nil, Reject("password", ErrBadPassword))

	_, err := chain.Authenticate(context.Background(), input)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, ErrBadPassword)
}

func TestChain_Status(t *testing.T) {
	tok, pw := newMocks()
	chain := NewChain(tok, pw, nil)
	assert.Equal(t, "chain", chain.Name())

	tok.On("Status", mock.Anything).Return(nil)
	pw.On("Status", mock.Anything).Return(errors.New("database down")).Once()
	pw.On("Status", mock.Anything).Return(nil)

	assert.Error(t, chain.Status(context.Background()))
	assert.NoError(t, chain.Status(context.Background()))
}
