package middleware

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/portcullis/pkg/audit"
	"github.com/doodlesbykumbi/portcullis/pkg/authenticator"
	"github.com/doodlesbykumbi/portcullis/pkg/authenticator/authn"
	"github.com/doodlesbykumbi/portcullis/pkg/authenticator/authn_token"
	"github.com/doodlesbykumbi/portcullis/pkg/db/dbtest"
	"github.com/doodlesbykumbi/portcullis/pkg/identity"
	storegorm "github.com/doodlesbykumbi/portcullis/pkg/server/store/gorm"
	"github.com/doodlesbykumbi/portcullis/pkg/token"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Name() string {
	return "mock"
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, input authenticator.Input) (*identity.Identity, error) {
	args := m.Called(input.Credential, input.Password)
	id, _ := args.Get(0).(*identity.Identity)
	return id, args.Error(1)
}

func (m *mockAuthenticator) Status(ctx context.Context) error {
	return nil
}

type trustList []string

func (l trustList) IsTrustedProxy(ip string) bool {
	for _, p := range l {
		if p == ip {
			return true
		}
	}
	return false
}

func newMiddleware(m *mockAuthenticator) (*Authenticator, *bytes.Buffer) {
	var buf bytes.Buffer
	auditor := audit.New(audit.Options{Enabled: true, Writer: &buf})
	return NewAuthenticator(m, auditor, trustList{"10.0.0.1"}, nil), &buf
}

func okHandler(t *testing.T, want string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		require.True(t, ok)
		assert.Equal(t, want, id.Username)
		w.WriteHeader(http.StatusNoContent)
	})
}

func assertUnauthorized(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, `Basic realm="portcullis"`, w.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
}

func TestCredentials(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		credential string
		password   string
		present    bool
	}{
		{name: "missing", header: "", present: false},
		{name: "basic", header: basic("bob", "secret"), credential: "bob", password: "secret", present: true},
		{name: "basic token", header: basic("a.b.c", "unused"), credential: "a.b.c", password: "unused", present: true},
		{name: "bearer", header: "Bearer a.b.c", credential: "a.b.c", present: true},
		{name: "bearer lowercase", header: "bearer  a.b.c ", credential: "a.b.c", present: true},
		{name: "unknown scheme", header: "Token abc", present: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			credential, password, present := Credentials(req)
			assert.Equal(t, tt.credential, credential)
			assert.Equal(t, tt.password, password)
			assert.Equal(t, tt.present, present)
		})
	}
}

func basic(user, pass string) string {
	req := httptest.NewRequest("GET", "/", nil)
	req.SetBasicAuth(user, pass)
	return req.Header.Get("Authorization")
}

func TestClientIP(t *testing.T) {
	proxies := trustList{"10.0.0.1"}

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.7:5000"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "192.0.2.7", ClientIP(req, proxies).String(), "untrusted peers cannot forward")

	req.RemoteAddr = "10.0.0.1:5000"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(req, proxies).String())

	req.Header.Set("X-Forwarded-For", "garbage")
	assert.Equal(t, "10.0.0.1", ClientIP(req, proxies).String())
}

func TestMiddleware_MissingAuthorization(t *testing.T) {
	m := &mockAuthenticator{}
	mw, buf := newMiddleware(m)

	w := httptest.NewRecorder()
	mw.Middleware(okHandler(t, "")).ServeHTTP(w, httptest.NewRequest("GET", "/api/users", nil))

	assertUnauthorized(t, w)
	assert.Empty(t, buf.String())
	m.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
}

func TestMiddleware_Authenticated(t *testing.T) {
	m := &mockAuthenticator{}
	m.On("Authenticate", "bob", "secret").Return(&identity.Identity{UserID: 1, Username: "bob", Method: identity.MethodPassword}, nil)
	mw, buf := newMiddleware(m)

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.SetBasicAuth("bob", "secret")
	w := httptest.NewRecorder()
	mw.Middleware(okHandler(t, "bob")).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, buf.String(), `user="bob"`)
	assert.Contains(t, buf.String(), "successfully authenticated")
	m.AssertExpectations(t)
}

func TestMiddleware_RejectionsLookIdentical(t *testing.T) {
	m := &mockAuthenticator{}
	m.On("Authenticate", "bob", "wrong").Return(nil, authenticator.Reject(authn.Name, authenticator.ErrBadPassword))
	m.On("Authenticate", "ghost", "x").Return(nil, authenticator.Reject(authn.Name, authenticator.ErrUnknownUser))
	m.On("Authenticate", "a.b.c", "").Return(nil, authenticator.Reject(authn_token.Name, errors.New("token expired")))
	mw, buf := newMiddleware(m)

	var bodies []string
	for _, set := range []func(*http.Request){
		func(r *http.Request) { r.SetBasicAuth("bob", "wrong") },
		func(r *http.Request) { r.SetBasicAuth("ghost", "x") },
		func(r *http.Request) { r.Header.Set("Authorization", "Bearer a.b.c") },
	} {
		req := httptest.NewRequest("GET", "/api/users", nil)
		set(req)
		w := httptest.NewRecorder()
		mw.Middleware(okHandler(t, "")).ServeHTTP(w, req)
		assertUnauthorized(t, w)
		bodies = append(bodies, w.Body.String())
	}
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[0], bodies[2])

	out := buf.String()
	assert.Contains(t, out, `user="bob"`)
	assert.NotContains(t, out, "a.b.c", "tokens are never audited")
	assert.NotContains(t, out, "wrong", "passwords are never audited")
}

func TestMiddleware_ForeignTokenIsNotAudited(t *testing.T) {
	database := dbtest.NewSQLite(t)
	users := storegorm.NewUserStore(database)
	signer, err := token.NewSigner(token.Config{Key: bytes.Repeat([]byte("s"), 32)})
	require.NoError(t, err)
	chain := authenticator.NewChain(
		authn_token.New(signer, users),
		authn.New(users, storegorm.NewHealthStore(database)),
		nil,
	)

	foreign, err := token.NewSigner(token.Config{Key: bytes.Repeat([]byte("z"), 32)})
	require.NoError(t, err)
	issued, err := foreign.Issue(1, 0)
	require.NoError(t, err)

	tests := []struct {
		name string
		set  func(*http.Request)
	}{
		{name: "bearer", set: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+issued.Token) }},
		{name: "basic username", set: func(r *http.Request) { r.SetBasicAuth(issued.Token, "") }},
		{name: "basic username with password", set: func(r *http.Request) { r.SetBasicAuth(issued.Token, "x") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			mw := NewAuthenticator(chain, audit.New(audit.Options{Enabled: true, Writer: &buf}), nil, nil)

			req := httptest.NewRequest("GET", "/api/users", nil)
			tt.set(req)
			w := httptest.NewRecorder()
			mw.Middleware(okHandler(t, "")).ServeHTTP(w, req)

			assertUnauthorized(t, w)
			out := buf.String()
			assert.Contains(t, out, "- failed to authenticate")
			assert.NotContains(t, out, issued.Token)
			assert.NotContains(t, out, strings.SplitN(issued.Token, ".", 2)[0])
		})
	}
}

func TestRejectedUser(t *testing.T) {
	basic := func(user string) *http.Request {
		r := httptest.NewRequest("GET", "/", nil)
		r.SetBasicAuth(user, "x")
		return r
	}
	bearer := httptest.NewRequest("GET", "/", nil)
	bearer.Header.Set("Authorization", "Bearer bob")

	assert.Equal(t, "bob", rejectedUser(basic("bob"), "bob", authn.Name))
	assert.Equal(t, "", rejectedUser(basic("bob"), "bob", authn_token.Name))
	assert.Equal(t, "", rejectedUser(bearer, "bob", authn.Name))
	assert.Equal(t, "", rejectedUser(basic("a.b.c!"), "a.b.c!", authn.Name))
	assert.Equal(t, "", rejectedUser(basic(strings.Repeat("a", 40)), strings.Repeat("a", 40), authn.Name))
}

func TestMiddleware_InternalError(t *testing.T) {
	m := &mockAuthenticator{}
	m.On("Authenticate", "bob", "secret").Return(nil, errors.New("connection refused"))
	mw, _ := newMiddleware(m)

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.SetBasicAuth("bob", "secret")
	w := httptest.NewRecorder()
	mw.Middleware(okHandler(t, "")).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}

func TestIPString(t *testing.T) {
	assert.Equal(t, "", ipString(nil))
	assert.Equal(t, "192.0.2.1", ipString(net.ParseIP("192.0.2.1")))
}
