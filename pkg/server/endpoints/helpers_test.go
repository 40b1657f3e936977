package endpoints

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/portcullis/pkg/config"
	"github.com/doodlesbykumbi/portcullis/pkg/db/dbtest"
	"github.com/doodlesbykumbi/portcullis/pkg/model"
	"github.com/doodlesbykumbi/portcullis/pkg/password"
	"github.com/doodlesbykumbi/portcullis/pkg/server"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	*dbtest.Fixture
	srv   *server.Server
	db    *gorm.DB
	clock *clock
	audit *bytes.Buffer
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	cfg := config.Default()
	cfg.SecretKey = strings.Repeat("s", 32)
	cfg.BcryptCost = bcrypt.MinCost
	for _, m := range mutate {
		m(cfg)
	}
	require.NoError(t, cfg.Validate())

	database := dbtest.NewSQLite(t)
	c := &clock{now: time.Unix(1_700_000_000, 0)}
	var auditBuf bytes.Buffer

	srv, err := server.NewServer(cfg, database, server.Options{
		Host:        "127.0.0.1",
		Port:        "0",
		AuditWriter: &auditBuf,
		Clock:       c.Now,
		Version:     "test",
	})
	require.NoError(t, err)
	RegisterAll(srv)

	return &testServer{
		Fixture: dbtest.NewFixture(t, database),
		srv:     srv,
		db:      database,
		clock:   c,
		audit:   &auditBuf,
	}
}

// user creates a user whose password is "secret"
func (ts *testServer) user(t *testing.T, name string, group *model.Group) *model.User {
	hash, err := password.NewBcrypt(bcrypt.MinCost).Hash("secret")
	require.NoError(t, err)
	return ts.User(name, hash, group)
}

type request struct {
	method string
	path   string
	body   string
	auth   func(*http.Request)
}

func basicAuth(user, pass string) func(*http.Request) {
	return func(r *http.Request) { r.SetBasicAuth(user, pass) }
}

func bearer(tok string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func (ts *testServer) do(req request) *httptest.ResponseRecorder {
	var body io.Reader
	if req.body != "" {
		body = strings.NewReader(req.body)
	}
	r := httptest.NewRequest(req.method, req.path, body)
	r.RemoteAddr = "192.0.2.10:40000"
	if req.auth != nil {
		req.auth(r)
	}
	w := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// login issues a token for user through the API
func (ts *testServer) login(t *testing.T, user string) string {
	t.Helper()
	w := ts.do(request{method: "POST", path: "/api/auth", auth: basicAuth(user, "secret")})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp TokenResponse
	decode(t, w, &resp)
	return resp.Token
}
