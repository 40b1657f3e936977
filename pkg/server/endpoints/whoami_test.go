package endpoints

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhoami(t *testing.T) {
	ts := newTestServer(t)
	eng := ts.Group("eng")
	bob := ts.user(t, "bob", eng)
	ts.user(t, "alice", nil)

	t.Run("password", func(t *testing.T) {
		w := ts.do(request{method: "GET", path: "/api/whoami", auth: basicAuth("bob", "secret")})
		require.Equal(t, http.StatusOK, w.Code)

		var resp WhoamiResponse
		decode(t, w, &resp)
		assert.Equal(t, bob.ID, resp.UserID)
		assert.Equal(t, "bob", resp.Username)
		require.NotNil(t, resp.Group)
		assert.Equal(t, "eng", *resp.Group)
		assert.Equal(t, "password", resp.Method)
		assert.Nil(t, resp.ExpiresAt)
	})

	t.Run("token", func(t *testing.T) {
		tok := ts.login(t, "alice")
		w := ts.do(request{method: "GET", path: "/api/whoami", auth: bearer(tok)})
		require.Equal(t, http.StatusOK, w.Code)

		var resp WhoamiResponse
		decode(t, w, &resp)
		assert.Equal(t, "alice", resp.Username)
		assert.Nil(t, resp.Group)
		assert.Equal(t, "token", resp.Method)
		require.NotNil(t, resp.ExpiresAt)
		assert.Equal(t, ts.clock.Now().Add(600*time.Second).Unix(), resp.ExpiresAt.Unix())
	})
}
