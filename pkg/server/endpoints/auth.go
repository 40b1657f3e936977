package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	"github.com/doodlesbykumbi/portcullis/pkg/audit"
	"github.com/doodlesbykumbi/portcullis/pkg/server"
	"github.com/doodlesbykumbi/portcullis/pkg/token"
)

// TokenResponse represents the response from POST /api/auth
type TokenResponse struct {
	Token    string `json:"token"`
	Duration int64  `json:"duration"`
}

// RegisterAuthEndpoints registers token issuance
func RegisterAuthEndpoints(s *server.Server, api *mux.Router) {
	api.HandleFunc("/auth", handleIssueToken(
		s.Signer,
		s.Config.MaxTokenDuration(),
		s.Auditor,
		s.Logger.Named("auth"),
	)).Methods("POST")
}

// requestedTTL reads ?duration=N, in seconds, bounded by max
func requestedTTL(r *http.Request, fallback, max time.Duration) (time.Duration, bool) {
	raw := r.URL.Query().Get("duration")
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || int64(n) > int64(max/time.Second) {
		return 0, false
	}
	return time.Duration(n) * time.Second, true
}

func handleIssueToken(signer *token.Signer, max time.Duration, auditor *audit.Auditor, logger hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}

		ttl, ok := requestedTTL(r, signer.DefaultTTL(), max)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid duration")
			return
		}

		issued, err := signer.Issue(id.UserID, ttl)
		if err != nil {
			logger.Error("failed to issue token", "user_id", id.UserID, "error", err)
			respondInternalError(w)
			return
		}

		auditor.Log(r.Context(), audit.TokenIssueEvent{
			User:      id.Username,
			ClientIP:  ipString(id.RemoteIP),
			TokenID:   issued.ID,
			ExpiresAt: issued.ExpiresAt,
			Duration:  issued.TTL,
		})

		respondWithJSON(w, http.StatusOK, TokenResponse{
			Token:    issued.Token,
			Duration: int64(issued.TTL / time.Second),
		})
	}
}
