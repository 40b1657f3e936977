package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	"github.com/doodlesbykumbi/portcullis/pkg/server"
	"github.com/doodlesbykumbi/portcullis/pkg/server/store"
)

// WhoamiResponse represents the response from the /api/whoami endpoint
type WhoamiResponse struct {
	UserID    int64      `json:"user_id"`
	Username  string     `json:"username"`
	Group     *string    `json:"group"`
	Method    string     `json:"method"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// RegisterWhoamiEndpoint registers the /api/whoami endpoint
func RegisterWhoamiEndpoint(s *server.Server, api *mux.Router) {
	api.HandleFunc("/whoami", handleWhoami(s.PermissionStore, s.Logger.Named("whoami"))).Methods("GET")
}

func handleWhoami(perms store.PermissionStore, logger hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}

		response := WhoamiResponse{
			UserID:   id.UserID,
			Username: id.Username,
			Method:   string(id.Method),
		}

		if id.GroupID != nil {
			group, err := perms.GroupByID(r.Context(), *id.GroupID)
			switch {
			case err == nil:
				response.Group = &group.GroupName
			case !errors.Is(err, store.ErrNotFound):
				logger.Error("failed to look up group", "group_id", *id.GroupID, "error", err)
				respondInternalError(w)
				return
			}
		}

		if id.HasExpiry() {
			expiresAt := id.ExpiresAt.UTC()
			response.ExpiresAt = &expiresAt
		}

		respondWithJSON(w, http.StatusOK, response)
	}
}
