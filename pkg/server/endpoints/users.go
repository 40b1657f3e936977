package endpoints

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	"github.com/doodlesbykumbi/portcullis/pkg/audit"
	"github.com/doodlesbykumbi/portcullis/pkg/provision"
	"github.com/doodlesbykumbi/portcullis/pkg/server"
	"github.com/doodlesbykumbi/portcullis/pkg/server/store"
)

// maxRequestBody bounds POST bodies
const maxRequestBody = 1 << 20

// UsersResponse represents the response from GET /api/users
type UsersResponse struct {
	Users []string `json:"users"`
}

// CreateUserResponse represents the response from POST /api/users
type CreateUserResponse struct {
	UserID int64 `json:"user_id"`
}

// RegisterUsersEndpoints registers user listing and provisioning
func RegisterUsersEndpoints(s *server.Server, api *mux.Router) {
	logger := s.Logger.Named("users")

	api.HandleFunc("/users", handleListUsers(s.UserStore, logger)).Methods("GET")
	api.HandleFunc("/users", handleCreateUser(s.Provisioner, s.Auditor, logger)).Methods("POST")
}

func handleListUsers(users store.UserStore, logger hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := users.ListUsernames(r.Context())
		if err != nil {
			logger.Error("failed to list users", "error", err)
			respondInternalError(w)
			return
		}
		respondWithJSON(w, http.StatusOK, UsersResponse{Users: names})
	}
}

func handleCreateUser(p *provision.Provisioner, auditor *audit.Auditor, logger hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, provision.ErrMalformedRequest.Error())
			return
		}

		event := audit.UserCreateEvent{
			User:     id.Username,
			ClientIP: ipString(id.RemoteIP),
		}

		var userID int64
		req, err := provision.ParseCreateUserRequest(body)
		if err == nil {
			if req.Username != nil {
				event.NewUser = *req.Username
			}
			userID, err = p.CreateUser(r.Context(), req)
		}
		if err != nil {
			var invalid *provision.ValidationError
			if !errors.As(err, &invalid) {
				logger.Error("failed to create user", "error", err)
				respondInternalError(w)
				return
			}

			event.ErrorMessage = invalid.Error()
			auditor.Log(r.Context(), event)
			respondWithError(w, http.StatusBadRequest, invalid.Error())
			return
		}

		event.NewUserID = userID
		event.Success = true
		auditor.Log(r.Context(), event)

		respondWithJSON(w, http.StatusOK, CreateUserResponse{UserID: userID})
	}
}
