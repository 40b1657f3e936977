package endpoints

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	"github.com/doodlesbykumbi/portcullis/pkg/audit"
	"github.com/doodlesbykumbi/portcullis/pkg/registry"
	"github.com/doodlesbykumbi/portcullis/pkg/server"
)

// PermissionsResponse represents the response from GET /api/permissions
type PermissionsResponse struct {
	Permissions []string `json:"permissions"`
}

// PermissionCheckResponse represents the response from GET /api/permissions/{name}
type PermissionCheckResponse struct {
	Permission string `json:"permission"`
	Granted    bool   `json:"granted"`
}

// ObjectCheckResponse represents the response from GET /api/objects
type ObjectCheckResponse struct {
	Path        string   `json:"path"`
	Permissions []string `json:"permissions"`
	Allowed     bool     `json:"allowed"`
}

// RegisterPermissionsEndpoints registers the caller-scoped authorization checks
func RegisterPermissionsEndpoints(s *server.Server, api *mux.Router) {
	logger := s.Logger.Named("permissions")

	api.HandleFunc("/permissions", handleListPermissions(s.Registry, logger)).Methods("GET")
	api.HandleFunc("/permissions/{name}", handleCheckPermission(s.Registry, s.Auditor, logger)).Methods("GET")
	api.HandleFunc("/objects", handleCheckObject(s.Registry, s.Auditor, logger)).Methods("GET")
}

func handleListPermissions(reg *registry.Registry, logger hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}

		perms, err := reg.UserPermissions(r.Context(), id.UserID)
		if err != nil {
			logger.Error("failed to list permissions", "user_id", id.UserID, "error", err)
			respondInternalError(w)
			return
		}
		respondWithJSON(w, http.StatusOK, PermissionsResponse{Permissions: perms})
	}
}

func handleCheckPermission(reg *registry.Registry, auditor *audit.Auditor, logger hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}

		name, err := url.PathUnescape(mux.Vars(r)["name"])
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid permission name")
			return
		}

		granted, err := reg.UserHasPermission(r.Context(), id.UserID, name)
		if err != nil {
			logger.Error("failed to check permission", "user_id", id.UserID, "permission", name, "error", err)
			respondInternalError(w)
			return
		}

		auditor.Log(r.Context(), audit.AuthorizationCheckEvent{
			User:       id.Username,
			ClientIP:   ipString(id.RemoteIP),
			Permission: name,
			Allowed:    granted,
		})

		respondWithJSON(w, http.StatusOK, PermissionCheckResponse{Permission: name, Granted: granted})
	}
}

func handleCheckObject(reg *registry.Registry, auditor *audit.Auditor, logger hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}

		path := r.URL.Query().Get("path")
		if path == "" {
			respondWithError(w, http.StatusBadRequest, "missing path")
			return
		}

		perms, err := reg.PathPermissions(r.Context(), path)
		if err != nil {
			logger.Error("failed to list object permissions", "path", path, "error", err)
			respondInternalError(w)
			return
		}
		allowed, err := reg.CanAccess(r.Context(), id.UserID, path)
		if err != nil {
			logger.Error("failed to check object access", "user_id", id.UserID, "path", path, "error", err)
			respondInternalError(w)
			return
		}

		auditor.Log(r.Context(), audit.AuthorizationCheckEvent{
			User:       id.Username,
			ClientIP:   ipString(id.RemoteIP),
			ObjectPath: path,
			Allowed:    allowed,
		})

		respondWithJSON(w, http.StatusOK, ObjectCheckResponse{Path: path, Permissions: perms, Allowed: allowed})
	}
}
