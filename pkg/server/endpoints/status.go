package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/portcullis/pkg/server"
	"github.com/doodlesbykumbi/portcullis/pkg/server/store"
)

// StatusResponse represents the response from the status endpoint
type StatusResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// RegisterStatusEndpoints registers the public status endpoint
func RegisterStatusEndpoints(s *server.Server) {
	version := s.Version
	if version == "" {
		version = "dev"
	}

	s.Router.HandleFunc("/", handleStatus(s.HealthStore, version)).Methods("GET")
}

func handleStatus(health store.HealthStore, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := health.CheckConnectivity(r.Context()); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, StatusResponse{
				Status:   "error",
				Version:  version,
				Database: "unavailable",
			})
			return
		}

		respondWithJSON(w, http.StatusOK, StatusResponse{
			Status:   "ok",
			Version:  version,
			Database: "ok",
		})
	}
}
