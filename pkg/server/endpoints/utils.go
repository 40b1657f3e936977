package endpoints

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/doodlesbykumbi/portcullis/pkg/identity"
)

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondInternalError(w http.ResponseWriter) {
	respondWithError(w, http.StatusInternalServerError, "internal error")
}

// caller returns the identity set by the authentication middleware
func caller(w http.ResponseWriter, r *http.Request) (*identity.Identity, bool) {
	id, ok := identity.Get(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
	}
	return id, ok
}

func ipString(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}
