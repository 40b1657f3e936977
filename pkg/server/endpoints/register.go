package endpoints

import (
	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/portcullis/pkg/server"
	"github.com/doodlesbykumbi/portcullis/pkg/server/middleware"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	api := protectedRouter(srv)

	RegisterStatusEndpoints(srv)
	RegisterAuthEndpoints(srv, api)
	RegisterUsersEndpoints(srv, api)
	RegisterWhoamiEndpoint(srv, api)
	RegisterPermissionsEndpoints(srv, api)
}

// protectedRouter returns the /api subrouter behind authentication
func protectedRouter(srv *server.Server) *mux.Router {
	authn := middleware.NewAuthenticator(
		srv.Authenticator,
		srv.Auditor,
		srv.Config,
		srv.Logger.Named("middleware"),
	)

	api := srv.Router.PathPrefix("/api").Subrouter()
	api.Use(authn.Middleware)
	return api
}
