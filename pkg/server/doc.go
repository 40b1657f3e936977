// Package server provides the HTTP server for the Portcullis API.
//
// NewServer builds every service the API needs from a config.Config and a
// database handle: the token signer, the token-then-password authenticator
// chain, the permission registry, the user provisioner and the auditor.
// Routes are added by the endpoints subpackage:
//
//	srv, err := server.NewServer(cfg, db, server.Options{Port: "8080", Logger: logger})
//	if err != nil {
//	    return err
//	}
//	endpoints.RegisterAll(srv)
//	return srv.Start()
//
// Requests are logged through gorilla/handlers into the "http" logger.
package server
