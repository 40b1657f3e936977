// Package endpoints registers the Portcullis HTTP API on a server.Server.
//
// Routes:
//
//   - GET  /                        - status (public)
//   - POST /api/auth                - issue a token
//   - GET  /api/users               - list usernames
//   - POST /api/users               - create a user
//   - GET  /api/whoami              - describe the caller
//   - GET  /api/permissions         - the caller's effective permissions
//   - GET  /api/permissions/{name}  - check one permission
//   - GET  /api/objects?path=P      - check access to an object path
//
// Everything under /api requires authentication through
// middleware.Authenticator.
package endpoints
