// Package middleware provides HTTP middleware for the Portcullis server.
//
// Authenticator reads the Authorization header, runs the authenticator
// chain and stores the resulting identity.Identity in the request context.
// Every authentication failure produces the same 401 response so callers
// cannot tell which part of a credential was wrong.
package middleware
