// Package identity provides authenticated identity management for Portcullis
// requests.
//
// An Identity is the outcome of successful authentication: the user it
// resolved to, how it was established (password or token) and, for tokens,
// the token's id and validity window.
//
// # Basic Usage
//
//	// Create identity from a validated token
//	id := identity.FromToken(user, claims)
//
//	// Add request context
//	id.WithRemoteIP(clientIP)
//
//	// Store in request context
//	ctx = identity.Set(ctx, id)
//
//	// Retrieve from context
//	id, ok := identity.Get(ctx)
package identity
