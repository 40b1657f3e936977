// Package token issues and validates Portcullis authentication tokens.
//
// Tokens are compact HS256 JWTs signed with a process-wide secret. Each token
// binds a user id and carries an absolute expiry derived from now + ttl.
//
// # Basic Usage
//
//	signer, err := token.NewSigner(token.Config{Key: key, Issuer: "portcullis"})
//	issued, err := signer.Issue(userID, 0) // default ttl, 600s
//
//	claims, err := signer.Validate(issued.Token)
//	switch {
//	case errors.Is(err, token.ErrExpired):
//	case errors.Is(err, token.ErrSignatureInvalid):
//	case errors.Is(err, token.ErrMalformed):
//	}
//
// A token is valid while now < expiry; at the expiry second it is rejected.
package token
