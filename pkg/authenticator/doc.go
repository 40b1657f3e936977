// Package authenticator authenticates Portcullis requests.
//
// A request presents a credential, which is either a token issued by this
// service or a username, plus an optional password. Authentication is a
// small state machine run by Chain:
//
//  1. The token step validates the credential as a token. A valid token whose
//     user still exists authenticates. An expired token, or a valid token for a
//     deleted user, is rejected outright. A credential that does not parse as
//     a token, or whose signature does not verify, is not applicable.
//  2. The password step looks the credential up as a username and verifies
//     the password against the stored hash.
//
// Every rejection matches ErrUnauthorized. The specific reason is available
// through RejectedError for logs and audit, never for responses. Storage
// failures are returned as ordinary errors.
//
// # Built-in Authenticators
//
//   - authn: username and password - see [github.com/doodlesbykumbi/portcullis/pkg/authenticator/authn]
//   - authn-token: signed token - see [github.com/doodlesbykumbi/portcullis/pkg/authenticator/authn_token]
package authenticator
