// Package authn_token implements authentication with tokens issued by the
// token signer. The token's user must still exist.
package authn_token
