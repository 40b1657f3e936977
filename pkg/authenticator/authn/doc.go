// Package authn implements username and password authentication.
package authn
