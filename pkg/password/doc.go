// Package password hashes and verifies user passwords.
//
// Two adaptive algorithms are available: bcrypt (the default) and argon2id.
// Hashes are self-describing, so Verify works for any stored hash no matter
// which algorithm is currently configured for new passwords.
//
//	hasher, err := password.New("bcrypt", 12)
//	hash, err := hasher.Hash("s3cret")
//	ok := hasher.Verify("s3cret", hash)
//
// Plaintext passwords are never stored or logged.
package password
