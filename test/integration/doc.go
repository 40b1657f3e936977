// Package integration runs the godog features under features/ against a
// Portcullis server backed by PostgreSQL in a testcontainer.
//
//	INTEGRATION_TEST=1 go test -v ./test/integration/...
//	INTEGRATION_TEST=1 PORTCULLIS_FEATURE_TAGS=@tokens go test ./test/integration/...
//
// PORTCULLIS_FEATURES overrides the comma-separated feature paths.
//
// The server runs in-process with a controllable clock so scenarios can
// expire tokens without waiting. Tables are truncated before each scenario.
package integration
