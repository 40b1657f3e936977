// Command portcullisctl runs and administers Portcullis, a minimal identity
// and access-control service.
//
// Portcullis authenticates users by password or by a short-lived signed
// token, and answers authorization questions from groups, permissions and
// per-object permission bindings.
//
// # Architecture
//
//   - pkg/server: HTTP server and routing
//   - pkg/server/endpoints: REST API endpoint handlers
//   - pkg/server/store: storage interfaces and their gorm implementations
//   - pkg/authenticator: token-then-password authentication chain
//   - pkg/registry: permission lookups
//   - pkg/provision: user creation
//   - pkg/seed: groups, permissions and bindings from YAML
//   - pkg/token, pkg/password: signing and hashing
//   - pkg/audit: RFC5424 audit events
//   - pkg/config: configuration management
//
// # Quick Start
//
//	export PORTCULLIS_SECRET_KEY="$(portcullisctl secret-key generate)"
//	export DATABASE_URL=postgres://portcullis@localhost/portcullis?sslmode=disable
//
//	portcullisctl db migrate
//	portcullisctl seed load seed.yml
//	portcullisctl user create --username admin
//	portcullisctl server
//
// # Environment Variables
//
//   - DATABASE_URL: postgres:// URL, or sqlite://<path> for development
//   - PORTCULLIS_SECRET_KEY: token signing key, at least 32 bytes
//   - PORTCULLIS_CONFIG_PATH: directory holding portcullis.yml
//   - PORT, BIND_ADDRESS: server listen address
//
// See "portcullisctl configuration show" for every attribute.
package main
