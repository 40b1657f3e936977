// Package seed loads administrative reference data into Portcullis.
//
// A seed document declares groups, the permission catalog and the bindings
// between them. It is the only way groups, permissions and object bindings
// are provisioned; the HTTP API only creates users.
//
// # Document Format
//
//	groups: [eng, ops]
//	permissions: [read, write, admin]
//	group_permissions:
//	  eng: [read, write]
//	object_permissions:
//	  /reports: [read]
//	user_permissions:
//	  bob: [admin]
//
// # Basic Usage
//
//	l := seed.NewLoader(storegorm.NewAdminStore(db), logger)
//	result, err := l.LoadFromFile(ctx, "seed.yml")
//
// # Semantics
//
// The whole document is applied in one transaction. Groups and permissions
// are created if missing. Group and object bindings are replaced so they
// match the document for every group and path it mentions; groups and paths
// it does not mention are left alone. User bindings are additive. A reference
// to a group, permission or user that neither exists nor is declared aborts
// the load, and every such reference is reported.
//
// Use WithDryRun(true) to check a document against the database without
// committing anything.
package seed
