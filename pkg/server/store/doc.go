// Package store provides storage abstractions for the Portcullis server.
//
// This package defines interfaces for database operations, allowing the
// authenticator, registry, provisioning and seed loader to be decoupled from
// the specific database implementation.
//
// # Available Stores
//
//   - UserStore: user records (create, lookup by id or username, listing)
//   - PermissionStore: read-only permission, group and binding lookups
//   - AdminStore: transactional writes of reference data and bindings
//   - HealthStore: database connectivity
//
// # Usage
//
//	users := gorm.NewUserStore(db)
//	user, err := users.UserByUsername(ctx, "bob")
//	if err != nil {
//	    if errors.Is(err, store.ErrNotFound) {
//	        // Handle not found
//	    }
//	}
package store
