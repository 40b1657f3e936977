package store

import (
	"context"

	"github.com/doodlesbykumbi/portcullis/pkg/model"
)

// AdminStore abstracts administrative writes of reference data and bindings.
// Lookups are repeated here so a transaction sees its own writes.
type AdminStore interface {
	// Transaction runs fn against a store bound to a single transaction.
	// The transaction is rolled back if fn returns an error.
	Transaction(ctx context.Context, fn func(tx AdminStore) error) error

	// EnsureGroup returns the named group, creating it if missing
	EnsureGroup(ctx context.Context, name string) (*model.Group, error)

	// EnsurePermission returns the named permission, creating it if missing
	EnsurePermission(ctx context.Context, name string) (*model.Permission, error)

	GroupByName(ctx context.Context, name string) (*model.Group, error)
	PermissionByName(ctx context.Context, name string) (*model.Permission, error)
	UserByUsername(ctx context.Context, username string) (*model.User, error)

	// GrantUserPermission binds a permission to a user unless already bound
	GrantUserPermission(ctx context.Context, userID, permID int64) error

	// GrantGroupPermission binds a permission to a group unless already bound
	GrantGroupPermission(ctx context.Context, groupID, permID int64) error

	// RevokeGroupPermission removes every binding of the permission to the group
	RevokeGroupPermission(ctx context.Context, groupID, permID int64) error

	// ReplaceGroupPermissions makes permIDs the complete set bound to the group
	ReplaceGroupPermissions(ctx context.Context, groupID int64, permIDs []int64) error

	// ReplaceObjectPermissions makes permIDs the complete set bound to path
	ReplaceObjectPermissions(ctx context.Context, path string, permIDs []int64) error
}
