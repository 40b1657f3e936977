package store

import (
	"context"

	"github.com/doodlesbykumbi/portcullis/pkg/model"
)

// PermissionStore abstracts read access to permissions, groups and bindings
type PermissionStore interface {
	// GroupByName returns ErrNotFound when the group doesn't exist
	GroupByName(ctx context.Context, name string) (*model.Group, error)

	// GroupByID returns ErrNotFound when the group doesn't exist
	GroupByID(ctx context.Context, id int64) (*model.Group, error)

	// PermissionByName returns ErrNotFound when the permission doesn't exist
	PermissionByName(ctx context.Context, name string) (*model.Permission, error)

	// UserHasPermission reports a direct user binding
	UserHasPermission(ctx context.Context, userID, permID int64) (bool, error)

	// GroupHasPermission reports a group binding
	GroupHasPermission(ctx context.Context, groupID, permID int64) (bool, error)

	// PermissionsForPath returns the distinct permissions bound to path
	PermissionsForPath(ctx context.Context, path string) ([]model.Permission, error)

	// PermissionsForUser returns the distinct permissions bound directly to the user
	PermissionsForUser(ctx context.Context, userID int64) ([]model.Permission, error)

	// PermissionsForGroup returns the distinct permissions bound to the group
	PermissionsForGroup(ctx context.Context, groupID int64) ([]model.Permission, error)
}
