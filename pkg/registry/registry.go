package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/doodlesbykumbi/portcullis/pkg/model"
	"github.com/doodlesbykumbi/portcullis/pkg/server/store"
)

// Registry evaluates permission membership over the store
type Registry struct {
	users store.UserStore
	perms store.PermissionStore
}

// New creates a Registry
func New(users store.UserStore, perms store.PermissionStore) *Registry {
	return &Registry{users: users, perms: perms}
}

// PermissionExists reports whether the permission is in the catalog
func (r *Registry) PermissionExists(ctx context.Context, name string) (bool, error) {
	_, err := r.perms.PermissionByName(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to look up permission %q: %w", name, err)
	}
}

// GroupExists returns the named group, or nil when it doesn't exist
func (r *Registry) GroupExists(ctx context.Context, name string) (*model.Group, error) {
	group, err := r.perms.GroupByName(ctx, name)
	switch {
	case err == nil:
		return group, nil
	case errors.Is(err, store.ErrNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("failed to look up group %q: %w", name, err)
	}
}

// UserHasPermission reports whether the user holds the permission directly or
// through its group
func (r *Registry) UserHasPermission(ctx context.Context, userID int64, permName string) (bool, error) {
	perm, err := r.perms.PermissionByName(ctx, permName)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up permission %q: %w", permName, err)
	}

	user, err := r.user(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	return r.holds(ctx, user, perm.ID)
}

// PathPermissions returns the sorted names of permissions bound to exactly path
func (r *Registry) PathPermissions(ctx context.Context, path string) ([]string, error) {
	perms, err := r.perms.PermissionsForPath(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions for %q: %w", path, err)
	}
	return names(perms), nil
}

// CanAccess reports whether the user holds any permission bound to path.
// A path without bindings is not accessible.
func (r *Registry) CanAccess(ctx context.Context, userID int64, path string) (bool, error) {
	perms, err := r.perms.PermissionsForPath(ctx, path)
	if err != nil {
		return false, fmt.Errorf("failed to list permissions for %q: %w", path, err)
	}
	if len(perms) == 0 {
		return false, nil
	}

	user, err := r.user(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}

	for _, perm := range perms {
		ok, err := r.holds(ctx, user, perm.ID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// UserPermissions returns the sorted names of every permission the user holds
func (r *Registry) UserPermissions(ctx context.Context, userID int64) ([]string, error) {
	user, err := r.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return []string{}, nil
	}

	perms, err := r.perms.PermissionsForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions for user %d: %w", user.ID, err)
	}
	if user.HasGroup() {
		groupPerms, err := r.perms.PermissionsForGroup(ctx, *user.GroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to list permissions for group %d: %w", *user.GroupID, err)
		}
		perms = append(perms, groupPerms...)
	}
	return names(perms), nil
}

// user returns nil without error when the user doesn't exist
func (r *Registry) user(ctx context.Context, userID int64) (*model.User, error) {
	user, err := r.users.UserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %d: %w", userID, err)
	}
	return user, nil
}

func (r *Registry) holds(ctx context.Context, user *model.User, permID int64) (bool, error) {
	ok, err := r.perms.UserHasPermission(ctx, user.ID, permID)
	if err != nil {
		return false, fmt.Errorf("failed to check user binding: %w", err)
	}
	if ok || !user.HasGroup() {
		return ok, nil
	}

	ok, err = r.perms.GroupHasPermission(ctx, *user.GroupID, permID)
	if err != nil {
		return false, fmt.Errorf("failed to check group binding: %w", err)
	}
	return ok, nil
}

// names returns sorted, de-duplicated permission names
func names(perms []model.Permission) []string {
	seen := make(map[string]bool, len(perms))
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		if !seen[p.PermName] {
			seen[p.PermName] = true
			out = append(out, p.PermName)
		}
	}
	sort.Strings(out)
	return out
}
