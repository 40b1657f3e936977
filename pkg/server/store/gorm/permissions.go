package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/portcullis/pkg/model"
	"github.com/doodlesbykumbi/portcullis/pkg/server/store"
)

// Ensure PermissionStore implements store.PermissionStore
var _ store.PermissionStore = (*PermissionStore)(nil)

// PermissionStore implements store.PermissionStore using GORM
type PermissionStore struct {
	db *gorm.DB
}

// NewPermissionStore creates a new PermissionStore
func NewPermissionStore(db *gorm.DB) *PermissionStore {
	return &PermissionStore{db: db}
}

// GroupByName returns the named group
func (s *PermissionStore) GroupByName(ctx context.Context, name string) (*model.Group, error) {
	return groupByName(s.db.WithContext(ctx), name)
}

// GroupByID returns the group with the given id
func (s *PermissionStore) GroupByID(ctx context.Context, id int64) (*model.Group, error) {
	var group model.Group
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		return nil, translate(err)
	}
	return &group, nil
}

// PermissionByName returns the named permission
func (s *PermissionStore) PermissionByName(ctx context.Context, name string) (*model.Permission, error) {
	return permissionByName(s.db.WithContext(ctx), name)
}

// UserHasPermission checks for a direct user binding
func (s *PermissionStore) UserHasPermission(ctx context.Context, userID, permID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UserPerm{}).
		Where("user_id = ? AND perm_id = ?", userID, permID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GroupHasPermission checks for a group binding
func (s *PermissionStore) GroupHasPermission(ctx context.Context, groupID, permID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.GroupPerm{}).
		Where("group_id = ? AND perm_id = ?", groupID, permID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PermissionsForPath returns the permissions bound to exactly path
func (s *PermissionStore) PermissionsForPath(ctx context.Context, path string) ([]model.Permission, error) {
	return s.boundPermissions(ctx, "object_perm", "object_path", path)
}

// PermissionsForUser returns the permissions bound directly to the user
func (s *PermissionStore) PermissionsForUser(ctx context.Context, userID int64) ([]model.Permission, error) {
	return s.boundPermissions(ctx, "users_perm", "user_id", userID)
}

// PermissionsForGroup returns the permissions bound to the group
func (s *PermissionStore) PermissionsForGroup(ctx context.Context, groupID int64) ([]model.Permission, error) {
	return s.boundPermissions(ctx, "groups_perm", "group_id", groupID)
}

// boundPermissions joins a binding table to the permission catalog. table and
// column are never user input.
func (s *PermissionStore) boundPermissions(ctx context.Context, table, column string, value interface{}) ([]model.Permission, error) {
	perms := make([]model.Permission, 0)
	err := s.db.WithContext(ctx).Raw(`
		SELECT DISTINCT p.id, p.perm_name
		FROM permissions p
		JOIN `+table+` b ON b.perm_id = p.id
		WHERE b.`+column+` = ?
		ORDER BY p.perm_name
	`, value).Scan(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

func groupByName(db *gorm.DB, name string) (*model.Group, error) {
	var group model.Group
	if err := db.Where("group_name = ?", name).First(&group).Error; err != nil {
		return nil, translate(err)
	}
	return &group, nil
}

func permissionByName(db *gorm.DB, name string) (*model.Permission, error) {
	var perm model.Permission
	if err := db.Where("perm_name = ?", name).First(&perm).Error; err != nil {
		return nil, translate(err)
	}
	return &perm, nil
}
