package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/portcullis/pkg/model"
	"github.com/doodlesbykumbi/portcullis/pkg/server/store"
)

// Ensure AdminStore implements store.AdminStore
var _ store.AdminStore = (*AdminStore)(nil)

// AdminStore implements store.AdminStore using GORM
type AdminStore struct {
	db *gorm.DB
}

// NewAdminStore creates a new AdminStore
func NewAdminStore(db *gorm.DB) *AdminStore {
	return &AdminStore{db: db}
}

// Transaction runs fn inside a database transaction
func (s *AdminStore) Transaction(ctx context.Context, fn func(tx store.AdminStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AdminStore{db: tx})
	})
}

// EnsureGroup returns the named group, creating it if missing
func (s *AdminStore) EnsureGroup(ctx context.Context, name string) (*model.Group, error) {
	db := s.db.WithContext(ctx)
	group, err := groupByName(db, name)
	if err == nil {
		return group, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	group = &model.Group{GroupName: name}
	if err := db.Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// EnsurePermission returns the named permission, creating it if missing
func (s *AdminStore) EnsurePermission(ctx context.Context, name string) (*model.Permission, error) {
	db := s.db.WithContext(ctx)
	perm, err := permissionByName(db, name)
	if err == nil {
		return perm, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	perm = &model.Permission{PermName: name}
	if err := db.Create(perm).Error; err != nil {
		return nil, err
	}
	return perm, nil
}

// GroupByName returns the named group
func (s *AdminStore) GroupByName(ctx context.Context, name string) (*model.Group, error) {
	return groupByName(s.db.WithContext(ctx), name)
}

// PermissionByName returns the named permission
func (s *AdminStore) PermissionByName(ctx context.Context, name string) (*model.Permission, error) {
	return permissionByName(s.db.WithContext(ctx), name)
}

// UserByUsername returns the lowest-id user with the given username
func (s *AdminStore) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	return userByUsername(s.db.WithContext(ctx), username)
}

// GrantUserPermission binds a permission to a user unless already bound
func (s *AdminStore) GrantUserPermission(ctx context.Context, userID, permID int64) error {
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&model.UserPerm{}).Where("user_id = ? AND perm_id = ?", userID, permID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&model.UserPerm{UserID: userID, PermID: permID}).Error
}

// GrantGroupPermission binds a permission to a group unless already bound
func (s *AdminStore) GrantGroupPermission(ctx context.Context, groupID, permID int64) error {
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&model.GroupPerm{}).Where("group_id = ? AND perm_id = ?", groupID, permID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&model.GroupPerm{GroupID: groupID, PermID: permID}).Error
}

// RevokeGroupPermission removes every binding of the permission to the group
func (s *AdminStore) RevokeGroupPermission(ctx context.Context, groupID, permID int64) error {
	return s.db.WithContext(ctx).
		Where("group_id = ? AND perm_id = ?", groupID, permID).
		Delete(&model.GroupPerm{}).Error
}

// ReplaceGroupPermissions makes permIDs the complete set bound to the group
func (s *AdminStore) ReplaceGroupPermissions(ctx context.Context, groupID int64, permIDs []int64) error {
	db := s.db.WithContext(ctx)
	if err := db.Where("group_id = ?", groupID).Delete(&model.GroupPerm{}).Error; err != nil {
		return err
	}
	for _, permID := range dedupe(permIDs) {
		if err := db.Create(&model.GroupPerm{GroupID: groupID, PermID: permID}).Error; err != nil {
			return err
		}
	}
	return nil
}

// ReplaceObjectPermissions makes permIDs the complete set bound to path
func (s *AdminStore) ReplaceObjectPermissions(ctx context.Context, path string, permIDs []int64) error {
	db := s.db.WithContext(ctx)
	if err := db.Where("object_path = ?", path).Delete(&model.ObjectPerm{}).Error; err != nil {
		return err
	}
	for _, permID := range dedupe(permIDs) {
		if err := db.Create(&model.ObjectPerm{ObjectPath: path, PermID: permID}).Error; err != nil {
			return err
		}
	}
	return nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
