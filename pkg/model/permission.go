package model

// Column limits for reference data
const (
	MaxNameLength       = 32
	MaxObjectPathLength = 128
)

// Permission is an entry in the permission catalog
type Permission struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	PermName string `gorm:"column:perm_name;size:32;not null;uniqueIndex"`
}

func (Permission) TableName() string {
	return "permissions"
}

// UserPerm binds a permission directly to a user
type UserPerm struct {
	ID     int64 `gorm:"column:id;primaryKey;autoIncrement"`
	UserID int64 `gorm:"column:user_id;not null;index"`
	PermID int64 `gorm:"column:perm_id;not null"`
}

func (UserPerm) TableName() string {
	return "users_perm"
}

// GroupPerm binds a permission to every member of a group
type GroupPerm struct {
	ID      int64 `gorm:"column:id;primaryKey;autoIncrement"`
	GroupID int64 `gorm:"column:group_id;not null;index"`
	PermID  int64 `gorm:"column:perm_id;not null"`
}

func (GroupPerm) TableName() string {
	return "groups_perm"
}

// ObjectPerm binds a permission to a resource path
type ObjectPerm struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	PermID     int64  `gorm:"column:perm_id;not null"`
	ObjectPath string `gorm:"column:object_path;size:128;not null;index"`
}

func (ObjectPerm) TableName() string {
	return "object_perm"
}
