package model

import "time"

// MaxUsernameLength bounds usernames. Compact tokens are always longer, so a
// username can never be mistaken for one.
const MaxUsernameLength = 32

// User is a provisioned principal
type User struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Username     string    `gorm:"column:username;size:32;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	GroupID      *int64    `gorm:"column:group_id"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// HasGroup reports whether the user belongs to a group
func (u User) HasGroup() bool {
	return u.GroupID != nil
}
