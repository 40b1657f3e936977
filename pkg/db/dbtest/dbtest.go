// Package dbtest provides database fixtures for tests.
package dbtest

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/portcullis/pkg/db"
	"github.com/doodlesbykumbi/portcullis/pkg/model"
)

// NewSQLite returns a migrated, empty in-memory database closed at test cleanup.
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	database, err := db.Connect(db.Config{URL: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database))

	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return database
}

// NewMock returns a gorm handle backed by sqlmock speaking the postgres dialect.
func NewMock(t testing.TB) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		},
	)
	require.NoError(t, err)

	return gormDB, mock
}

// Fixture seeds reference data directly, bypassing the stores under test.
type Fixture struct {
	t  testing.TB
	db *gorm.DB
}

// NewFixture wraps database for seeding.
func NewFixture(t testing.TB, database *gorm.DB) *Fixture {
	return &Fixture{t: t, db: database}
}

// DB returns the underlying handle.
func (f *Fixture) DB() *gorm.DB {
	return f.db
}

// Group creates a group.
func (f *Fixture) Group(name string) *model.Group {
	f.t.Helper()
	group := &model.Group{GroupName: name}
	require.NoError(f.t, f.db.Create(group).Error)
	return group
}

// Permission creates a permission.
func (f *Fixture) Permission(name string) *model.Permission {
	f.t.Helper()
	perm := &model.Permission{PermName: name}
	require.NoError(f.t, f.db.Create(perm).Error)
	return perm
}

// User creates a user with an already hashed password.
func (f *Fixture) User(username, passwordHash string, group *model.Group) *model.User {
	f.t.Helper()
	user := &model.User{Username: username, PasswordHash: passwordHash}
	if group != nil {
		user.GroupID = &group.ID
	}
	require.NoError(f.t, f.db.Create(user).Error)
	return user
}

// GrantUser binds perm directly to user.
func (f *Fixture) GrantUser(user *model.User, perm *model.Permission) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(&model.UserPerm{UserID: user.ID, PermID: perm.ID}).Error)
}

// GrantGroup binds perm to group.
func (f *Fixture) GrantGroup(group *model.Group, perm *model.Permission) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(&model.GroupPerm{GroupID: group.ID, PermID: perm.ID}).Error)
}

// BindObject binds perm to path.
func (f *Fixture) BindObject(path string, perm *model.Permission) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(&model.ObjectPerm{ObjectPath: path, PermID: perm.ID}).Error)
}

// CountUsers returns the number of rows in users.
func (f *Fixture) CountUsers() int64 {
	f.t.Helper()
	var count int64
	require.NoError(f.t, f.db.Model(&model.User{}).Count(&count).Error)
	return count
}
