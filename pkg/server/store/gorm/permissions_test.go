package gorm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/portcullis/pkg/db/dbtest"
	"github.com/doodlesbykumbi/portcullis/pkg/model"
	"github.com/doodlesbykumbi/portcullis/pkg/server/store"
)

func permNames(perms []model.Permission) []string {
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.PermName)
	}
	return names
}

func TestPermissionStore_Lookups(t *testing.T) {
	ctx := context.Background()
	database := dbtest.NewSQLite(t)
	fx := dbtest.NewFixture(t, database)
	perms := NewPermissionStore(database)

	eng := fx.Group("eng")
	read := fx.Permission("read")

	group, err := perms.GroupByName(ctx, "eng")
	require.NoError(t, err)
	assert.Equal(t, eng.ID, group.ID)

	group, err = perms.GroupByID(ctx, eng.ID)
	require.NoError(t, err)
	assert.Equal(t, "eng", group.GroupName)

	perm, err := perms.PermissionByName(ctx, "read")
	require.NoError(t, err)
	assert.Equal(t, read.ID, perm.ID)

	_, err = perms.GroupByName(ctx, "ops")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = perms.GroupByID(ctx, 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = perms.PermissionByName(ctx, "admin")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPermissionStore_Bindings(t *testing.T) {
	ctx := context.Background()
	database := dbtest.NewSQLite(t)
	fx := dbtest.NewFixture(t, database)
	perms := NewPermissionStore(database)

	eng := fx.Group("eng")
	read := fx.Permission("read")
	write := fx.Permission("write")
	admin := fx.Permission("admin")
	bob := fx.User("bob", "h", eng)

	fx.GrantUser(bob, write)
	fx.GrantUser(bob, write)
	fx.GrantGroup(eng, read)
	fx.BindObject("/docs", write)
	fx.BindObject("/docs", read)
	fx.BindObject("/docs", read)
	fx.BindObject("/docs/private", admin)

	ok, err := perms.UserHasPermission(ctx, bob.ID, write.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = perms.UserHasPermission(ctx, bob.ID, read.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = perms.GroupHasPermission(ctx, eng.ID, read.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	bound, err := perms.PermissionsForPath(ctx, "/docs")
	require.NoError(t, err)
	assert.Equal(t, []string{"read", "write"}, permNames(bound))

	bound, err = perms.PermissionsForPath(ctx, "/doc")
	require.NoError(t, err)
	assert.Empty(t, bound)

	bound, err = perms.PermissionsForUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"write"}, permNames(bound))

	bound, err = perms.PermissionsForGroup(ctx, eng.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"read"}, permNames(bound))
}

func TestPermissionStore_DatabaseError(t *testing.T) {
	database, mock := dbtest.NewMock(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "users_perm"`).WillReturnError(errors.New("connection reset"))

	_, err := NewPermissionStore(database).UserHasPermission(context.Background(), 1, 1)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
