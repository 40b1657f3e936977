package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/portcullis/pkg/db/dbtest"
	"github.com/doodlesbykumbi/portcullis/pkg/model"
	"github.com/doodlesbykumbi/portcullis/pkg/server/store"
	storegorm "github.com/doodlesbykumbi/portcullis/pkg/server/store/gorm"
)

type fixture struct {
	*dbtest.Fixture
	reg   *Registry
	admin *storegorm.AdminStore
}

func newFixture(t *testing.T) *fixture {
	database := dbtest.NewSQLite(t)
	return &fixture{
		Fixture: dbtest.NewFixture(t, database),
		reg:     New(storegorm.NewUserStore(database), storegorm.NewPermissionStore(database)),
		admin:   storegorm.NewAdminStore(database),
	}
}

func TestPermissionExists(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	fx.Permission("read")

	ok, err := fx.reg.PermissionExists(ctx, "read")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fx.reg.PermissionExists(ctx, "write")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGroupExists(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	eng := fx.Group("eng")

	group, err := fx.reg.GroupExists(ctx, "eng")
	require.NoError(t, err)
	require.NotNil(t, group)
	assert.Equal(t, eng.ID, group.ID)

	group, err = fx.reg.GroupExists(ctx, "ops")
	require.NoError(t, err)
	assert.Nil(t, group)
}

func TestUserHasPermission(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	eng := fx.Group("eng")
	read := fx.Permission("read")
	write := fx.Permission("write")
	fx.Permission("admin")
	bob := fx.User("bob", "h", eng)
	alice := fx.User("alice", "h", nil)

	fx.GrantUser(alice, write)
	fx.GrantGroup(eng, read)

	tests := []struct {
		name   string
		userID int64
		perm   string
		want   bool
	}{
		{name: "group binding", userID: bob.ID, perm: "read", want: true},
		{name: "no binding", userID: bob.ID, perm: "write", want: false},
		{name: "direct binding", userID: alice.ID, perm: "write", want: true},
		{name: "no group", userID: alice.ID, perm: "read", want: false},
		{name: "unbound permission", userID: bob.ID, perm: "admin", want: false},
		{name: "unknown permission", userID: bob.ID, perm: "nope", want: false},
		{name: "unknown user", userID: 999, perm: "read", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := fx.reg.UserHasPermission(ctx, tt.userID, tt.perm)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestUserHasPermission_GroupRevoked(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	eng := fx.Group("eng")
	read := fx.Permission("read")
	bob := fx.User("bob", "h", eng)
	fx.GrantGroup(eng, read)

	ok, err := fx.reg.UserHasPermission(ctx, bob.ID, "read")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, fx.admin.RevokeGroupPermission(ctx, eng.ID, read.ID))

	ok, err = fx.reg.UserHasPermission(ctx, bob.ID, "read")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPathPermissions(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	read := fx.Permission("read")
	write := fx.Permission("write")
	fx.BindObject("/docs", write)
	fx.BindObject("/docs", read)
	fx.BindObject("/docs", write)

	names, err := fx.reg.PathPermissions(ctx, "/docs")
	require.NoError(t, err)
	assert.Equal(t, []string{"read", "write"}, names)

	names, err = fx.reg.PathPermissions(ctx, "/docs/sub")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCanAccess(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	eng := fx.Group("eng")
	read := fx.Permission("read")
	admin := fx.Permission("admin")
	bob := fx.User("bob", "h", eng)
	fx.GrantGroup(eng, read)
	fx.BindObject("/docs", read)
	fx.BindObject("/secrets", admin)

	ok, err := fx.reg.CanAccess(ctx, bob.ID, "/docs")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fx.reg.CanAccess(ctx, bob.ID, "/secrets")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = fx.reg.CanAccess(ctx, bob.ID, "/unbound")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = fx.reg.CanAccess(ctx, 999, "/docs")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserPermissions(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	eng := fx.Group("eng")
	read := fx.Permission("read")
	write := fx.Permission("write")
	bob := fx.User("bob", "h", eng)
	fx.GrantGroup(eng, read)
	fx.GrantUser(bob, write)
	fx.GrantUser(bob, read)

	names, err := fx.reg.UserPermissions(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"read", "write"}, names)

	names, err = fx.reg.UserPermissions(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, names)
}

// failingPerms fails every lookup
type failingPerms struct {
	store.PermissionStore
}

func (failingPerms) PermissionByName(context.Context, string) (*model.Permission, error) {
	return nil, errors.New("connection reset")
}

func TestStoreFailuresAreErrors(t *testing.T) {
	ctx := context.Background()
	reg := New(nil, failingPerms{})

	_, err := reg.PermissionExists(ctx, "read")
	assert.Error(t, err)

	_, err = reg.UserHasPermission(ctx, 1, "read")
	assert.Error(t, err)
}
