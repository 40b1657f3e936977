package gorm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/portcullis/pkg/db/dbtest"
	"github.com/doodlesbykumbi/portcullis/pkg/model"
	"github.com/doodlesbykumbi/portcullis/pkg/server/store"
)

func TestUserStore_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	database := dbtest.NewSQLite(t)
	fx := dbtest.NewFixture(t, database)
	users := NewUserStore(database)

	eng := fx.Group("eng")
	read := fx.Permission("read")
	write := fx.Permission("write")

	user := &model.User{Username: "bob", PasswordHash: "$2a$10$hash", GroupID: &eng.ID}
	require.NoError(t, users.CreateUser(ctx, user, []int64{read.ID, write.ID}))
	assert.NotZero(t, user.ID)

	byID, err := users.UserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", byID.Username)
	require.NotNil(t, byID.GroupID)
	assert.Equal(t, eng.ID, *byID.GroupID)

	byName, err := users.UserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	var bindings int64
	require.NoError(t, database.Model(&model.UserPerm{}).Where("user_id = ?", user.ID).Count(&bindings).Error)
	assert.Equal(t, int64(2), bindings)
}

func TestUserStore_NotFound(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(dbtest.NewSQLite(t))

	_, err := users.UserByID(ctx, 99)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = users.UserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserStore_Duplicate(t *testing.T) {
	ctx := context.Background()
	database := dbtest.NewSQLite(t)
	users := NewUserStore(database)

	require.NoError(t, users.CreateUser(ctx, &model.User{Username: "bob", PasswordHash: "h1"}, nil))

	err := users.CreateUser(ctx, &model.User{Username: "bob", PasswordHash: "h2"}, nil)
	assert.ErrorIs(t, err, store.ErrDuplicateUser)
	assert.Equal(t, int64(1), dbtest.NewFixture(t, database).CountUsers())
}

func TestUserStore_ConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	database := dbtest.NewSQLite(t)
	users := NewUserStore(database)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = users.CreateUser(ctx, &model.User{Username: "carol", PasswordHash: "h"}, nil)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, store.ErrDuplicateUser)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), dbtest.NewFixture(t, database).CountUsers())
}

func TestUserStore_ListUsernames(t *testing.T) {
	ctx := context.Background()
	database := dbtest.NewSQLite(t)
	users := NewUserStore(database)

	names, err := users.ListUsernames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, name := range []string{"zed", "alice", "mallory"} {
		require.NoError(t, users.CreateUser(ctx, &model.User{Username: name, PasswordHash: "h"}, nil))
	}

	names, err = users.ListUsernames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"zed", "alice", "mallory"}, names)
}

func TestUserStore_DatabaseErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup failure is not ErrNotFound", func(t *testing.T) {
		database, mock := dbtest.NewMock(t)
		mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(errors.New("connection reset"))

		_, err := NewUserStore(database).UserByID(ctx, 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, store.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result is ErrNotFound", func(t *testing.T) {
		database, mock := dbtest.NewMock(t)
		mock.ExpectQuery(`SELECT \* FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "group_id", "created_at"}))

		_, err := NewUserStore(database).UserByUsername(ctx, "bob")
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("create rolls back on failure", func(t *testing.T) {
		database, mock := dbtest.NewMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := NewUserStore(database).CreateUser(ctx, &model.User{Username: "bob", PasswordHash: "h"}, nil)
		require.Error(t, err)
		assert.NotErrorIs(t, err, store.ErrDuplicateUser)
		assert.Contains(t, err.Error(), "failed to create user")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to ErrDuplicateUser", func(t *testing.T) {
		database, mock := dbtest.NewMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO "users"`).
			WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_username" (SQLSTATE 23505)`))
		mock.ExpectRollback()

		err := NewUserStore(database).CreateUser(ctx, &model.User{Username: "bob", PasswordHash: "h"}, nil)
		assert.ErrorIs(t, err, store.ErrDuplicateUser)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHealthStore(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, NewHealthStore(dbtest.NewSQLite(t)).CheckConnectivity(ctx))

	database, mock := dbtest.NewMock(t)
	mock.ExpectExec(`SELECT 1`).WillReturnError(errors.New("connection refused"))
	assert.Error(t, NewHealthStore(database).CheckConnectivity(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
