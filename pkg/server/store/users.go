package store

import (
	"context"

	"github.com/doodlesbykumbi/portcullis/pkg/model"
)

// UserStore abstracts user record storage
type UserStore interface {
	// CreateUser inserts user and binds permIDs to it in one transaction.
	// The username is re-checked inside the transaction; a taken username
	// returns ErrDuplicateUser and leaves no rows behind.
	CreateUser(ctx context.Context, user *model.User, permIDs []int64) error

	// UserByID returns ErrNotFound when no user has the id
	UserByID(ctx context.Context, id int64) (*model.User, error)

	// UserByUsername returns the lowest-id user with the name, or ErrNotFound
	UserByUsername(ctx context.Context, username string) (*model.User, error)

	// ListUsernames returns every username ordered by id
	ListUsernames(ctx context.Context) ([]string, error)
}
