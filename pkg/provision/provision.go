package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/doodlesbykumbi/portcullis/pkg/model"
	"github.com/doodlesbykumbi/portcullis/pkg/password"
	"github.com/doodlesbykumbi/portcullis/pkg/server/store"
)

// Options controls provisioning behaviour
type Options struct {
	// BindPermissions binds permissions_list to the new user. When false the
	// list is only validated.
	BindPermissions bool
}

// Provisioner creates users
type Provisioner struct {
	users  store.UserStore
	perms  store.PermissionStore
	hasher password.Hasher
	opts   Options
}

// New creates a Provisioner
func New(users store.UserStore, perms store.PermissionStore, hasher password.Hasher, opts Options) *Provisioner {
	return &Provisioner{users: users, perms: perms, hasher: hasher, opts: opts}
}

// CreateUserFromJSON parses body and creates the user it describes
func (p *Provisioner) CreateUserFromJSON(ctx context.Context, body []byte) (int64, error) {
	req, err := ParseCreateUserRequest(body)
	if err != nil {
		return 0, err
	}
	return p.CreateUser(ctx, req)
}

// CreateUser validates req against the store and inserts the user, returning
// its id
func (p *Provisioner) CreateUser(ctx context.Context, req *CreateUserRequest) (int64, error) {
	if req.Username == nil || req.Password == nil {
		return 0, invalid(ErrMissingRequired, "")
	}
	username, plaintext := *req.Username, *req.Password
	if !ValidUsername(username) {
		return 0, invalid(ErrInvalidUsername, "")
	}
	_, err := p.users.UserByUsername(ctx, username)
	if err == nil {
		return 0, invalid(ErrDuplicateUser, "")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("failed to look up user: %w", err)
	}

	var groupID *int64
	if req.Group != nil {
		group, err := p.perms.GroupByName(ctx, *req.Group)
		if errors.Is(err, store.ErrNotFound) {
			return 0, invalid(ErrUnknownGroup, *req.Group)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to look up group: %w", err)
		}
		groupID = &group.ID
	}

	permIDs := make([]int64, 0, len(req.Permissions))
	for _, name := range req.Permissions {
		perm, err := p.perms.PermissionByName(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			return 0, invalid(ErrUnknownPermission, name)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to look up permission: %w", err)
		}
		permIDs = append(permIDs, perm.ID)
	}
	if !p.opts.BindPermissions {
		permIDs = nil
	}

	if plaintext == "" {
		return 0, invalid(ErrInvalidPassword, "")
	}
	hash, err := p.hasher.Hash(plaintext)
	if errors.Is(err, password.ErrTooLong) {
		return 0, invalid(ErrInvalidPassword, "")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{Username: username, PasswordHash: hash, GroupID: groupID}
	if err := p.users.CreateUser(ctx, user, permIDs); err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			return 0, invalid(ErrDuplicateUser, "")
		}
		return 0, err
	}
	return user.ID, nil
}
