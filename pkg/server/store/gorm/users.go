package gorm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/portcullis/pkg/model"
	"github.com/doodlesbykumbi/portcullis/pkg/server/store"
)

// Ensure UserStore implements store.UserStore
var _ store.UserStore = (*UserStore)(nil)

// UserStore implements store.UserStore using GORM
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a new UserStore
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// CreateUser inserts the user and its permission bindings atomically
func (s *UserStore) CreateUser(ctx context.Context, user *model.User, permIDs []int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return store.ErrDuplicateUser
		}

		if err := tx.Create(user).Error; err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicateUser
			}
			return err
		}

		for _, permID := range dedupe(permIDs) {
			if err := tx.Create(&model.UserPerm{UserID: user.ID, PermID: permID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			return err
		}
		return fmt.Errorf("failed to create user %q: %w", user.Username, err)
	}
	return nil
}

// UserByID returns the user with the given id
func (s *UserStore) UserByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// UserByUsername returns the lowest-id user with the given username
func (s *UserStore) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	return userByUsername(s.db.WithContext(ctx), username)
}

// ListUsernames returns all usernames ordered by id
func (s *UserStore) ListUsernames(ctx context.Context) ([]string, error) {
	var usernames []string
	err := s.db.WithContext(ctx).Model(&model.User{}).Order("id").Pluck("username", &usernames).Error
	if err != nil {
		return nil, err
	}
	if usernames == nil {
		usernames = []string{}
	}
	return usernames, nil
}

func userByUsername(db *gorm.DB, username string) (*model.User, error) {
	var user model.User
	// First orders by primary key
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
