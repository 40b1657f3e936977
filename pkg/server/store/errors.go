package store

import "errors"

// ErrNotFound is returned when a requested record doesn't exist
var ErrNotFound = errors.New("record not found")

// ErrDuplicateUser is returned when a username is already taken
var ErrDuplicateUser = errors.New("user already exists")
