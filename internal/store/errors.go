package store

import "errors"

var (
	ErrNotFound      = errors.New("user not found")
	ErrDuplicateUser = errors.New("duplicate user")
)
