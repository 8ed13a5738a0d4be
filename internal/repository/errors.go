package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrUserExists is returned when a username is already taken.
	ErrUserExists = errors.New("user already exists")
)
