package service

import "errors"

// Business-rule failures. Their messages are shown to API clients as-is.
var (
	ErrInvalidArguments = errors.New("Invalid arguments")
	ErrUsernameTaken    = errors.New("Username already exists")
	ErrLoginFailed      = errors.New("Login failed")
	ErrUnknownUser      = errors.New("Unknown user")
	ErrTitleRequired    = errors.New("Title is required")
	ErrIDRequired       = errors.New("Id is required")
)
