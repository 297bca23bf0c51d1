package user

import "errors"

var (
	ErrNotFound           = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactive           = errors.New("user account is deactivated")
)
