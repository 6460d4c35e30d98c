package application

import "errors"

var (
	ErrNotFound        = errors.New("business not found")
	ErrForbidden       = errors.New("not the owner of this business")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidState    = errors.New("invalid or expired login state")
	ErrInvalidSession  = errors.New("invalid session")
)
