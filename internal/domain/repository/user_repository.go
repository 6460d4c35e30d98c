package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/local-business-directory/internal/domain/entity"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("not found")

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// Upsert inserts u or, when a user with the same ID exists, overwrites its
	// profile fields and refreshes UpdatedAt. u is filled with the stored row.
	Upsert(ctx context.Context, u *entity.User) error
}
