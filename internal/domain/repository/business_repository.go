package repository

import (
	"context"

	"github.com/oksasatya/local-business-directory/internal/domain/entity"
)

// BusinessRepository is the record store for listings. Every list method
// returns rows newest first (created_at DESC, id DESC). The store performs no
// ownership checks.
type BusinessRepository interface {
	Create(ctx context.Context, b *entity.Business) error
	GetByID(ctx context.Context, id int64) (*entity.Business, error)
	GetByOwner(ctx context.Context, ownerID string) ([]entity.Business, error)
	GetAll(ctx context.Context) ([]entity.Business, error)
	// Search matches name, description or category case-insensitively as a
	// literal substring.
	Search(ctx context.Context, text string) ([]entity.Business, error)
	GetByCategory(ctx context.Context, category string) ([]entity.Business, error)
	Update(ctx context.Context, id int64, patch entity.BusinessPatch) (*entity.Business, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}
