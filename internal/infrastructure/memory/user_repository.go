package memory

import (
	"context"

	"github.com/oksasatya/local-business-directory/internal/domain/entity"
	"github.com/oksasatya/local-business-directory/internal/domain/repository"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *UserRepository) Upsert(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	if existing, ok := r.s.users[u.ID]; ok {
		// blank profile fields keep what is stored
		keep(&u.Email, existing.Email)
		keep(&u.FirstName, existing.FirstName)
		keep(&u.LastName, existing.LastName)
		keep(&u.ProfileImageURL, existing.ProfileImageURL)
		u.CreatedAt = existing.CreatedAt
	} else {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	stored := *u
	r.s.users[u.ID] = &stored
	return nil
}

func keep(dst *string, old string) {
	if *dst == "" {
		*dst = old
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)
