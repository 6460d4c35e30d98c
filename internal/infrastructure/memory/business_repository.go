package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/oksasatya/local-business-directory/internal/domain/entity"
	"github.com/oksasatya/local-business-directory/internal/domain/repository"
)

type BusinessRepository struct {
	s *Store
}

func (r *BusinessRepository) Create(_ context.Context, b *entity.Business) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[b.OwnerID]; !ok {
		return ErrOwnerMissing
	}
	r.s.nextID++
	now := r.s.now()

	stored := cloneBusiness(b)
	stored.ID = r.s.nextID
	stored.Latitude = roundCoord(b.Latitude)
	stored.Longitude = roundCoord(b.Longitude)
	stored.Rating = 0
	stored.IsOpen = true
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.s.businesses[stored.ID] = &stored

	*b = cloneBusiness(&stored)
	return nil
}

func (r *BusinessRepository) GetByID(_ context.Context, id int64) (*entity.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.businesses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneBusiness(b)
	return &out, nil
}

func (r *BusinessRepository) GetByOwner(_ context.Context, ownerID string) ([]entity.Business, error) {
	return r.filter(func(b *entity.Business) bool { return b.OwnerID == ownerID }), nil
}

func (r *BusinessRepository) GetAll(_ context.Context) ([]entity.Business, error) {
	return r.filter(func(*entity.Business) bool { return true }), nil
}

func (r *BusinessRepository) Search(_ context.Context, text string) ([]entity.Business, error) {
	needle := strings.ToLower(text)
	return r.filter(func(b *entity.Business) bool {
		if strings.Contains(strings.ToLower(b.Name), needle) ||
			strings.Contains(strings.ToLower(string(b.Category)), needle) {
			return true
		}
		return b.Description != nil && strings.Contains(strings.ToLower(*b.Description), needle)
	}), nil
}

func (r *BusinessRepository) GetByCategory(_ context.Context, category string) ([]entity.Business, error) {
	return r.filter(func(b *entity.Business) bool { return string(b.Category) == category }), nil
}

func (r *BusinessRepository) Update(_ context.Context, id int64, p entity.BusinessPatch) (*entity.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.businesses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Latitude.Value = roundCoord(p.Latitude.Value)
	p.Longitude.Value = roundCoord(p.Longitude.Value)
	p.Apply(b)
	b.UpdatedAt = r.s.now()
	out := cloneBusiness(b)
	return &out, nil
}

func (r *BusinessRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.businesses, id)
	return nil
}

func (r *BusinessRepository) Ping(context.Context) error { return nil }

func (r *BusinessRepository) filter(keep func(*entity.Business) bool) []entity.Business {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.Business, 0, len(r.s.businesses))
	for _, b := range r.s.businesses {
		if keep(b) {
			out = append(out, cloneBusiness(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

var _ repository.BusinessRepository = (*BusinessRepository)(nil)
