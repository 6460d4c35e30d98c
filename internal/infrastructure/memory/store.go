package memory

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/oksasatya/local-business-directory/internal/domain/entity"
)

// ErrOwnerMissing mirrors the foreign key from businesses to users.
var ErrOwnerMissing = errors.New("owner does not exist")

// Store is an in-process record store shared by the memory repositories.
// It exists for local runs without Postgres and for tests.
type Store struct {
	mu         sync.RWMutex
	users      map[string]*entity.User
	businesses map[int64]*entity.Business
	nextID     int64
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]*entity.User),
		businesses: make(map[int64]*entity.Business),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the timestamp source; used by tests that need ties.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Users() *UserRepository         { return &UserRepository{s: s} }
func (s *Store) Businesses() *BusinessRepository { return &BusinessRepository{s: s} }

// roundCoord applies the 8-digit scale the SQL schema uses for coordinates.
func roundCoord(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*1e8) / 1e8
	return &r
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBusiness(b *entity.Business) entity.Business {
	out := *b
	out.Description = cloneString(b.Description)
	out.Phone = cloneString(b.Phone)
	out.Address = cloneString(b.Address)
	if b.Latitude != nil {
		v := *b.Latitude
		out.Latitude = &v
	}
	if b.Longitude != nil {
		v := *b.Longitude
		out.Longitude = &v
	}
	return out
}
