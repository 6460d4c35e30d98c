package entity

import "time"

// Business is a directory listing. OwnerID is fixed at creation; Rating and
// IsOpen are server-owned and never taken from a client payload.
type Business struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Description *string   `json:"description"`
	Phone       *string   `json:"phone"`
	Address     *string   `json:"address"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Rating      float64   `json:"rating"`
	IsOpen      bool      `json:"isOpen"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Nullable is the patch value of an optional column. Set is false when the
// client left the field out; Set with a nil Value clears the column.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Some sets the column to v.
func Some[T any](v T) Nullable[T] { return Nullable[T]{Set: true, Value: &v} }

// Null clears the column.
func Null[T any]() Nullable[T] { return Nullable[T]{Set: true} }

func (n Nullable[T]) apply(dst **T) {
	if !n.Set {
		return
	}
	if n.Value == nil {
		*dst = nil
		return
	}
	v := *n.Value
	*dst = &v
}

// BusinessPatch carries the client-settable fields of an update. Name and
// Category cannot be cleared, so nil there means "leave unchanged".
type BusinessPatch struct {
	Name        *string
	Category    *Category
	Description Nullable[string]
	Phone       Nullable[string]
	Address     Nullable[string]
	Latitude    Nullable[float64]
	Longitude   Nullable[float64]
}

// Apply copies the fields present in p onto b.
func (p BusinessPatch) Apply(b *Business) {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	p.Description.apply(&b.Description)
	p.Phone.apply(&b.Phone)
	p.Address.apply(&b.Address)
	p.Latitude.apply(&b.Latitude)
	p.Longitude.apply(&b.Longitude)
}
