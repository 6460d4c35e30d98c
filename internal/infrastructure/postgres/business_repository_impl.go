package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/local-business-directory/internal/domain/entity"
	"github.com/oksasatya/local-business-directory/internal/domain/repository"
)

type BusinessRepository struct {
	pool *pgxpool.Pool
}

func NewBusinessRepository(pool *pgxpool.Pool) *BusinessRepository {
	return &BusinessRepository{pool: pool}
}

const (
	businessColumns = `id, name, category, description, phone, address, latitude, longitude,
		rating, is_open, owner_id, created_at, updated_at`
	newestFirst = ` ORDER BY created_at DESC, id DESC`
)

func (r *BusinessRepository) Create(ctx context.Context, b *entity.Business) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO businesses (name, category, description, phone, address, latitude, longitude, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+businessColumns,
		b.Name, string(b.Category), b.Description, b.Phone, b.Address, b.Latitude, b.Longitude, b.OwnerID)

	stored, err := scanBusiness(row)
	if err != nil {
		return err
	}
	*b = *stored
	return nil
}

func (r *BusinessRepository) GetByID(ctx context.Context, id int64) (*entity.Business, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id)
	b, err := scanBusiness(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *BusinessRepository) GetByOwner(ctx context.Context, ownerID string) ([]entity.Business, error) {
	return r.list(ctx, `SELECT `+businessColumns+` FROM businesses WHERE owner_id = $1`+newestFirst, ownerID)
}

func (r *BusinessRepository) GetAll(ctx context.Context) ([]entity.Business, error) {
	return r.list(ctx, `SELECT `+businessColumns+` FROM businesses`+newestFirst)
}

func (r *BusinessRepository) Search(ctx context.Context, text string) ([]entity.Business, error) {
	pattern := "%" + escapeLike(text) + "%"
	return r.list(ctx, `
		SELECT `+businessColumns+` FROM businesses
		WHERE name ILIKE $1 OR description ILIKE $1 OR category ILIKE $1`+newestFirst, pattern)
}

func (r *BusinessRepository) GetByCategory(ctx context.Context, category string) ([]entity.Business, error) {
	return r.list(ctx, `SELECT `+businessColumns+` FROM businesses WHERE category = $1`+newestFirst, category)
}

func (r *BusinessRepository) Update(ctx context.Context, id int64, p entity.BusinessPatch) (*entity.Business, error) {
	var category *string
	if p.Category != nil {
		c := string(*p.Category)
		category = &c
	}
	// nullable columns take a presence flag so an explicit null clears them
	row := r.pool.QueryRow(ctx, `
		UPDATE businesses SET
			name = COALESCE($2::text, name),
			category = COALESCE($3::text, category),
			description = CASE WHEN $4::boolean THEN $5::text ELSE description END,
			phone = CASE WHEN $6::boolean THEN $7::text ELSE phone END,
			address = CASE WHEN $8::boolean THEN $9::text ELSE address END,
			latitude = CASE WHEN $10::boolean THEN $11::numeric ELSE latitude END,
			longitude = CASE WHEN $12::boolean THEN $13::numeric ELSE longitude END,
			updated_at = now()
		WHERE id = $1
		RETURNING `+businessColumns,
		id, p.Name, category,
		p.Description.Set, p.Description.Value,
		p.Phone.Set, p.Phone.Value,
		p.Address.Set, p.Address.Value,
		p.Latitude.Set, p.Latitude.Value,
		p.Longitude.Set, p.Longitude.Value)

	b, err := scanBusiness(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *BusinessRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM businesses WHERE id = $1`, id)
	return err
}

func (r *BusinessRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *BusinessRepository) list(ctx context.Context, sql string, args ...any) ([]entity.Business, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Business, 0)
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func scanBusiness(row pgx.Row) (*entity.Business, error) {
	var (
		b        entity.Business
		category string
	)
	err := row.Scan(&b.ID, &b.Name, &category, &b.Description, &b.Phone, &b.Address,
		&b.Latitude, &b.Longitude, &b.Rating, &b.IsOpen, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Category = entity.Category(category)
	return &b, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ repository.BusinessRepository = (*BusinessRepository)(nil)
