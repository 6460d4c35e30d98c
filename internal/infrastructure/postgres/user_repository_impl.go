package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/local-business-directory/internal/domain/entity"
	"github.com/oksasatya/local-business-directory/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, first_name, last_name, profile_image_url, created_at, updated_at`

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Upsert(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, first_name, last_name, profile_image_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			email = COALESCE(EXCLUDED.email, users.email),
			first_name = COALESCE(EXCLUDED.first_name, users.first_name),
			last_name = COALESCE(EXCLUDED.last_name, users.last_name),
			profile_image_url = COALESCE(EXCLUDED.profile_image_url, users.profile_image_url),
			updated_at = now()
		RETURNING `+userColumns,
		u.ID, nullText(u.Email), nullText(u.FirstName), nullText(u.LastName), nullText(u.ProfileImageURL))

	stored, err := scanUser(row)
	if err != nil {
		return err
	}
	*u = *stored
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u                          entity.User
		email, first, last, avatar pgtype.Text
	)
	if err := row.Scan(&u.ID, &email, &first, &last, &avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Email = email.String
	u.FirstName = first.String
	u.LastName = last.String
	u.ProfileImageURL = avatar.String
	return &u, nil
}

// nullText stores empty profile fields as NULL so the unique email index
// ignores users without an email.
func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

var _ repository.UserRepository = (*UserRepository)(nil)
