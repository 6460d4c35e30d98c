package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/local-business-directory/internal/domain/entity"
	"github.com/oksasatya/local-business-directory/internal/domain/repository"
	"github.com/oksasatya/local-business-directory/pkg/helpers"
)

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"bakery":   "bakery",
		"100%":     `100\%`,
		"a_b":      `a\_b`,
		`c:\path`:  `c:\\path`,
		`50%_\off`: `50\%\_\\off`,
	}
	for in, want := range cases {
		assert.Equal(t, want, escapeLike(in), in)
	}
}

// openTestDB connects to TEST_DATABASE_URL, applies migrations and empties
// the tables. The test is skipped when the variable is unset.
func openTestDB(t *testing.T) (*UserRepository, *BusinessRepository) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	require.NoError(t, RunMigrations(dsn, "../../../db/migrations", helpers.NewDiscardLogger()))

	pool, err := NewPool(ctx, dsn, PoolConfig{AppName: "directory-test", MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE businesses, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return NewUserRepository(pool), NewBusinessRepository(pool)
}

func TestBusinessRepository_Postgres(t *testing.T) {
	users, repo := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, users.Upsert(ctx, &entity.User{ID: "u1", Email: "u1@example.com"}))
	require.NoError(t, users.Upsert(ctx, &entity.User{ID: "u1", FirstName: "Ada"}))
	u, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, "u1@example.com", u.Email)

	desc := "Fresh bread, 100% sourdough"
	lat := 40.712812345678
	bakery := &entity.Business{Name: "Village Bakery", Category: entity.CategoryFood, Description: &desc, Latitude: &lat, OwnerID: "u1"}
	require.NoError(t, repo.Create(ctx, bakery))
	assert.Positive(t, bakery.ID)
	assert.True(t, bakery.IsOpen)
	assert.Zero(t, bakery.Rating)
	require.NotNil(t, bakery.Latitude)
	assert.InDelta(t, 40.71281235, *bakery.Latitude, 1e-9)

	hardware := &entity.Business{Name: "Main_Street Hardware", Category: entity.CategoryShop, OwnerID: "u1"}
	require.NoError(t, repo.Create(ctx, hardware))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, hardware.ID, all[0].ID)

	found, err := repo.Search(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, bakery.ID, found[0].ID)

	found, err = repo.Search(ctx, "e_B")
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = repo.Search(ctx, "FOOD")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	byCat, err := repo.GetByCategory(ctx, "bogus")
	require.NoError(t, err)
	assert.Empty(t, byCat)

	name := "Village Bakery & Cafe"
	updated, err := repo.Update(ctx, bakery.ID, entity.BusinessPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, desc, *updated.Description)
	assert.False(t, updated.UpdatedAt.Before(bakery.UpdatedAt))

	cleared, err := repo.Update(ctx, bakery.ID, entity.BusinessPatch{
		Description: entity.Null[string](),
		Phone:       entity.Some("555-0100"),
		Latitude:    entity.Null[float64](),
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.Description)
	assert.Nil(t, cleared.Latitude)
	require.NotNil(t, cleared.Phone)
	assert.Equal(t, "555-0100", *cleared.Phone)
	assert.Equal(t, name, cleared.Name)

	touched, err := repo.Update(ctx, bakery.ID, entity.BusinessPatch{})
	require.NoError(t, err)
	assert.False(t, touched.UpdatedAt.Before(cleared.UpdatedAt))

	_, err = repo.Update(ctx, 9999, entity.BusinessPatch{Name: &name})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, bakery.ID))
	require.NoError(t, repo.Delete(ctx, bakery.ID))
	_, err = repo.GetByID(ctx, bakery.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
