package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/local-business-directory/internal/domain/entity"
	"github.com/oksasatya/local-business-directory/internal/infrastructure/memory"
	"github.com/oksasatya/local-business-directory/pkg/helpers"
	"github.com/oksasatya/local-business-directory/pkg/mailer"
	mailtpl "github.com/oksasatya/local-business-directory/pkg/mailer/templates"
)

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body.(mailer.EmailJob))
	return nil
}

func strPtr(s string) *string { return &s }

func newTestService(t *testing.T) (*BusinessService, *memory.Store, *recordingPublisher) {
	t.Helper()
	tick := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore().WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})
	ctx := context.Background()
	require.NoError(t, store.Users().Upsert(ctx, &entity.User{ID: "u1", Email: "owner@example.com", FirstName: "Uma"}))
	require.NoError(t, store.Users().Upsert(ctx, &entity.User{ID: "u2"}))

	pub := &recordingPublisher{}
	svc := NewBusinessService(store.Businesses(), store.Users(), pub, NotifyConfig{
		Enabled:       true,
		CompanyName:   "Local Directory",
		ListingURLFmt: "https://example.com/b/%d",
	}, helpers.NewDiscardLogger())
	return svc, store, pub
}

func mustCreate(t *testing.T, svc *BusinessService, owner, name string, cat entity.Category, desc *string) *entity.Business {
	t.Helper()
	b, err := svc.Create(context.Background(), owner, CreateBusinessInput{Name: name, Category: cat, Description: desc})
	require.NoError(t, err)
	return b
}

func listNames(list []entity.Business) []string {
	out := make([]string, 0, len(list))
	for _, b := range list {
		out = append(out, b.Name)
	}
	return out
}

func TestList_Filters(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, "u1", "Joe's Cafe", entity.CategoryFood, nil)
	mustCreate(t, svc, "u1", "Hardware Hub", entity.CategoryShop, strPtr("tools and paint"))
	mustCreate(t, svc, "u2", "City Clinic", entity.CategoryHealth, strPtr("walk-in doctors"))

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"no filter returns all newest first", ListFilter{}, []string{"City Clinic", "Hardware Hub", "Joe's Cafe"}},
		{"all equals no filter", ListFilter{Category: "all"}, []string{"City Clinic", "Hardware Hub", "Joe's Cafe"}},
		{"exact category", ListFilter{Category: "food"}, []string{"Joe's Cafe"}},
		{"unknown category matches nothing", ListFilter{Category: "pets"}, []string{}},
		{"search lower", ListFilter{Search: "cafe"}, []string{"Joe's Cafe"}},
		{"search upper", ListFilter{Search: "CAFE"}, []string{"Joe's Cafe"}},
		{"search prefix", ListFilter{Search: "joe"}, []string{"Joe's Cafe"}},
		{"search description", ListFilter{Search: "Paint"}, []string{"Hardware Hub"}},
		{"search category", ListFilter{Search: "heal"}, []string{"City Clinic"}},
		{"search wins over category", ListFilter{Search: "cafe", Category: "shop"}, []string{"Joe's Cafe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, listNames(got))
		})
	}
}

func TestListByOwner(t *testing.T) {
	svc, _, _ := newTestService(t)
	mustCreate(t, svc, "u1", "A", entity.CategoryShop, nil)
	mustCreate(t, svc, "u2", "B", entity.CategoryShop, nil)
	mustCreate(t, svc, "u1", "C", entity.CategoryShop, nil)

	got, err := svc.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, listNames(got))

	_, err = svc.ListByOwner(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreate_StampsOwnerAndNotifies(t *testing.T) {
	svc, _, pub := newTestService(t)

	b := mustCreate(t, svc, "u1", "Village Bakery", entity.CategoryFood, nil)
	assert.Equal(t, "u1", b.OwnerID)
	assert.True(t, b.IsOpen)
	assert.Equal(t, 0.0, b.Rating)

	require.Len(t, pub.jobs, 1)
	job := pub.jobs[0]
	assert.Equal(t, "owner@example.com", job.To)
	assert.Equal(t, mailtpl.BusinessRegistered, job.Template)
	assert.Equal(t, "Village Bakery", job.Data["BusinessName"])
	assert.Equal(t, "https://example.com/b/1", job.Data["ListingURL"])
}

func TestCreate_NoEmailNoJob(t *testing.T) {
	svc, _, pub := newTestService(t)
	mustCreate(t, svc, "u2", "Quiet Shop", entity.CategoryShop, nil)
	assert.Empty(t, pub.jobs)
}

func TestCreate_PublishFailureDoesNotFail(t *testing.T) {
	svc, _, pub := newTestService(t)
	pub.err = errors.New("broker down")

	_, err := svc.Create(context.Background(), "u1", CreateBusinessInput{Name: "Still Works", Category: entity.CategoryOther})
	assert.NoError(t, err)
}

func TestCreate_RequiresCaller(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), "", CreateBusinessInput{Name: "x", Category: entity.CategoryOther})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUpdate_OwnerOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b := mustCreate(t, svc, "u1", "Old Name", entity.CategoryShop, nil)

	_, err := svc.Update(ctx, "u2", b.ID, entity.BusinessPatch{Name: strPtr("Hijacked")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Update(ctx, "u1", 9999, entity.BusinessPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := svc.Update(ctx, "u1", b.ID, entity.BusinessPatch{Name: strPtr("New Name")})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "u1", updated.OwnerID)
	assert.True(t, updated.UpdatedAt.After(b.UpdatedAt))

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
}

func TestUpdate_EmptyPatchTouchesUpdatedAt(t *testing.T) {
	svc, _, _ := newTestService(t)
	b := mustCreate(t, svc, "u1", "Same", entity.CategoryShop, strPtr("kept"))

	got, err := svc.Update(context.Background(), "u1", b.ID, entity.BusinessPatch{})
	require.NoError(t, err)
	assert.Equal(t, "Same", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, "kept", *got.Description)
	assert.True(t, got.UpdatedAt.After(b.UpdatedAt))
}

func TestUpdate_NullClearsOptionalFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	b, err := svc.Create(ctx, "u1", CreateBusinessInput{
		Name:        "Village Bakery",
		Category:    entity.CategoryFood,
		Description: strPtr("bread"),
		Phone:       strPtr("555-0100"),
		Address:     strPtr("12 Main St"),
	})
	require.NoError(t, err)

	got, err := svc.Update(ctx, "u1", b.ID, entity.BusinessPatch{
		Phone:   entity.Null[string](),
		Address: entity.Some("14 Main St"),
	})
	require.NoError(t, err)
	assert.Nil(t, got.Phone)
	require.NotNil(t, got.Address)
	assert.Equal(t, "14 Main St", *got.Address)
	require.NotNil(t, got.Description)
	assert.Equal(t, "bread", *got.Description)
}

func TestDelete_OwnerOnlyAndRepeatable(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()
	b := mustCreate(t, svc, "u1", "Short Lived", entity.CategoryService, nil)

	assert.ErrorIs(t, svc.Delete(ctx, "u2", b.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, "u1", b.ID))

	_, err := svc.Get(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "u1", b.ID), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "u1", b.ID), ErrNotFound)

	require.Len(t, pub.jobs, 2)
	assert.Equal(t, mailtpl.BusinessDeleted, pub.jobs[1].Template)
}

type failingRepo struct {
	*memory.BusinessRepository
}

func (failingRepo) GetAll(context.Context) ([]entity.Business, error) {
	return nil, errors.New("connection reset")
}

func TestList_WrapsStoreFailure(t *testing.T) {
	svc, store, _ := newTestService(t)
	svc.Repo = failingRepo{store.Businesses()}

	_, err := svc.List(context.Background(), ListFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list businesses")
	assert.NotErrorIs(t, err, ErrNotFound)
}
