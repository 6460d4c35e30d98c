package application

import (
	"context"
	"errors"
	"expvar"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/local-business-directory/internal/domain/entity"
	repo "github.com/oksasatya/local-business-directory/internal/domain/repository"
	"github.com/oksasatya/local-business-directory/pkg/mailer"
	mailtpl "github.com/oksasatya/local-business-directory/pkg/mailer/templates"
)

// Served at /api/debug/vars.
var (
	listQueries      = expvar.NewInt("directory_list_queries")
	businessCreated  = expvar.NewInt("directory_businesses_created")
	businessDeleted  = expvar.NewInt("directory_businesses_deleted")
	notifyPublishErr = expvar.NewInt("directory_notify_publish_errors")
)

// Publisher enqueues a job for asynchronous processing.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// NotifyConfig controls listing notification emails.
type NotifyConfig struct {
	Enabled       bool
	CompanyName   string
	SupportURL    string
	ListingURLFmt string
}

type BusinessService struct {
	Repo   repo.BusinessRepository
	Users  repo.UserRepository
	Pub    Publisher
	Notify NotifyConfig
	Logger *logrus.Logger
}

func NewBusinessService(businesses repo.BusinessRepository, users repo.UserRepository, pub Publisher, notify NotifyConfig, logger *logrus.Logger) *BusinessService {
	return &BusinessService{Repo: businesses, Users: users, Pub: pub, Notify: notify, Logger: logger}
}

// ListFilter holds the optional list query parameters.
type ListFilter struct {
	Category string
	Search   string
}

// CreateBusinessInput is the client-settable part of a new listing.
type CreateBusinessInput struct {
	Name        string
	Category    entity.Category
	Description *string
	Phone       *string
	Address     *string
	Latitude    *float64
	Longitude   *float64
}

// List resolves a directory query. A non-empty search wins over the category
// filter; category "all" or empty returns everything. Results are newest first.
func (s *BusinessService) List(ctx context.Context, f ListFilter) ([]entity.Business, error) {
	var (
		out []entity.Business
		err error
	)
	switch {
	case f.Search != "":
		out, err = s.Repo.Search(ctx, f.Search)
	case f.Category != "" && f.Category != entity.CategoryAll:
		out, err = s.Repo.GetByCategory(ctx, f.Category)
	default:
		out, err = s.Repo.GetAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	listQueries.Add(1)
	return out, nil
}

func (s *BusinessService) Get(ctx context.Context, id int64) (*entity.Business, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *BusinessService) ListByOwner(ctx context.Context, ownerID string) ([]entity.Business, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	out, err := s.Repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list businesses of %s: %w", ownerID, err)
	}
	return out, nil
}

// Create stores a new listing owned by ownerID. Rating and open status start
// at their server defaults.
func (s *BusinessService) Create(ctx context.Context, ownerID string, in CreateBusinessInput) (*entity.Business, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	b := &entity.Business{
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		Phone:       in.Phone,
		Address:     in.Address,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		IsOpen:      true,
		OwnerID:     ownerID,
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create business: %w", err)
	}
	businessCreated.Add(1)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"business_id": b.ID, "owner_id": ownerID, "category": b.Category}).Info("business created")
	}
	s.notifyOwner(ctx, b, mailtpl.BusinessRegistered)
	return b, nil
}

// Authorize loads the current record and checks that callerID owns it.
func (s *BusinessService) Authorize(ctx context.Context, callerID string, id int64) (*entity.Business, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeMutation(callerID, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Update applies patch for the owner of the listing. Ownership is checked
// against freshly loaded state on every call.
func (s *BusinessService) Update(ctx context.Context, callerID string, id int64, patch entity.BusinessPatch) (*entity.Business, error) {
	if _, err := s.Authorize(ctx, callerID, id); err != nil {
		return nil, err
	}
	// an empty patch still refreshes updatedAt
	updated, err := s.Repo.Update(ctx, id, patch)
	if err != nil {
		// deleted between the check and the write
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update business %d: %w", id, err)
	}
	return updated, nil
}

// Delete hard-deletes the listing for its owner. Deleting a missing id
// reports ErrNotFound every time.
func (s *BusinessService) Delete(ctx context.Context, callerID string, id int64) error {
	current, err := s.Authorize(ctx, callerID, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete business %d: %w", id, err)
	}
	businessDeleted.Add(1)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"business_id": id, "owner_id": callerID}).Info("business deleted")
	}
	s.notifyOwner(ctx, current, mailtpl.BusinessDeleted)
	return nil
}

// Ping checks the record store.
func (s *BusinessService) Ping(ctx context.Context) error {
	return s.Repo.Ping(ctx)
}

// load returns (nil, nil) when the record does not exist.
func (s *BusinessService) load(ctx context.Context, id int64) (*entity.Business, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get business %d: %w", id, err)
	}
	return b, nil
}

// notifyOwner enqueues a listing email. Failures are logged and never
// surface to the caller.
func (s *BusinessService) notifyOwner(ctx context.Context, b *entity.Business, template string) {
	if !s.Notify.Enabled || s.Pub == nil || s.Users == nil {
		return
	}
	owner, err := s.Users.GetByID(ctx, b.OwnerID)
	if err != nil || owner == nil || owner.Email == "" {
		return
	}
	data := mailtpl.ListingData{
		OwnerName:    owner.DisplayName(),
		BusinessID:   b.ID,
		BusinessName: b.Name,
		Category:     b.Category.String(),
		CompanyName:  s.Notify.CompanyName,
		SupportURL:   s.Notify.SupportURL,
	}
	if s.Notify.ListingURLFmt != "" {
		data.ListingURL = fmt.Sprintf(s.Notify.ListingURLFmt, b.ID)
	}
	job := mailer.EmailJob{To: owner.Email, Template: template, Data: data.ToMap()}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		notifyPublishErr.Add(1)
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"business_id": b.ID, "template": template}).Warn("failed to publish email job")
		}
	}
}
