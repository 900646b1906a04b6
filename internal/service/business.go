package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/repository"
	apperrors "github.com/zezman/directory/pkg/errors"
	"github.com/zezman/directory/pkg/pagination"
)

// Featured list limits.
const (
	DefaultFeaturedLimit = 10
	MaxFeaturedLimit     = 50
)

// BusinessOptions tunes BusinessService from configuration.
type BusinessOptions struct {
	// MaxPerUser caps the active businesses one user may own. Zero disables the cap.
	MaxPerUser int
	// Location is the timezone opening hours are evaluated in.
	Location *time.Location
}

// BusinessService implements the business logic for directory listings.
type BusinessService struct {
	repo   repository.BusinessRepository
	counts *CountSynchronizer
	events EventPublisher
	logger *slog.Logger
	opts   BusinessOptions
}

// NewBusinessService creates a new business service.
func NewBusinessService(
	repo repository.BusinessRepository,
	counts *CountSynchronizer,
	events EventPublisher,
	logger *slog.Logger,
	opts BusinessOptions,
) *BusinessService {
	return &BusinessService{
		repo:   repo,
		counts: counts,
		events: events,
		logger: logger,
		opts:   opts,
	}
}

// CreateBusinessInput holds the parameters for creating a business.
type CreateBusinessInput struct {
	Name         string
	Description  string
	Address      string
	City         string
	Country      string
	PostalCode   string
	Prefix       string
	Phone        string
	Email        string
	Website      string
	Logo         string
	Location     domain.Location
	CategoryID   string
	Services     []domain.BusinessService
	Tags         []string
	OpeningHours []domain.OpeningHours
}

// UpdateBusinessInput holds the parameters for updating a business. Nil
// fields are left unchanged. Featured and Verified are admin-only.
type UpdateBusinessInput struct {
	Name         *string
	Description  *string
	Address      *string
	City         *string
	Country      *string
	PostalCode   *string
	Prefix       *string
	Phone        *string
	Email        *string
	Website      *string
	Logo         *string
	Location     *domain.Location
	CategoryID   *string
	Services     []domain.BusinessService
	Tags         []string
	OpeningHours []domain.OpeningHours
	Featured     *bool
	Verified     *bool
}

// CreateBusiness creates a pending business owned by the actor.
func (s *BusinessService) CreateBusiness(ctx context.Context, actor domain.Actor, input *CreateBusinessInput) (*domain.Business, error) {
	if actor.UserID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.CategoryID == "" {
		return nil, apperrors.InvalidInput("category_id is required")
	}

	if s.opts.MaxPerUser > 0 {
		n, err := s.repo.CountByOwner(ctx, actor.UserID)
		if err != nil {
			return nil, fmt.Errorf("create business: %w", err)
		}
		if n >= s.opts.MaxPerUser {
			return nil, apperrors.LimitReached(fmt.Sprintf("a user may own at most %d businesses", s.opts.MaxPerUser))
		}
	}

	country := strings.TrimSpace(input.Country)
	if country == "" {
		country = domain.DefaultCountry
	}

	now := time.Now().UTC()
	b := &domain.Business{
		ID:           uuid.New().String(),
		OwnerID:      actor.UserID,
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		Address:      input.Address,
		City:         input.City,
		Country:      country,
		PostalCode:   input.PostalCode,
		Prefix:       input.Prefix,
		Phone:        input.Phone,
		Email:        input.Email,
		Website:      input.Website,
		Logo:         input.Logo,
		Location:     input.Location,
		CategoryID:   input.CategoryID,
		Services:     normalizeServices(input.Services),
		Tags:         normalizeTags(input.Tags),
		OpeningHours: input.OpeningHours,
		Active:       true,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if b.OpeningHours == nil {
		b.OpeningHours = []domain.OpeningHours{}
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create business: %w", err)
	}

	s.logger.InfoContext(ctx, "business created",
		slog.String("business_id", b.ID),
		slog.String("owner_id", b.OwnerID),
		slog.String("category_id", b.CategoryID),
	)

	b.Decorate(localNow(s.opts.Location))
	return b, nil
}

// GetBusiness returns a business and counts the view. Pending and rejected
// businesses are visible only to their owner and admins.
func (s *BusinessService) GetBusiness(ctx context.Context, viewer domain.Actor, id string) (*domain.Business, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}
	if !b.Active || (b.Status != domain.StatusApproved && !viewer.CanManage(b.OwnerID)) {
		return nil, apperrors.NotFound("business", id)
	}

	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to increment view count",
			slog.String("business_id", id),
			slog.String("error", err.Error()),
		)
	} else {
		b.ViewCount++
	}

	b.Decorate(localNow(s.opts.Location))
	return b, nil
}

// UpdateBusiness applies an owner or admin edit. When a visible business
// moves to another category or changes its services, both the old and the
// new parents are recounted.
func (s *BusinessService) UpdateBusiness(ctx context.Context, actor domain.Actor, id string, input *UpdateBusinessInput) (*domain.Business, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update business: %w", err)
	}
	if !b.Active {
		return nil, apperrors.NotFound("business", id)
	}
	if !actor.CanManage(b.OwnerID) {
		return nil, apperrors.Forbidden("you can only update your own businesses")
	}
	if (input.Featured != nil || input.Verified != nil) && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only admins can change featured or verified")
	}

	oldCategory := b.CategoryID
	oldServices := b.ServiceIDs()

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
		b.Name = name
	}
	if input.CategoryID != nil {
		if *input.CategoryID == "" {
			return nil, apperrors.InvalidInput("category_id must not be empty")
		}
		b.CategoryID = *input.CategoryID
	}
	setString(&b.Description, input.Description)
	setString(&b.Address, input.Address)
	setString(&b.City, input.City)
	setString(&b.Country, input.Country)
	setString(&b.PostalCode, input.PostalCode)
	setString(&b.Prefix, input.Prefix)
	setString(&b.Phone, input.Phone)
	setString(&b.Email, input.Email)
	setString(&b.Website, input.Website)
	setString(&b.Logo, input.Logo)
	if input.Location != nil {
		b.Location = *input.Location
	}
	if input.Services != nil {
		b.Services = normalizeServices(input.Services)
	}
	if input.Tags != nil {
		b.Tags = normalizeTags(input.Tags)
	}
	if input.OpeningHours != nil {
		b.OpeningHours = input.OpeningHours
	}
	if input.Featured != nil {
		b.Featured = *input.Featured
	}
	if input.Verified != nil {
		b.Verified = *input.Verified
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update business: %w", err)
	}

	newServices := b.ServiceIDs()
	if b.Visible() && (oldCategory != b.CategoryID || !sameIDs(oldServices, newServices)) {
		if err := s.counts.recomputeParents(ctx,
			[]string{oldCategory, b.CategoryID},
			append(oldServices, newServices...),
		); err != nil {
			return nil, fmt.Errorf("update business: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "business updated",
		slog.String("business_id", b.ID),
		slog.String("actor_id", actor.UserID),
	)

	b.Decorate(localNow(s.opts.Location))
	return b, nil
}

// DeleteBusiness soft deletes a business and recounts its parents.
func (s *BusinessService) DeleteBusiness(ctx context.Context, actor domain.Actor, id string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete business: %w", err)
	}
	if !b.Active {
		return apperrors.NotFound("business", id)
	}
	if !actor.CanManage(b.OwnerID) {
		return apperrors.Forbidden("you can only delete your own businesses")
	}

	wasVisible := b.Visible()

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete business: %w", err)
	}
	b.Active = false

	if wasVisible {
		if err := s.counts.recomputeParents(ctx, []string{b.CategoryID}, b.ServiceIDs()); err != nil {
			return fmt.Errorf("delete business: %w", err)
		}
	}

	logPublishFailure(ctx, s.logger, "business.deleted", s.events.PublishBusinessDeleted(ctx, b),
		slog.String("business_id", id),
	)

	s.logger.InfoContext(ctx, "business deleted",
		slog.String("business_id", id),
		slog.String("actor_id", actor.UserID),
	)
	return nil
}

// ListMyBusinesses returns a page of the active businesses owned by a user.
func (s *BusinessService) ListMyBusinesses(ctx context.Context, ownerID string, page pagination.Params) (*pagination.Result[domain.Business], error) {
	items, total, err := s.repo.ListByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, fmt.Errorf("list my businesses: %w", err)
	}

	s.decorate(items)
	result := pagination.NewResult(items, total, page)
	return &result, nil
}

// ListFeatured returns visible featured businesses, best rated first.
func (s *BusinessService) ListFeatured(ctx context.Context, limit int) ([]domain.Business, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	if limit > MaxFeaturedLimit {
		limit = MaxFeaturedLimit
	}

	items, err := s.repo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list featured businesses: %w", err)
	}

	s.decorate(items)
	return items, nil
}

// ListPopular returns visible businesses with the most favorites first.
// The limit is clamped the same way as ListFeatured.
func (s *BusinessService) ListPopular(ctx context.Context, limit int) ([]domain.Business, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	if limit > MaxFeaturedLimit {
		limit = MaxFeaturedLimit
	}

	items, err := s.repo.ListPopular(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list popular businesses: %w", err)
	}

	s.decorate(items)
	return items, nil
}

func (s *BusinessService) decorate(items []domain.Business) {
	now := localNow(s.opts.Location)
	for i := range items {
		items[i].Decorate(now)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// normalizeServices drops duplicate service links and defaults the currency.
func normalizeServices(in []domain.BusinessService) []domain.BusinessService {
	out := make([]domain.BusinessService, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, svc := range in {
		if svc.ServiceID == "" {
			continue
		}
		if _, ok := seen[svc.ServiceID]; ok {
			continue
		}
		seen[svc.ServiceID] = struct{}{}
		if svc.Currency == "" {
			svc.Currency = domain.DefaultCurrency
		}
		out = append(out, svc)
	}
	return out
}

// normalizeTags trims, lowercases and de-duplicates tags.
func normalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// sameIDs reports whether a and b hold the same set of IDs.
func sameIDs(a, b []string) bool {
	a, b = dedupe(a), dedupe(b)
	if len(a) != len(b) {
		return false
	}
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}
