package repository

import (
	"context"
	"time"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/pkg/pagination"
)

// BusinessRepository defines persistence for businesses and their derived
// aggregate columns.
type BusinessRepository interface {
	// Create inserts a business together with the services it offers.
	Create(ctx context.Context, b *domain.Business) error

	// GetByID retrieves a business, active or not, by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Business, error)

	// Update stores the owner-editable fields and replaces the service links.
	Update(ctx context.Context, b *domain.Business) error

	// SoftDelete marks a business inactive.
	SoftDelete(ctx context.Context, id string) error

	// IncrementViewCount bumps the view counter of a business.
	IncrementViewCount(ctx context.Context, id string) error

	// CountByOwner returns the number of active businesses owned by a user.
	CountByOwner(ctx context.Context, ownerID string) (int, error)

	// ListByOwner returns a page of a user's active businesses with the total count.
	ListByOwner(ctx context.Context, ownerID string, page pagination.Params) ([]domain.Business, int, error)

	// ListByStatus returns a page of active businesses in a moderation state.
	ListByStatus(ctx context.Context, status domain.ModerationStatus, page pagination.Params) ([]domain.Business, int, error)

	// ListFeatured returns visible featured businesses, best rated first.
	ListFeatured(ctx context.Context, limit int) ([]domain.Business, error)

	// ListPopular returns visible businesses with the most favorites first.
	ListPopular(ctx context.Context, limit int) ([]domain.Business, error)

	// SetStatus stores a moderation decision.
	SetStatus(ctx context.Context, id string, status domain.ModerationStatus, actorID string, at time.Time) error

	// Search returns a page of visible businesses matching the criteria.
	Search(ctx context.Context, c *domain.SearchCriteria) ([]domain.SearchHit, int, error)

	// UpdateRating writes the rating aggregate of a business.
	UpdateRating(ctx context.Context, id string, s domain.RatingSummary) error

	// RefreshFavoriteCount recounts favorites of a business and stores the result.
	RefreshFavoriteCount(ctx context.Context, id string) (int, error)

	// RefreshReviewCount recounts approved reviews of a business and stores the result.
	RefreshReviewCount(ctx context.Context, id string) (int, error)
}

// ReviewRepository defines persistence for reviews, votes and reports.
type ReviewRepository interface {
	// Create inserts a review. A second review for the same user and
	// business fails with a conflict.
	Create(ctx context.Context, r *domain.Review) error

	// GetByID retrieves a review by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// Update stores the author-editable fields and the moderation status.
	Update(ctx context.Context, r *domain.Review) error

	// Delete removes a review.
	Delete(ctx context.Context, id string) error

	// ListByBusiness returns a page of approved reviews of a business.
	ListByBusiness(ctx context.Context, businessID string, sort domain.ReviewSort, page pagination.Params) ([]domain.Review, int, error)

	// ListByUser returns a page of reviews written by a user.
	ListByUser(ctx context.Context, userID string, page pagination.Params) ([]domain.Review, int, error)

	// ListByStatus returns a page of reviews in a moderation state, oldest first.
	ListByStatus(ctx context.Context, status domain.ModerationStatus, page pagination.Params) ([]domain.Review, int, error)

	// SetModeration stores a moderation decision.
	SetModeration(ctx context.Context, id string, status domain.ModerationStatus, notes, actorID string, at time.Time) error

	// SetResponse stores the business owner's reply.
	SetResponse(ctx context.Context, id string, resp domain.BusinessResponse) error

	// AddReport records a user's report and flags the review. A second
	// report by the same user fails with a conflict.
	AddReport(ctx context.Context, reviewID, userID, reason, details string) error

	// Vote records or replaces a user's helpful vote and returns the new tally.
	Vote(ctx context.Context, reviewID, userID string, helpful bool) (domain.VoteTally, error)

	// ApprovedHistogram counts approved reviews of a business per star.
	ApprovedHistogram(ctx context.Context, businessID string) (domain.Histogram, error)
}

// FavoriteRepository defines persistence for favorites.
type FavoriteRepository interface {
	// Create inserts a favorite. A duplicate fails with a conflict.
	Create(ctx context.Context, f *domain.Favorite) error

	// Get retrieves a user's favorite of a business.
	Get(ctx context.Context, userID, businessID string) (*domain.Favorite, error)

	// UpdateNotes replaces the notes on a favorite.
	UpdateNotes(ctx context.Context, userID, businessID, notes string) error

	// Delete removes a favorite.
	Delete(ctx context.Context, userID, businessID string) error

	// ListByUser returns a page of a user's favorites, newest first.
	ListByUser(ctx context.Context, userID string, page pagination.Params) ([]domain.Favorite, int, error)
}

// CategoryRepository defines persistence for categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)

	// RefreshBusinessCount recounts visible businesses in a category and stores the result.
	RefreshBusinessCount(ctx context.Context, id string) (int, error)
}

// ServiceRepository defines persistence for services.
type ServiceRepository interface {
	Create(ctx context.Context, s *domain.Service) error
	GetByID(ctx context.Context, id string) (*domain.Service, error)

	// List returns active services, optionally restricted to one category.
	List(ctx context.Context, categoryID *string) ([]domain.Service, error)

	// RefreshBusinessCount recounts visible businesses offering a service and stores the result.
	RefreshBusinessCount(ctx context.Context, id string) (int, error)
}

// StatsRepository reads admin dashboard counters.
type StatsRepository interface {
	Dashboard(ctx context.Context) (*domain.DashboardStats, error)

	// ReviewHistogram returns the approved-review histogram across all
	// businesses together with their summed helpful votes.
	ReviewHistogram(ctx context.Context) (domain.Histogram, int, error)

	FavoriteStats(ctx context.Context) (*domain.FavoriteStats, error)
}
