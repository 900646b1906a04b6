package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/service"
	"github.com/zezman/directory/pkg/httputil"
	"github.com/zezman/directory/pkg/logger"
	"github.com/zezman/directory/pkg/middleware"
	"github.com/zezman/directory/pkg/pagination"
)

// BusinessService is the business logic the business handler drives.
type BusinessService interface {
	CreateBusiness(ctx context.Context, actor domain.Actor, input *service.CreateBusinessInput) (*domain.Business, error)
	GetBusiness(ctx context.Context, viewer domain.Actor, id string) (*domain.Business, error)
	UpdateBusiness(ctx context.Context, actor domain.Actor, id string, input *service.UpdateBusinessInput) (*domain.Business, error)
	DeleteBusiness(ctx context.Context, actor domain.Actor, id string) error
	ListMyBusinesses(ctx context.Context, ownerID string, page pagination.Params) (*pagination.Result[domain.Business], error)
	ListFeatured(ctx context.Context, limit int) ([]domain.Business, error)
	ListPopular(ctx context.Context, limit int) ([]domain.Business, error)
}

// SearchService executes business searches.
type SearchService interface {
	Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error)
}

// ReviewService is the business logic the review handler drives.
type ReviewService interface {
	CreateReview(ctx context.Context, actor domain.Actor, input *service.CreateReviewInput) (*domain.Review, error)
	GetReview(ctx context.Context, viewer domain.Actor, id string) (*domain.Review, error)
	UpdateReview(ctx context.Context, actor domain.Actor, id string, input *service.UpdateReviewInput) (*domain.Review, error)
	DeleteReview(ctx context.Context, actor domain.Actor, id string) error
	ListBusinessReviews(ctx context.Context, businessID string, sort domain.ReviewSort, page pagination.Params) (*pagination.Result[domain.Review], error)
	ListMyReviews(ctx context.Context, userID string, page pagination.Params) (*pagination.Result[domain.Review], error)
	VoteHelpful(ctx context.Context, actor domain.Actor, reviewID string, helpful bool) (domain.VoteTally, error)
	ReportReview(ctx context.Context, actor domain.Actor, reviewID, reason, details string) error
	RespondToReview(ctx context.Context, actor domain.Actor, reviewID, comment string) (*domain.Review, error)
}

// FavoriteService is the business logic the favorite handler drives.
type FavoriteService interface {
	AddFavorite(ctx context.Context, userID, businessID, notes string) (*domain.Favorite, error)
	RemoveFavorite(ctx context.Context, userID, businessID string) error
	UpdateNotes(ctx context.Context, userID, businessID, notes string) (*domain.Favorite, error)
	IsFavorite(ctx context.Context, userID, businessID string) (bool, error)
	ListMyFavorites(ctx context.Context, userID string, page pagination.Params) (*pagination.Result[domain.Favorite], error)
}

// CatalogService manages categories and services.
type CatalogService interface {
	CreateCategory(ctx context.Context, input *service.CreateCategoryInput) (*domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateService(ctx context.Context, input *service.CreateServiceInput) (*domain.Service, error)
	GetService(ctx context.Context, id string) (*domain.Service, error)
	ListServices(ctx context.Context, categoryID *string) ([]domain.Service, error)
}

// ModerationService approves and rejects businesses and reviews.
type ModerationService interface {
	SetBusinessApproval(ctx context.Context, businessID string, approve bool, actorID string) (*domain.Business, error)
	SetReviewApproval(ctx context.Context, reviewID string, approve bool, actorID, notes string) (*domain.Review, error)
}

// AdminService backs the admin dashboard, queues and recount endpoints.
type AdminService interface {
	Dashboard(ctx context.Context) (*domain.DashboardStats, error)
	ReviewStats(ctx context.Context) (*domain.ReviewStats, error)
	FavoriteStats(ctx context.Context) (*domain.FavoriteStats, error)
	PendingBusinesses(ctx context.Context, page pagination.Params) (*pagination.Result[domain.Business], error)
	PendingReviews(ctx context.Context, page pagination.Params) (*pagination.Result[domain.Review], error)
	RecountBusiness(ctx context.Context, id string) (*domain.Business, error)
	RecountCategory(ctx context.Context, id string) (*domain.Category, error)
	RecountService(ctx context.Context, id string) (*domain.Service, error)
}

var (
	_ BusinessService   = (*service.BusinessService)(nil)
	_ SearchService     = (*service.SearchService)(nil)
	_ ReviewService     = (*service.ReviewService)(nil)
	_ FavoriteService   = (*service.FavoriteService)(nil)
	_ CatalogService    = (*service.CatalogService)(nil)
	_ ModerationService = (*service.ModerationGate)(nil)
	_ AdminService      = (*service.AdminService)(nil)
)

// actorFrom returns the caller identity stored by the auth middleware.
// Anonymous callers yield the zero Actor.
func actorFrom(r *http.Request) domain.Actor {
	return domain.Actor{
		UserID: middleware.UserIDFromContext(r.Context()),
		Role:   middleware.RoleFromContext(r.Context()),
	}
}

// requireUser writes a 401 and returns false when the request carries no
// identity.
func requireUser(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor := actorFrom(r)
	if actor.UserID == "" {
		writeErrorCode(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "user not authenticated")
		return actor, false
	}
	return actor, true
}

// pathID validates a UUID path parameter.
func pathID(w http.ResponseWriter, value string) (string, bool) {
	id, ok := httputil.ParseUUID(w, value)
	if !ok {
		return "", false
	}
	return id.String(), true
}

func writeErrorCode(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	httputil.WriteJSON(w, status, httputil.Response{
		Error: &httputil.ErrorResponse{
			Code:      code,
			Message:   message,
			RequestID: logger.CorrelationIDFromContext(r.Context()),
		},
	})
}

func writeInvalidParam(w http.ResponseWriter, r *http.Request, message string) {
	writeErrorCode(w, r, http.StatusBadRequest, "INVALID_PARAMETER", message)
}

// queryFloat parses an optional float query parameter. An absent parameter
// yields nil.
func queryFloat(r *http.Request, name string) (*float64, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// queryInt parses an optional integer query parameter, returning def when
// the parameter is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
