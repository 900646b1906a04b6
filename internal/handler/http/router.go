package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/pkg/health"
	"github.com/zezman/directory/pkg/middleware"
)

// ServiceName labels the service in metrics and traces.
const ServiceName = "directory"

// RouterDeps holds everything NewRouter mounts.
type RouterDeps struct {
	Businesses BusinessService
	Search     SearchService
	Reviews    ReviewService
	Favorites  FavoriteService
	Catalog    CatalogService
	Moderation ModerationService
	Admin      AdminService

	Health         *health.Handler
	TokenValidator middleware.TokenValidator
	// RateLimiter guards mutating endpoints. Nil disables rate limiting.
	RateLimiter    *middleware.RateLimiter
	CORS           middleware.CORSConfig
	PprofCIDRs     []string
	Logger         *slog.Logger
}

// NewRouter creates a chi router with all directory routes registered.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(d.CORS))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestLogging(d.Logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.PrometheusMetrics(ServiceName))

	// Health, metrics and profiling
	r.Get("/health/live", d.Health.LivenessHandler())
	r.Get("/health/ready", d.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, d.PprofCIDRs, d.Logger)

	businesses := NewBusinessHandler(d.Businesses, d.Logger)
	search := NewSearchHandler(d.Search, d.Logger)
	reviews := NewReviewHandler(d.Reviews, d.Logger)
	favorites := NewFavoriteHandler(d.Favorites, d.Logger)
	catalog := NewCatalogHandler(d.Catalog, d.Logger)
	admin := NewAdminHandler(d.Moderation, d.Admin, d.Logger)

	limit := func(next http.Handler) http.Handler { return next }
	if d.RateLimiter != nil {
		limit = d.RateLimiter.Handler
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public endpoints; a valid token widens what the caller can see.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(d.TokenValidator))
			r.Use(middleware.RequestLogger(d.Logger))

			r.Get("/businesses/search", search.Search)
			r.Get("/businesses/featured", businesses.ListFeatured)
			r.Get("/businesses/popular", businesses.ListPopular)
			r.Get("/businesses/{id}", businesses.GetBusiness)
			r.Get("/businesses/{id}/reviews", reviews.ListBusinessReviews)
			r.Get("/reviews/{id}", reviews.GetReview)

			r.Get("/categories", catalog.ListCategories)
			r.Get("/categories/{id}", catalog.GetCategory)
			r.Get("/services", catalog.ListServices)
			r.Get("/services/{id}", catalog.GetService)
		})

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(d.TokenValidator))
			r.Use(middleware.RequestLogger(d.Logger))

			r.Get("/users/me/businesses", businesses.ListMyBusinesses)
			r.Get("/users/me/favorites", favorites.ListMyFavorites)
			r.Get("/users/me/reviews", reviews.ListMyReviews)
			r.Get("/businesses/{id}/favorites/check", favorites.CheckFavorite)

			r.Group(func(r chi.Router) {
				r.Use(limit)

				r.Post("/businesses", businesses.CreateBusiness)
				r.Put("/businesses/{id}", businesses.UpdateBusiness)
				r.Delete("/businesses/{id}", businesses.DeleteBusiness)

				r.Post("/businesses/{id}/favorites", favorites.AddFavorite)
				r.Put("/businesses/{id}/favorites", favorites.UpdateNotes)
				r.Delete("/businesses/{id}/favorites", favorites.RemoveFavorite)

				r.Post("/reviews", reviews.CreateReview)
				r.Put("/reviews/{id}", reviews.UpdateReview)
				r.Delete("/reviews/{id}", reviews.DeleteReview)
				r.Post("/reviews/{id}/helpful", reviews.VoteHelpful)
				r.Post("/reviews/{id}/report", reviews.ReportReview)
				r.Post("/reviews/{id}/response", reviews.RespondToReview)
			})

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))

				r.Patch("/businesses/{id}/approve", admin.ApproveBusiness)
				r.Patch("/businesses/{id}/reject", admin.RejectBusiness)
				r.Patch("/reviews/{id}/moderate", admin.ModerateReview)

				r.Post("/categories", catalog.CreateCategory)
				r.Post("/services", catalog.CreateService)

				r.Get("/admin/dashboard", admin.Dashboard)
				r.Get("/admin/reviews/stats", admin.ReviewStats)
				r.Get("/admin/favorites/stats", admin.FavoriteStats)
				r.Get("/admin/businesses/pending", admin.PendingBusinesses)
				r.Get("/admin/reviews/pending", admin.PendingReviews)
				r.Post("/admin/businesses/{id}/recount", admin.RecountBusiness)
				r.Post("/admin/categories/{id}/recount", admin.RecountCategory)
				r.Post("/admin/services/{id}/recount", admin.RecountService)
			})
		})
	})

	return r
}
