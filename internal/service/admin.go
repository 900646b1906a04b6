package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/repository"
	"github.com/zezman/directory/pkg/pagination"
)

// AdminService serves the moderation queues, dashboard counters and
// on-demand recounts.
type AdminService struct {
	stats      repository.StatsRepository
	businesses repository.BusinessRepository
	reviews    repository.ReviewRepository
	categories repository.CategoryRepository
	services   repository.ServiceRepository
	rating     *RatingAggregator
	counts     *CountSynchronizer
	logger     *slog.Logger
}

// AdminDeps groups the collaborators of AdminService.
type AdminDeps struct {
	Stats      repository.StatsRepository
	Businesses repository.BusinessRepository
	Reviews    repository.ReviewRepository
	Categories repository.CategoryRepository
	Services   repository.ServiceRepository
	Rating     *RatingAggregator
	Counts     *CountSynchronizer
}

// NewAdminService creates a new admin service.
func NewAdminService(deps AdminDeps, logger *slog.Logger) *AdminService {
	return &AdminService{
		stats:      deps.Stats,
		businesses: deps.Businesses,
		reviews:    deps.Reviews,
		categories: deps.Categories,
		services:   deps.Services,
		rating:     deps.Rating,
		counts:     deps.Counts,
		logger:     logger,
	}
}

// Dashboard returns the admin dashboard counters.
func (s *AdminService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	stats, err := s.stats.Dashboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return stats, nil
}

// ReviewStats summarizes approved reviews across the directory. The average
// uses the same rounding as the per-business rating.
func (s *AdminService) ReviewStats(ctx context.Context) (*domain.ReviewStats, error) {
	h, helpful, err := s.stats.ReviewHistogram(ctx)
	if err != nil {
		return nil, fmt.Errorf("review stats: %w", err)
	}

	sum := domain.Summarize(h)
	return &domain.ReviewStats{
		TotalReviews:  sum.TotalRatings,
		AverageRating: sum.Rating,
		HelpfulVotes:  helpful,
		Distribution:  sum.Distribution,
	}, nil
}

// FavoriteStats returns favorite totals and distinct users and businesses.
func (s *AdminService) FavoriteStats(ctx context.Context) (*domain.FavoriteStats, error) {
	stats, err := s.stats.FavoriteStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("favorite stats: %w", err)
	}
	return stats, nil
}

// PendingBusinesses returns a page of active businesses awaiting moderation.
func (s *AdminService) PendingBusinesses(ctx context.Context, page pagination.Params) (*pagination.Result[domain.Business], error) {
	items, total, err := s.businesses.ListByStatus(ctx, domain.StatusPending, page)
	if err != nil {
		return nil, fmt.Errorf("list pending businesses: %w", err)
	}
	result := pagination.NewResult(items, total, page)
	return &result, nil
}

// PendingReviews returns a page of reviews awaiting moderation, oldest first.
func (s *AdminService) PendingReviews(ctx context.Context, page pagination.Params) (*pagination.Result[domain.Review], error) {
	items, total, err := s.reviews.ListByStatus(ctx, domain.StatusPending, page)
	if err != nil {
		return nil, fmt.Errorf("list pending reviews: %w", err)
	}
	result := pagination.NewResult(items, total, page)
	return &result, nil
}

// RecountBusiness recomputes every aggregate stored on a business and
// returns the refreshed row.
func (s *AdminService) RecountBusiness(ctx context.Context, id string) (*domain.Business, error) {
	if _, err := s.businesses.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("recount business: %w", err)
	}

	if err := errors.Join(
		s.rating.RecomputeRating(ctx, id),
		s.counts.RecomputeReviewCount(ctx, id),
		s.counts.RecomputeFavoriteCount(ctx, id),
	); err != nil {
		return nil, fmt.Errorf("recount business: %w", err)
	}

	b, err := s.businesses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("recount business: %w", err)
	}

	s.logger.InfoContext(ctx, "business aggregates recounted",
		slog.String("business_id", id),
		slog.Float64("rating", b.Rating),
		slog.Int("review_count", b.ReviewCount),
		slog.Int("favorite_count", b.FavoriteCount),
	)
	return b, nil
}

// RecountCategory recomputes the business count of a category.
func (s *AdminService) RecountCategory(ctx context.Context, id string) (*domain.Category, error) {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("recount category: %w", err)
	}
	if err := s.counts.RecomputeCategoryBusinessCount(ctx, id); err != nil {
		return nil, fmt.Errorf("recount category: %w", err)
	}

	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("recount category: %w", err)
	}
	return c, nil
}

// RecountService recomputes the business count of a service.
func (s *AdminService) RecountService(ctx context.Context, id string) (*domain.Service, error) {
	if _, err := s.services.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("recount service: %w", err)
	}
	if err := s.counts.RecomputeServiceBusinessCount(ctx, id); err != nil {
		return nil, fmt.Errorf("recount service: %w", err)
	}

	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("recount service: %w", err)
	}
	return svc, nil
}
