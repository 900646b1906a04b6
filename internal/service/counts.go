package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zezman/directory/internal/repository"
	apperrors "github.com/zezman/directory/pkg/errors"
)

// CountSynchronizer keeps the scalar counters on businesses, categories and
// services equal to a count of their source rows. Each call recounts from
// scratch in a single statement, so concurrent callers converge.
type CountSynchronizer struct {
	businesses repository.BusinessRepository
	categories repository.CategoryRepository
	services   repository.ServiceRepository
	logger     *slog.Logger
}

// NewCountSynchronizer creates a new count synchronizer.
func NewCountSynchronizer(
	businesses repository.BusinessRepository,
	categories repository.CategoryRepository,
	services repository.ServiceRepository,
	logger *slog.Logger,
) *CountSynchronizer {
	return &CountSynchronizer{
		businesses: businesses,
		categories: categories,
		services:   services,
		logger:     logger,
	}
}

// RecomputeFavoriteCount sets favorite_count to the number of favorites of the business.
func (c *CountSynchronizer) RecomputeFavoriteCount(ctx context.Context, businessID string) error {
	return c.recompute(ctx, kindFavoriteCount, "business_id", businessID, c.businesses.RefreshFavoriteCount)
}

// RecomputeReviewCount sets review_count to the number of approved reviews of the business.
func (c *CountSynchronizer) RecomputeReviewCount(ctx context.Context, businessID string) error {
	return c.recompute(ctx, kindReviewCount, "business_id", businessID, c.businesses.RefreshReviewCount)
}

// RecomputeCategoryBusinessCount sets business_count to the number of active,
// approved businesses in the category.
func (c *CountSynchronizer) RecomputeCategoryBusinessCount(ctx context.Context, categoryID string) error {
	return c.recompute(ctx, kindCategoryBusinessCount, "category_id", categoryID, c.categories.RefreshBusinessCount)
}

// RecomputeServiceBusinessCount sets business_count to the number of active,
// approved businesses offering the service.
func (c *CountSynchronizer) RecomputeServiceBusinessCount(ctx context.Context, serviceID string) error {
	return c.recompute(ctx, kindServiceBusinessCount, "service_id", serviceID, c.services.RefreshBusinessCount)
}

// recomputeParents recounts a category and a set of services. The first
// error is returned after every parent has been attempted.
func (c *CountSynchronizer) recomputeParents(ctx context.Context, categoryIDs, serviceIDs []string) error {
	var errs []error
	for _, id := range dedupe(categoryIDs) {
		errs = append(errs, c.RecomputeCategoryBusinessCount(ctx, id))
	}
	for _, id := range dedupe(serviceIDs) {
		errs = append(errs, c.RecomputeServiceBusinessCount(ctx, id))
	}
	return errors.Join(errs...)
}

func (c *CountSynchronizer) recompute(
	ctx context.Context,
	kind, idKey, id string,
	refresh func(ctx context.Context, id string) (int, error),
) error {
	if id == "" {
		return nil
	}

	n, err := refresh(ctx, id)
	observeRecompute(kind, err)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.logger.WarnContext(ctx, "count recompute skipped, parent not found",
				slog.String("kind", kind),
				slog.String(idKey, id),
			)
			return nil
		}
		c.logger.ErrorContext(ctx, "failed to recompute count",
			slog.String("kind", kind),
			slog.String(idKey, id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("recompute %s: %w", kind, err)
	}

	c.logger.DebugContext(ctx, "count recomputed",
		slog.String("kind", kind),
		slog.String(idKey, id),
		slog.Int("count", n),
	)
	return nil
}

// dedupe drops empty and repeated IDs, keeping first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
