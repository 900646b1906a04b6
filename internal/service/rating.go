package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/repository"
	apperrors "github.com/zezman/directory/pkg/errors"
	"github.com/zezman/directory/pkg/tracing"
)

const tracerName = "github.com/zezman/directory/internal/service"

// RatingAggregator keeps a business's rating, total_ratings and
// rating_distribution equal to the aggregate of its approved reviews.
type RatingAggregator struct {
	businesses repository.BusinessRepository
	reviews    repository.ReviewRepository
	events     EventPublisher
	logger     *slog.Logger
}

// NewRatingAggregator creates a new rating aggregator.
func NewRatingAggregator(
	businesses repository.BusinessRepository,
	reviews repository.ReviewRepository,
	events EventPublisher,
	logger *slog.Logger,
) *RatingAggregator {
	return &RatingAggregator{
		businesses: businesses,
		reviews:    reviews,
		events:     events,
		logger:     logger,
	}
}

// RecomputeRating reads the approved reviews of a business and overwrites
// its rating aggregate. A missing business is logged and ignored. Calling it
// twice without intervening writes leaves the same result.
func (a *RatingAggregator) RecomputeRating(ctx context.Context, businessID string) (err error) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "RatingAggregator.RecomputeRating",
		trace.WithAttributes(attribute.String("business.id", businessID)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	hist, err := a.reviews.ApprovedHistogram(ctx, businessID)
	if err != nil {
		observeRecompute(kindRating, err)
		a.logger.ErrorContext(ctx, "failed to read rating histogram",
			slog.String("business_id", businessID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("recompute rating: %w", err)
	}

	summary := domain.Summarize(hist)

	err = a.businesses.UpdateRating(ctx, businessID, summary)
	observeRecompute(kindRating, err)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			a.logger.WarnContext(ctx, "rating recompute skipped, business not found",
				slog.String("business_id", businessID),
			)
			return nil
		}
		a.logger.ErrorContext(ctx, "failed to store rating aggregate",
			slog.String("business_id", businessID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("recompute rating: %w", err)
	}

	span.SetAttributes(
		attribute.Float64("rating", summary.Rating),
		attribute.Int("total_ratings", summary.TotalRatings),
	)

	logPublishFailure(ctx, a.logger, "business.rating_updated",
		a.events.PublishRatingUpdated(ctx, businessID, summary),
		slog.String("business_id", businessID),
	)

	a.logger.DebugContext(ctx, "rating recomputed",
		slog.String("business_id", businessID),
		slog.Float64("rating", summary.Rating),
		slog.Int("total_ratings", summary.TotalRatings),
	)

	return nil
}
