package service

import (
	"context"
	"log/slog"

	"github.com/zezman/directory/internal/domain"
)

// EventPublisher announces committed changes to other services. Publishing
// happens after the write and its recomputations; a failure is logged and
// never fails the request.
type EventPublisher interface {
	PublishBusinessModerated(ctx context.Context, b *domain.Business) error
	PublishBusinessDeleted(ctx context.Context, b *domain.Business) error
	PublishRatingUpdated(ctx context.Context, businessID string, s domain.RatingSummary) error
	PublishReviewCreated(ctx context.Context, r *domain.Review) error
	PublishReviewModerated(ctx context.Context, r *domain.Review) error
	PublishReviewDeleted(ctx context.Context, r *domain.Review) error
	PublishFavoriteAdded(ctx context.Context, f *domain.Favorite) error
	PublishFavoriteRemoved(ctx context.Context, userID, businessID string) error
}

// logPublishFailure records an event that could not be published.
func logPublishFailure(ctx context.Context, logger *slog.Logger, event string, err error, attrs ...any) {
	if err == nil {
		return
	}
	attrs = append(attrs, slog.String("event", event), slog.String("error", err.Error()))
	logger.ErrorContext(ctx, "failed to publish event", attrs...)
}
