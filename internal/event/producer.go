package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zezman/directory/internal/domain"
	pkgkafka "github.com/zezman/directory/pkg/kafka"
	"github.com/zezman/directory/pkg/logger"
)

// Kafka topics for directory domain events.
var (
	TopicBusinessApproved      = pkgkafka.Topic("business", "approved")
	TopicBusinessRejected      = pkgkafka.Topic("business", "rejected")
	TopicBusinessDeleted       = pkgkafka.Topic("business", "deleted")
	TopicBusinessRatingUpdated = pkgkafka.Topic("business", "rating_updated")
	TopicReviewCreated         = pkgkafka.Topic("review", "created")
	TopicReviewModerated       = pkgkafka.Topic("review", "moderated")
	TopicReviewDeleted         = pkgkafka.Topic("review", "deleted")
	TopicFavoriteAdded         = pkgkafka.Topic("favorite", "added")
	TopicFavoriteRemoved       = pkgkafka.Topic("favorite", "removed")
)

// Aggregate type constants.
const (
	AggregateTypeBusiness = "business"
	AggregateTypeReview   = "review"
	AggregateTypeFavorite = "favorite"
)

// SourceDirectoryService identifies events originating from this service.
const SourceDirectoryService = "directory-service"

// BusinessModeratedData is the payload for business.approved and business.rejected.
type BusinessModeratedData struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	Name       string     `json:"name"`
	CategoryID string     `json:"category_id"`
	ServiceIDs []string   `json:"service_ids"`
	Status     string     `json:"status"`
	ApprovedBy *string    `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
}

// BusinessDeletedData is the payload for a business.deleted event.
type BusinessDeletedData struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	CategoryID string `json:"category_id"`
}

// RatingUpdatedData is the payload for a business.rating_updated event.
type RatingUpdatedData struct {
	BusinessID   string                    `json:"business_id"`
	Rating       float64                   `json:"rating"`
	TotalRatings int                       `json:"total_ratings"`
	Distribution domain.RatingDistribution `json:"rating_distribution"`
}

// ReviewData is the payload for review.created, review.moderated and
// review.deleted events.
type ReviewData struct {
	ID         string `json:"id"`
	BusinessID string `json:"business_id"`
	UserID     string `json:"user_id"`
	Rating     int    `json:"rating"`
	Status     string `json:"status"`
}

// FavoriteData is the payload for favorite.added and favorite.removed events.
type FavoriteData struct {
	UserID     string `json:"user_id"`
	BusinessID string `json:"business_id"`
}

// publisher is the part of *pkgkafka.Producer the event producer uses.
type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes directory domain events to Kafka.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the directory service.
func NewProducer(kafka publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// publish wraps data in an event envelope carrying the request correlation
// ID and writes it to topic.
func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceDirectoryService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// PublishBusinessModerated publishes business.approved or business.rejected
// depending on the business status.
func (p *Producer) PublishBusinessModerated(ctx context.Context, b *domain.Business) error {
	topic := TopicBusinessRejected
	if b.Status == domain.StatusApproved {
		topic = TopicBusinessApproved
	}

	data := BusinessModeratedData{
		ID:         b.ID,
		OwnerID:    b.OwnerID,
		Name:       b.Name,
		CategoryID: b.CategoryID,
		ServiceIDs: b.ServiceIDs(),
		Status:     string(b.Status),
		ApprovedBy: b.ApprovedBy,
		ApprovedAt: b.ApprovedAt,
	}
	return p.publish(ctx, topic, b.ID, AggregateTypeBusiness, data)
}

// PublishBusinessDeleted publishes a business.deleted event.
func (p *Producer) PublishBusinessDeleted(ctx context.Context, b *domain.Business) error {
	data := BusinessDeletedData{ID: b.ID, OwnerID: b.OwnerID, CategoryID: b.CategoryID}
	return p.publish(ctx, TopicBusinessDeleted, b.ID, AggregateTypeBusiness, data)
}

// PublishRatingUpdated publishes a business.rating_updated event.
func (p *Producer) PublishRatingUpdated(ctx context.Context, businessID string, s domain.RatingSummary) error {
	data := RatingUpdatedData{
		BusinessID:   businessID,
		Rating:       s.Rating,
		TotalRatings: s.TotalRatings,
		Distribution: s.Distribution,
	}
	return p.publish(ctx, TopicBusinessRatingUpdated, businessID, AggregateTypeBusiness, data)
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, r *domain.Review) error {
	return p.publish(ctx, TopicReviewCreated, r.ID, AggregateTypeReview, reviewData(r))
}

// PublishReviewModerated publishes a review.moderated event.
func (p *Producer) PublishReviewModerated(ctx context.Context, r *domain.Review) error {
	return p.publish(ctx, TopicReviewModerated, r.ID, AggregateTypeReview, reviewData(r))
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, r *domain.Review) error {
	return p.publish(ctx, TopicReviewDeleted, r.ID, AggregateTypeReview, reviewData(r))
}

// PublishFavoriteAdded publishes a favorite.added event keyed by business so
// that a business's favorite events stay ordered.
func (p *Producer) PublishFavoriteAdded(ctx context.Context, f *domain.Favorite) error {
	data := FavoriteData{UserID: f.UserID, BusinessID: f.BusinessID}
	return p.publish(ctx, TopicFavoriteAdded, f.BusinessID, AggregateTypeFavorite, data)
}

// PublishFavoriteRemoved publishes a favorite.removed event.
func (p *Producer) PublishFavoriteRemoved(ctx context.Context, userID, businessID string) error {
	data := FavoriteData{UserID: userID, BusinessID: businessID}
	return p.publish(ctx, TopicFavoriteRemoved, businessID, AggregateTypeFavorite, data)
}

func reviewData(r *domain.Review) ReviewData {
	return ReviewData{
		ID:         r.ID,
		BusinessID: r.BusinessID,
		UserID:     r.UserID,
		Rating:     r.Rating,
		Status:     string(r.Status),
	}
}
