package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/repository"
	apperrors "github.com/zezman/directory/pkg/errors"
)

// ModerationGate applies admin approve and reject decisions and refreshes
// every aggregate that depends on the moderated entity.
type ModerationGate struct {
	businesses repository.BusinessRepository
	reviews    repository.ReviewRepository
	rating     *RatingAggregator
	counts     *CountSynchronizer
	events     EventPublisher
	logger     *slog.Logger
}

// NewModerationGate creates a new moderation gate.
func NewModerationGate(
	businesses repository.BusinessRepository,
	reviews repository.ReviewRepository,
	rating *RatingAggregator,
	counts *CountSynchronizer,
	events EventPublisher,
	logger *slog.Logger,
) *ModerationGate {
	return &ModerationGate{
		businesses: businesses,
		reviews:    reviews,
		rating:     rating,
		counts:     counts,
		events:     events,
		logger:     logger,
	}
}

// SetBusinessApproval approves or rejects a business, then recounts its
// category and each of its services.
func (g *ModerationGate) SetBusinessApproval(ctx context.Context, businessID string, approve bool, actorID string) (*domain.Business, error) {
	b, err := g.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("set business approval: %w", err)
	}
	if !b.Active {
		return nil, apperrors.NotFound("business", businessID)
	}

	next, changed := b.Status.Transition(approve)
	if changed {
		now := time.Now().UTC()
		if err := g.businesses.SetStatus(ctx, businessID, next, actorID, now); err != nil {
			return nil, fmt.Errorf("set business approval: %w", err)
		}

		b.Status = next
		b.UpdatedAt = now
		if next == domain.StatusApproved {
			b.ApprovedAt = &now
			b.ApprovedBy = &actorID
		} else {
			b.ApprovedAt = nil
			b.ApprovedBy = nil
		}
	}

	// Parents are recounted even when the status is unchanged.
	if err := g.counts.recomputeParents(ctx, []string{b.CategoryID}, b.ServiceIDs()); err != nil {
		return nil, fmt.Errorf("set business approval: %w", err)
	}

	if changed {
		logPublishFailure(ctx, g.logger, "business.moderated", g.events.PublishBusinessModerated(ctx, b),
			slog.String("business_id", b.ID),
		)
	}

	g.logger.InfoContext(ctx, "business moderated",
		slog.String("business_id", b.ID),
		slog.String("status", string(b.Status)),
		slog.String("actor_id", actorID),
		slog.Bool("changed", changed),
	)

	return b, nil
}

// SetReviewApproval approves or rejects a review, then recomputes the
// rating and review count of its business.
func (g *ModerationGate) SetReviewApproval(ctx context.Context, reviewID string, approve bool, actorID, notes string) (*domain.Review, error) {
	rv, err := g.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("set review approval: %w", err)
	}

	next, changed := rv.Status.Transition(approve)
	now := time.Now().UTC()

	if err := g.reviews.SetModeration(ctx, reviewID, next, notes, actorID, now); err != nil {
		return nil, fmt.Errorf("set review approval: %w", err)
	}

	rv.Status = next
	rv.ModerationNotes = notes
	rv.ModeratedBy = &actorID
	rv.ModeratedAt = &now
	rv.UpdatedAt = now

	if err := errors.Join(
		g.rating.RecomputeRating(ctx, rv.BusinessID),
		g.counts.RecomputeReviewCount(ctx, rv.BusinessID),
	); err != nil {
		return nil, fmt.Errorf("set review approval: %w", err)
	}

	if changed {
		logPublishFailure(ctx, g.logger, "review.moderated", g.events.PublishReviewModerated(ctx, rv),
			slog.String("review_id", rv.ID),
		)
	}

	g.logger.InfoContext(ctx, "review moderated",
		slog.String("review_id", rv.ID),
		slog.String("business_id", rv.BusinessID),
		slog.String("status", string(rv.Status)),
		slog.String("actor_id", actorID),
	)

	return rv, nil
}
