package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/repository"
	apperrors "github.com/zezman/directory/pkg/errors"
	"github.com/zezman/directory/pkg/pagination"
)

// ReviewOptions tunes ReviewService from configuration.
type ReviewOptions struct {
	// AutoApprove publishes new reviews without moderation.
	AutoApprove bool
}

// ReviewService implements the business logic for reviews, votes, reports
// and owner responses.
type ReviewService struct {
	reviews    repository.ReviewRepository
	businesses repository.BusinessRepository
	rating     *RatingAggregator
	counts     *CountSynchronizer
	events     EventPublisher
	logger     *slog.Logger
	opts       ReviewOptions
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	businesses repository.BusinessRepository,
	rating *RatingAggregator,
	counts *CountSynchronizer,
	events EventPublisher,
	logger *slog.Logger,
	opts ReviewOptions,
) *ReviewService {
	return &ReviewService{
		reviews:    reviews,
		businesses: businesses,
		rating:     rating,
		counts:     counts,
		events:     events,
		logger:     logger,
		opts:       opts,
	}
}

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	BusinessID string
	Rating     int
	Comment    string
}

// UpdateReviewInput holds the parameters for editing a review. Nil fields
// are left unchanged.
type UpdateReviewInput struct {
	Rating  *int
	Comment *string
}

// CreateReview stores the actor's review of a visible business and
// refreshes the business aggregates.
func (s *ReviewService) CreateReview(ctx context.Context, actor domain.Actor, input *CreateReviewInput) (*domain.Review, error) {
	if actor.UserID == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}
	if input.BusinessID == "" {
		return nil, apperrors.InvalidInput("business_id is required")
	}
	if err := validateRating(input.Rating); err != nil {
		return nil, err
	}
	comment := strings.TrimSpace(input.Comment)
	if err := validateLength("comment", comment, domain.MaxCommentLength); err != nil {
		return nil, err
	}

	b, err := s.businesses.GetByID(ctx, input.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	if !b.Visible() {
		return nil, apperrors.NotFound("business", input.BusinessID)
	}

	status := domain.StatusPending
	if s.opts.AutoApprove {
		status = domain.StatusApproved
	}

	now := time.Now().UTC()
	rv := &domain.Review{
		ID:         uuid.New().String(),
		UserID:     actor.UserID,
		BusinessID: input.BusinessID,
		Rating:     input.Rating,
		Comment:    comment,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.refreshBusiness(ctx, rv.BusinessID); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	logPublishFailure(ctx, s.logger, "review.created", s.events.PublishReviewCreated(ctx, rv),
		slog.String("review_id", rv.ID),
	)

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", rv.ID),
		slog.String("business_id", rv.BusinessID),
		slog.String("user_id", rv.UserID),
		slog.Int("rating", rv.Rating),
		slog.String("status", string(rv.Status)),
	)

	return rv, nil
}

// GetReview returns a review. Unapproved reviews are visible only to their
// author and admins.
func (s *ReviewService) GetReview(ctx context.Context, viewer domain.Actor, id string) (*domain.Review, error) {
	rv, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if !rv.Approved() && !viewer.CanManage(rv.UserID) {
		return nil, apperrors.NotFound("review", id)
	}
	return rv, nil
}

// UpdateReview edits a review. The business rating is recomputed only when
// the star value changes.
func (s *ReviewService) UpdateReview(ctx context.Context, actor domain.Actor, id string, input *UpdateReviewInput) (*domain.Review, error) {
	rv, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	if !actor.CanManage(rv.UserID) {
		return nil, apperrors.Forbidden("not authorized to update this review")
	}

	ratingChanged := false
	if input.Rating != nil {
		if err := validateRating(*input.Rating); err != nil {
			return nil, err
		}
		ratingChanged = *input.Rating != rv.Rating
		rv.Rating = *input.Rating
	}
	if input.Comment != nil {
		comment := strings.TrimSpace(*input.Comment)
		if err := validateLength("comment", comment, domain.MaxCommentLength); err != nil {
			return nil, err
		}
		rv.Comment = comment
	}

	if err := s.reviews.Update(ctx, rv); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	if ratingChanged {
		if err := s.rating.RecomputeRating(ctx, rv.BusinessID); err != nil {
			return nil, fmt.Errorf("update review: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", rv.ID),
		slog.Bool("rating_changed", ratingChanged),
	)

	return rv, nil
}

// DeleteReview removes a review and refreshes the business aggregates.
func (s *ReviewService) DeleteReview(ctx context.Context, actor domain.Actor, id string) error {
	rv, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if !actor.CanManage(rv.UserID) {
		return apperrors.Forbidden("not authorized to delete this review")
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if err := s.refreshBusiness(ctx, rv.BusinessID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	logPublishFailure(ctx, s.logger, "review.deleted", s.events.PublishReviewDeleted(ctx, rv),
		slog.String("review_id", rv.ID),
	)

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", rv.ID),
		slog.String("business_id", rv.BusinessID),
		slog.String("actor_id", actor.UserID),
	)
	return nil
}

// ListBusinessReviews returns a page of approved reviews of a visible business.
func (s *ReviewService) ListBusinessReviews(ctx context.Context, businessID string, sort domain.ReviewSort, page pagination.Params) (*pagination.Result[domain.Review], error) {
	b, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("list business reviews: %w", err)
	}
	if !b.Visible() {
		return nil, apperrors.NotFound("business", businessID)
	}

	items, total, err := s.reviews.ListByBusiness(ctx, businessID, sort, page)
	if err != nil {
		return nil, fmt.Errorf("list business reviews: %w", err)
	}

	result := pagination.NewResult(items, total, page)
	return &result, nil
}

// ListMyReviews returns a page of every review written by a user.
func (s *ReviewService) ListMyReviews(ctx context.Context, userID string, page pagination.Params) (*pagination.Result[domain.Review], error) {
	items, total, err := s.reviews.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, fmt.Errorf("list my reviews: %w", err)
	}

	result := pagination.NewResult(items, total, page)
	return &result, nil
}

// VoteHelpful records whether the actor found an approved review helpful.
// Voting again replaces the earlier vote.
func (s *ReviewService) VoteHelpful(ctx context.Context, actor domain.Actor, reviewID string, helpful bool) (domain.VoteTally, error) {
	rv, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return domain.VoteTally{}, fmt.Errorf("vote review: %w", err)
	}
	if !rv.Approved() {
		return domain.VoteTally{}, apperrors.NotFound("review", reviewID)
	}
	if rv.UserID == actor.UserID {
		return domain.VoteTally{}, apperrors.Forbidden("you cannot vote on your own review")
	}

	tally, err := s.reviews.Vote(ctx, reviewID, actor.UserID, helpful)
	if err != nil {
		return domain.VoteTally{}, fmt.Errorf("vote review: %w", err)
	}
	return tally, nil
}

// ReportReview flags a review for moderators.
func (s *ReviewService) ReportReview(ctx context.Context, actor domain.Actor, reviewID, reason, details string) error {
	if !domain.IsValidReportReason(reason) {
		return apperrors.InvalidInput(fmt.Sprintf("reason must be one of %s", strings.Join(domain.ValidReportReasons(), ", ")))
	}
	details = strings.TrimSpace(details)
	if err := validateLength("details", details, domain.MaxReportDetailsLength); err != nil {
		return err
	}

	if _, err := s.reviews.GetByID(ctx, reviewID); err != nil {
		return fmt.Errorf("report review: %w", err)
	}

	if err := s.reviews.AddReport(ctx, reviewID, actor.UserID, reason, details); err != nil {
		return fmt.Errorf("report review: %w", err)
	}

	s.logger.InfoContext(ctx, "review reported",
		slog.String("review_id", reviewID),
		slog.String("user_id", actor.UserID),
		slog.String("reason", reason),
	)
	return nil
}

// RespondToReview stores the public reply of the business owner.
func (s *ReviewService) RespondToReview(ctx context.Context, actor domain.Actor, reviewID, comment string) (*domain.Review, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, apperrors.InvalidInput("comment is required")
	}
	if err := validateLength("comment", comment, domain.MaxCommentLength); err != nil {
		return nil, err
	}

	rv, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("respond to review: %w", err)
	}

	b, err := s.businesses.GetByID(ctx, rv.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("respond to review: %w", err)
	}
	if !actor.CanManage(b.OwnerID) {
		return nil, apperrors.Forbidden("only the business owner can respond to reviews")
	}

	resp := domain.BusinessResponse{
		Comment:     comment,
		RespondedBy: actor.UserID,
		RespondedAt: time.Now().UTC(),
	}
	if err := s.reviews.SetResponse(ctx, reviewID, resp); err != nil {
		return nil, fmt.Errorf("respond to review: %w", err)
	}
	rv.Response = &resp

	return rv, nil
}

// refreshBusiness recomputes the rating and review count of a business.
func (s *ReviewService) refreshBusiness(ctx context.Context, businessID string) error {
	return errors.Join(
		s.rating.RecomputeRating(ctx, businessID),
		s.counts.RecomputeReviewCount(ctx, businessID),
	)
}

func validateRating(rating int) error {
	if rating < 1 || rating > domain.MaxStars {
		return apperrors.InvalidInput(fmt.Sprintf("rating must be between 1 and %d", domain.MaxStars))
	}
	return nil
}

func validateLength(field, v string, limit int) error {
	if utf8.RuneCountInString(v) > limit {
		return apperrors.InvalidInput(fmt.Sprintf("%s must be at most %d characters", field, limit))
	}
	return nil
}
