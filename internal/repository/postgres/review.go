package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/repository"
	"github.com/zezman/directory/pkg/database"
	apperrors "github.com/zezman/directory/pkg/errors"
	"github.com/zezman/directory/pkg/pagination"
)

var _ repository.ReviewRepository = (*ReviewRepository)(nil)

const reviewColumns = `id, user_id, business_id, rating, comment, status, moderation_notes, moderated_by, moderated_at,
		       helpful_votes, total_votes, reported, report_reason, report_details,
		       response_comment, response_by, response_at, created_at, updated_at`

// ReviewRepository implements review persistence operations using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review into the database.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, user_id, business_id, rating, comment, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.UserID,
		review.BusinessID,
		review.Rating,
		review.Comment,
		review.Status,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("you have already reviewed this business")
		}
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("business", review.BusinessID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	rv, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return rv, nil
}

// Update stores the rating, comment and status of a review.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	review.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE reviews
		SET rating = $1, comment = $2, status = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.pool.Exec(ctx, query, review.Rating, review.Comment, review.Status, review.UpdatedAt, review.ID)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", review.ID)
	}
	return nil
}

// Delete removes a review from the database by its ID.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}
	return nil
}

// ListByBusiness returns a page of approved reviews of a business.
func (r *ReviewRepository) ListByBusiness(ctx context.Context, businessID string, sort domain.ReviewSort, page pagination.Params) ([]domain.Review, int, error) {
	query := fmt.Sprintf(`
		SELECT %s,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE business_id = $1 AND status = 'approved'
		ORDER BY %s
		LIMIT $2 OFFSET $3`, reviewColumns, reviewOrder(sort))

	return r.list(ctx, query, businessID, page.Limit, page.Offset)
}

// ListByUser returns a page of reviews written by a user, newest first.
func (r *ReviewRepository) ListByUser(ctx context.Context, userID string, page pagination.Params) ([]domain.Review, int, error) {
	query := `
		SELECT ` + reviewColumns + `,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	return r.list(ctx, query, userID, page.Limit, page.Offset)
}

// ListByStatus returns a page of reviews in a moderation state, oldest first.
func (r *ReviewRepository) ListByStatus(ctx context.Context, status domain.ModerationStatus, page pagination.Params) ([]domain.Review, int, error) {
	query := `
		SELECT ` + reviewColumns + `,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE status = $1
		ORDER BY created_at ASC, id
		LIMIT $2 OFFSET $3`

	return r.list(ctx, query, status, page.Limit, page.Offset)
}

// SetModeration stores a moderation decision.
func (r *ReviewRepository) SetModeration(ctx context.Context, id string, status domain.ModerationStatus, notes, actorID string, at time.Time) error {
	query := `
		UPDATE reviews
		SET status = $1, moderation_notes = $2, moderated_by = $3, moderated_at = $4, updated_at = $4
		WHERE id = $5`

	ct, err := r.pool.Exec(ctx, query, status, notes, actorID, at, id)
	if err != nil {
		return fmt.Errorf("set review moderation: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}
	return nil
}

// SetResponse stores the business owner's reply.
func (r *ReviewRepository) SetResponse(ctx context.Context, id string, resp domain.BusinessResponse) error {
	query := `
		UPDATE reviews
		SET response_comment = $1, response_by = $2, response_at = $3
		WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query, resp.Comment, resp.RespondedBy, resp.RespondedAt, id)
	if err != nil {
		return fmt.Errorf("set review response: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}
	return nil
}

// AddReport records a report and flags the review with the latest reason.
func (r *ReviewRepository) AddReport(ctx context.Context, reviewID, userID, reason, details string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO review_reports (review_id, user_id, reason, details) VALUES ($1, $2, $3, $4)`,
			reviewID, userID, reason, details,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.Conflict("you have already reported this review")
			}
			if isForeignKeyViolation(err) {
				return apperrors.NotFound("review", reviewID)
			}
			return fmt.Errorf("insert review report: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE reviews SET reported = TRUE, report_reason = $1, report_details = $2 WHERE id = $3`,
			reason, details, reviewID,
		)
		if err != nil {
			return fmt.Errorf("flag reported review: %w", err)
		}
		return nil
	})
}

// Vote records or replaces a user's helpful vote, then recounts the tally
// from review_votes.
func (r *ReviewRepository) Vote(ctx context.Context, reviewID, userID string, helpful bool) (domain.VoteTally, error) {
	var tally domain.VoteTally

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO review_votes (review_id, user_id, helpful)
			VALUES ($1, $2, $3)
			ON CONFLICT (review_id, user_id) DO UPDATE SET helpful = EXCLUDED.helpful`,
			reviewID, userID, helpful,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return apperrors.NotFound("review", reviewID)
			}
			return fmt.Errorf("upsert review vote: %w", err)
		}

		err = tx.QueryRow(ctx, `
			UPDATE reviews rv
			SET helpful_votes = v.helpful, total_votes = v.total
			FROM (
				SELECT count(*) FILTER (WHERE helpful) AS helpful, count(*) AS total
				FROM review_votes WHERE review_id = $1
			) v
			WHERE rv.id = $1
			RETURNING rv.helpful_votes, rv.total_votes`,
			reviewID,
		).Scan(&tally.Helpful, &tally.Total)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NotFound("review", reviewID)
			}
			return fmt.Errorf("recount review votes: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.VoteTally{}, err
	}
	return tally, nil
}

// ApprovedHistogram counts approved reviews of a business per star.
func (r *ReviewRepository) ApprovedHistogram(ctx context.Context, businessID string) (h domain.Histogram, err error) {
	query := `
		SELECT rating, count(*)
		FROM reviews
		WHERE business_id = $1 AND status = 'approved'
		GROUP BY rating`

	ctx, end := database.TraceQuery(ctx, "ApprovedHistogram", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, businessID)
	if err != nil {
		return h, fmt.Errorf("query rating histogram: %w", err)
	}
	defer rows.Close()

	groups := 0
	for rows.Next() {
		var star, count int
		if err = rows.Scan(&star, &count); err != nil {
			return h, fmt.Errorf("scan rating histogram row: %w", err)
		}
		if star >= 1 && star <= domain.MaxStars {
			h[star-1] = count
		}
		groups++
	}

	if err = rows.Err(); err != nil {
		return h, fmt.Errorf("iterate rating histogram rows: %w", err)
	}
	database.RecordRows(ctx, groups)
	return h, nil
}

func (r *ReviewRepository) list(ctx context.Context, query string, args ...any) ([]domain.Review, int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		rv, err := scanReview(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, *rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

func reviewOrder(sort domain.ReviewSort) string {
	switch sort {
	case domain.ReviewSortOldest:
		return "created_at ASC, id"
	case domain.ReviewSortRating:
		return "rating DESC, created_at DESC, id"
	case domain.ReviewSortHelpful:
		return "helpful_votes DESC, created_at DESC, id"
	default:
		return "created_at DESC, id"
	}
}

func scanReview(row scanner, extra ...any) (*domain.Review, error) {
	var (
		rv          domain.Review
		respComment *string
		respBy      *string
		respAt      *time.Time
	)

	dest := []any{
		&rv.ID,
		&rv.UserID,
		&rv.BusinessID,
		&rv.Rating,
		&rv.Comment,
		&rv.Status,
		&rv.ModerationNotes,
		&rv.ModeratedBy,
		&rv.ModeratedAt,
		&rv.HelpfulVotes,
		&rv.TotalVotes,
		&rv.Reported,
		&rv.ReportReason,
		&rv.ReportDetails,
		&respComment,
		&respBy,
		&respAt,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	}

	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if respComment != nil && respAt != nil {
		rv.Response = &domain.BusinessResponse{Comment: *respComment, RespondedAt: *respAt}
		if respBy != nil {
			rv.Response.RespondedBy = *respBy
		}
	}

	return &rv, nil
}
