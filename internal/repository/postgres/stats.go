package postgres

import (
	"context"
	"fmt"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/repository"
	"github.com/zezman/directory/pkg/database"
)

var _ repository.StatsRepository = (*StatsRepository)(nil)

// StatsRepository reads admin dashboard counters using PostgreSQL.
type StatsRepository struct {
	pool database.DBTX
}

// NewStatsRepository creates a new PostgreSQL-backed stats repository.
func NewStatsRepository(pool database.DBTX) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Dashboard returns all dashboard counters in a single round trip.
func (r *StatsRepository) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	query := `
		SELECT
			(SELECT count(*) FROM businesses),
			(SELECT count(*) FROM businesses WHERE active),
			(SELECT count(*) FROM businesses WHERE active AND status = 'pending'),
			(SELECT count(*) FROM businesses WHERE active AND status = 'approved'),
			(SELECT count(*) FROM businesses WHERE active AND status = 'rejected'),
			(SELECT count(*) FROM reviews),
			(SELECT count(*) FROM reviews WHERE status = 'pending'),
			(SELECT count(*) FROM reviews WHERE reported),
			(SELECT count(*) FROM favorites),
			(SELECT count(*) FROM categories WHERE active),
			(SELECT count(*) FROM services WHERE active)`

	var s domain.DashboardStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.TotalBusinesses,
		&s.ActiveBusinesses,
		&s.PendingBusinesses,
		&s.ApprovedBusinesses,
		&s.RejectedBusinesses,
		&s.TotalReviews,
		&s.PendingReviews,
		&s.ReportedReviews,
		&s.TotalFavorites,
		&s.TotalCategories,
		&s.TotalServices,
	)
	if err != nil {
		return nil, fmt.Errorf("query dashboard stats: %w", err)
	}
	return &s, nil
}

// ReviewHistogram counts approved reviews per star over the whole directory.
func (r *StatsRepository) ReviewHistogram(ctx context.Context) (h domain.Histogram, helpful int, err error) {
	query := `
		SELECT
			count(*) FILTER (WHERE rating = 1),
			count(*) FILTER (WHERE rating = 2),
			count(*) FILTER (WHERE rating = 3),
			count(*) FILTER (WHERE rating = 4),
			count(*) FILTER (WHERE rating = 5),
			COALESCE(sum(helpful_votes), 0)
		FROM reviews
		WHERE status = 'approved'`

	ctx, end := database.TraceQuery(ctx, "ReviewHistogram", query)
	defer func() { end(err) }()

	err = r.pool.QueryRow(ctx, query).Scan(&h[0], &h[1], &h[2], &h[3], &h[4], &helpful)
	if err != nil {
		return h, 0, fmt.Errorf("query review stats: %w", err)
	}
	return h, helpful, nil
}

// FavoriteStats counts favorites and the distinct users and businesses they link.
func (r *StatsRepository) FavoriteStats(ctx context.Context) (*domain.FavoriteStats, error) {
	query := `
		SELECT count(*), count(DISTINCT user_id), count(DISTINCT business_id)
		FROM favorites`

	var s domain.FavoriteStats
	if err := r.pool.QueryRow(ctx, query).Scan(&s.TotalFavorites, &s.UniqueUsers, &s.UniqueBusinesses); err != nil {
		return nil, fmt.Errorf("query favorite stats: %w", err)
	}
	return &s, nil
}
