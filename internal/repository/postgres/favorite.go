package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/repository"
	"github.com/zezman/directory/pkg/database"
	apperrors "github.com/zezman/directory/pkg/errors"
	"github.com/zezman/directory/pkg/pagination"
)

var _ repository.FavoriteRepository = (*FavoriteRepository)(nil)

// FavoriteRepository implements favorite persistence using PostgreSQL.
type FavoriteRepository struct {
	pool database.DBTX
}

// NewFavoriteRepository creates a new PostgreSQL-backed favorite repository.
func NewFavoriteRepository(pool database.DBTX) *FavoriteRepository {
	return &FavoriteRepository{pool: pool}
}

// Create inserts a favorite.
func (r *FavoriteRepository) Create(ctx context.Context, f *domain.Favorite) error {
	query := `
		INSERT INTO favorites (user_id, business_id, notes, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, f.UserID, f.BusinessID, f.Notes, f.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("business is already in favorites")
		}
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("business", f.BusinessID)
		}
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

// Get retrieves a user's favorite of a business.
func (r *FavoriteRepository) Get(ctx context.Context, userID, businessID string) (*domain.Favorite, error) {
	query := `
		SELECT user_id, business_id, notes, created_at
		FROM favorites
		WHERE user_id = $1 AND business_id = $2`

	var f domain.Favorite
	err := r.pool.QueryRow(ctx, query, userID, businessID).Scan(&f.UserID, &f.BusinessID, &f.Notes, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("favorite", businessID)
		}
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	return &f, nil
}

// UpdateNotes replaces the notes on a favorite.
func (r *FavoriteRepository) UpdateNotes(ctx context.Context, userID, businessID, notes string) error {
	query := `UPDATE favorites SET notes = $1 WHERE user_id = $2 AND business_id = $3`

	ct, err := r.pool.Exec(ctx, query, notes, userID, businessID)
	if err != nil {
		return fmt.Errorf("update favorite notes: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("favorite", businessID)
	}
	return nil
}

// Delete removes a favorite.
func (r *FavoriteRepository) Delete(ctx context.Context, userID, businessID string) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND business_id = $2`

	ct, err := r.pool.Exec(ctx, query, userID, businessID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("favorite", businessID)
	}
	return nil
}

// ListByUser returns a page of a user's favorites, newest first.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string, page pagination.Params) ([]domain.Favorite, int, error) {
	query := `
		SELECT user_id, business_id, notes, created_at,
		       count(*) OVER() AS total_count
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC, business_id
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var (
		favorites  []domain.Favorite
		totalCount int
	)

	for rows.Next() {
		var f domain.Favorite
		if err := rows.Scan(&f.UserID, &f.BusinessID, &f.Notes, &f.CreatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("scan favorite row: %w", err)
		}
		favorites = append(favorites, f)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate favorite rows: %w", err)
	}

	if favorites == nil {
		favorites = []domain.Favorite{}
	}

	return favorites, totalCount, nil
}
