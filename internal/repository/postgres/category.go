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
)

var _ repository.CategoryRepository = (*CategoryRepository)(nil)

const categoryColumns = `id, name, name_en, description, description_en, slug, icon, color, sort_order, active,
		       business_count, created_at, updated_at`

// CategoryRepository implements repository.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	pool database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool database.DBTX) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a new category into the database.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, name_en, description, description_en, slug, icon, color, sort_order, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Name,
		c.NameEn,
		c.Description,
		c.DescriptionEn,
		c.Slug,
		c.Icon,
		c.Color,
		c.SortOrder,
		c.Active,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "slug", c.Slug)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID retrieves a category by its ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	c, err := scanCategory(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("category", id)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// List returns all active categories ordered by sort order, then name.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE active
		ORDER BY sort_order, name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

// RefreshBusinessCount recounts active and approved businesses in a category.
func (r *CategoryRepository) RefreshBusinessCount(ctx context.Context, id string) (n int, err error) {
	query := `
		UPDATE categories c
		SET business_count = (
			SELECT count(*) FROM businesses b
			WHERE b.category_id = c.id AND b.active AND b.status = 'approved'
		), updated_at = NOW()
		WHERE c.id = $1
		RETURNING c.business_count`

	ctx, end := database.TraceQuery(ctx, "RefreshCategoryBusinessCount", query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, id).Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NotFound("category", id)
		}
		return 0, fmt.Errorf("refresh category business count: %w", err)
	}
	return n, nil
}

func scanCategory(row scanner) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.NameEn,
		&c.Description,
		&c.DescriptionEn,
		&c.Slug,
		&c.Icon,
		&c.Color,
		&c.SortOrder,
		&c.Active,
		&c.BusinessCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
