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

var _ repository.ServiceRepository = (*ServiceRepository)(nil)

const serviceColumns = `id, name, name_en, description, description_en, slug, category_id, icon, sort_order, active,
		       business_count, created_at, updated_at`

// ServiceRepository implements repository.ServiceRepository using PostgreSQL.
type ServiceRepository struct {
	pool database.DBTX
}

// NewServiceRepository creates a new PostgreSQL-backed service repository.
func NewServiceRepository(pool database.DBTX) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

// Create inserts a new service into the database.
func (r *ServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	query := `
		INSERT INTO services (id, name, name_en, description, description_en, slug, category_id, icon, sort_order, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.Name,
		s.NameEn,
		s.Description,
		s.DescriptionEn,
		s.Slug,
		s.CategoryID,
		s.Icon,
		s.SortOrder,
		s.Active,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("service", "slug", s.Slug)
		}
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("category_id does not reference an existing category")
		}
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

// GetByID retrieves a service by its ID.
func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	s, err := scanService(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("service", id)
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return s, nil
}

// List returns active services, optionally restricted to one category.
func (r *ServiceRepository) List(ctx context.Context, categoryID *string) ([]domain.Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE active AND ($1::uuid IS NULL OR category_id = $1::uuid)
		ORDER BY sort_order, name`

	rows, err := r.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []domain.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service row: %w", err)
		}
		services = append(services, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate service rows: %w", err)
	}

	if services == nil {
		services = []domain.Service{}
	}
	return services, nil
}

// RefreshBusinessCount recounts active and approved businesses offering a service.
func (r *ServiceRepository) RefreshBusinessCount(ctx context.Context, id string) (n int, err error) {
	query := `
		UPDATE services s
		SET business_count = (
			SELECT count(*) FROM business_services bs
			JOIN businesses b ON b.id = bs.business_id
			WHERE bs.service_id = s.id AND b.active AND b.status = 'approved'
		), updated_at = NOW()
		WHERE s.id = $1
		RETURNING s.business_count`

	ctx, end := database.TraceQuery(ctx, "RefreshServiceBusinessCount", query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, id).Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NotFound("service", id)
		}
		return 0, fmt.Errorf("refresh service business count: %w", err)
	}
	return n, nil
}

func scanService(row scanner) (*domain.Service, error) {
	var s domain.Service
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.NameEn,
		&s.Description,
		&s.DescriptionEn,
		&s.Slug,
		&s.CategoryID,
		&s.Icon,
		&s.SortOrder,
		&s.Active,
		&s.BusinessCount,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
