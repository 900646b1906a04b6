package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/repository"
	"github.com/zezman/directory/pkg/database"
	apperrors "github.com/zezman/directory/pkg/errors"
	"github.com/zezman/directory/pkg/pagination"
)

var _ repository.BusinessRepository = (*BusinessRepository)(nil)

const businessColumns = `b.id, b.owner_id, b.name, b.description, b.address, b.city, b.country, b.postal_code,
		       b.prefix, b.phone, b.email, b.website, b.logo, b.lat, b.lng, b.category_id, b.tags,
		       b.opening_hours, b.active, b.status, b.featured, b.verified,
		       b.rating, b.total_ratings, b.rating_1, b.rating_2, b.rating_3, b.rating_4, b.rating_5,
		       b.view_count, b.favorite_count, b.review_count, b.approved_at, b.approved_by,
		       b.created_at, b.updated_at`

// BusinessRepository implements repository.BusinessRepository using PostgreSQL.
type BusinessRepository struct {
	pool database.DBTX
}

// NewBusinessRepository creates a new PostgreSQL-backed business repository.
func NewBusinessRepository(pool database.DBTX) *BusinessRepository {
	return &BusinessRepository{pool: pool}
}

// Create inserts a business and its service links in one transaction.
func (r *BusinessRepository) Create(ctx context.Context, b *domain.Business) error {
	hoursJSON, err := json.Marshal(b.OpeningHours)
	if err != nil {
		return fmt.Errorf("marshal opening hours: %w", err)
	}

	query := `
		INSERT INTO businesses (id, owner_id, name, description, address, city, country, postal_code,
		                        prefix, phone, email, website, logo, lat, lng, category_id, tags,
		                        opening_hours, active, status, featured, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`

	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			b.ID,
			b.OwnerID,
			b.Name,
			b.Description,
			b.Address,
			b.City,
			b.Country,
			b.PostalCode,
			b.Prefix,
			b.Phone,
			b.Email,
			b.Website,
			b.Logo,
			b.Location.Lat,
			b.Location.Lng,
			b.CategoryID,
			b.Tags,
			hoursJSON,
			b.Active,
			b.Status,
			b.Featured,
			b.Verified,
			b.CreatedAt,
			b.UpdatedAt,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return apperrors.InvalidInput("category_id does not reference an existing category")
			}
			return fmt.Errorf("insert business: %w", err)
		}

		return insertServices(ctx, tx, b.ID, b.Services)
	})
}

// GetByID retrieves a business by its ID.
func (r *BusinessRepository) GetByID(ctx context.Context, id string) (*domain.Business, error) {
	query := `
		SELECT ` + businessColumns + `
		FROM businesses b
		WHERE b.id = $1`

	b, err := scanBusiness(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("business", id)
		}
		return nil, fmt.Errorf("get business: %w", err)
	}

	services, err := r.loadServices(ctx, []string{b.ID})
	if err != nil {
		return nil, err
	}
	b.Services = services[b.ID]
	if b.Services == nil {
		b.Services = []domain.BusinessService{}
	}

	return b, nil
}

// Update stores the owner-editable fields and replaces the service links.
func (r *BusinessRepository) Update(ctx context.Context, b *domain.Business) error {
	hoursJSON, err := json.Marshal(b.OpeningHours)
	if err != nil {
		return fmt.Errorf("marshal opening hours: %w", err)
	}

	b.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE businesses
		SET name = $1, description = $2, address = $3, city = $4, country = $5, postal_code = $6,
		    prefix = $7, phone = $8, email = $9, website = $10, logo = $11, lat = $12, lng = $13,
		    category_id = $14, tags = $15, opening_hours = $16, featured = $17, verified = $18,
		    status = $19, updated_at = $20
		WHERE id = $21 AND active`

	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, query,
			b.Name,
			b.Description,
			b.Address,
			b.City,
			b.Country,
			b.PostalCode,
			b.Prefix,
			b.Phone,
			b.Email,
			b.Website,
			b.Logo,
			b.Location.Lat,
			b.Location.Lng,
			b.CategoryID,
			b.Tags,
			hoursJSON,
			b.Featured,
			b.Verified,
			b.Status,
			b.UpdatedAt,
			b.ID,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return apperrors.InvalidInput("category_id does not reference an existing category")
			}
			return fmt.Errorf("update business: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return apperrors.NotFound("business", b.ID)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM business_services WHERE business_id = $1`, b.ID); err != nil {
			return fmt.Errorf("clear business services: %w", err)
		}
		return insertServices(ctx, tx, b.ID, b.Services)
	})
}

// SoftDelete marks a business inactive.
func (r *BusinessRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE businesses SET active = FALSE, updated_at = NOW() WHERE id = $1 AND active`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete business: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("business", id)
	}
	return nil
}

// IncrementViewCount bumps the view counter of a business.
func (r *BusinessRepository) IncrementViewCount(ctx context.Context, id string) error {
	query := `UPDATE businesses SET view_count = view_count + 1 WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// CountByOwner returns the number of active businesses owned by a user.
func (r *BusinessRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM businesses WHERE owner_id = $1 AND active`, ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count businesses by owner: %w", err)
	}
	return n, nil
}

// ListByOwner returns a page of a user's active businesses, newest first.
func (r *BusinessRepository) ListByOwner(ctx context.Context, ownerID string, page pagination.Params) ([]domain.Business, int, error) {
	query := `
		SELECT ` + businessColumns + `,
		       count(*) OVER() AS total_count
		FROM businesses b
		WHERE b.owner_id = $1 AND b.active
		ORDER BY b.created_at DESC, b.id
		LIMIT $2 OFFSET $3`

	return r.list(ctx, query, ownerID, page.Limit, page.Offset)
}

// ListByStatus returns a page of active businesses in a moderation state,
// oldest first so the moderation queue is worked in arrival order.
func (r *BusinessRepository) ListByStatus(ctx context.Context, status domain.ModerationStatus, page pagination.Params) ([]domain.Business, int, error) {
	query := `
		SELECT ` + businessColumns + `,
		       count(*) OVER() AS total_count
		FROM businesses b
		WHERE b.status = $1 AND b.active
		ORDER BY b.created_at ASC, b.id
		LIMIT $2 OFFSET $3`

	return r.list(ctx, query, status, page.Limit, page.Offset)
}

// ListFeatured returns visible featured businesses, best rated first.
func (r *BusinessRepository) ListFeatured(ctx context.Context, limit int) ([]domain.Business, error) {
	query := `
		SELECT ` + businessColumns + `,
		       count(*) OVER() AS total_count
		FROM businesses b
		WHERE b.featured AND b.active AND b.status = 'approved'
		ORDER BY b.rating DESC, b.total_ratings DESC, b.id
		LIMIT $1 OFFSET $2`

	items, _, err := r.list(ctx, query, limit, 0)
	return items, err
}

// ListPopular returns visible businesses ordered by favorite_count, ties
// broken by rating.
func (r *BusinessRepository) ListPopular(ctx context.Context, limit int) ([]domain.Business, error) {
	query := `
		SELECT ` + businessColumns + `,
		       count(*) OVER() AS total_count
		FROM businesses b
		WHERE b.active AND b.status = 'approved'
		ORDER BY b.favorite_count DESC, b.rating DESC, b.id
		LIMIT $1 OFFSET $2`

	items, _, err := r.list(ctx, query, limit, 0)
	return items, err
}

// SetStatus stores a moderation decision. approved_at and approved_by are
// set on approval and cleared otherwise.
func (r *BusinessRepository) SetStatus(ctx context.Context, id string, status domain.ModerationStatus, actorID string, at time.Time) error {
	var (
		approvedAt *time.Time
		approvedBy *string
	)
	if status == domain.StatusApproved {
		approvedAt = &at
		approvedBy = &actorID
	}

	query := `
		UPDATE businesses
		SET status = $1, approved_at = $2, approved_by = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.pool.Exec(ctx, query, status, approvedAt, approvedBy, at, id)
	if err != nil {
		return fmt.Errorf("set business status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("business", id)
	}
	return nil
}

// UpdateRating writes the rating aggregate of a business in one statement.
func (r *BusinessRepository) UpdateRating(ctx context.Context, id string, s domain.RatingSummary) (err error) {
	query := `
		UPDATE businesses
		SET rating = $1, total_ratings = $2,
		    rating_1 = $3, rating_2 = $4, rating_3 = $5, rating_4 = $6, rating_5 = $7
		WHERE id = $8`

	ctx, end := database.TraceQuery(ctx, "UpdateRating", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query,
		s.Rating,
		s.TotalRatings,
		s.Distribution.One,
		s.Distribution.Two,
		s.Distribution.Three,
		s.Distribution.Four,
		s.Distribution.Five,
		id,
	)
	if err != nil {
		return fmt.Errorf("update business rating: %w", err)
	}
	database.RecordRows(ctx, int(ct.RowsAffected()))
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("business", id)
	}
	return nil
}

// RefreshFavoriteCount recounts favorites of a business and stores the result.
func (r *BusinessRepository) RefreshFavoriteCount(ctx context.Context, id string) (int, error) {
	query := `
		UPDATE businesses b
		SET favorite_count = (SELECT count(*) FROM favorites f WHERE f.business_id = b.id)
		WHERE b.id = $1
		RETURNING b.favorite_count`

	return r.refresh(ctx, "RefreshFavoriteCount", query, id)
}

// RefreshReviewCount recounts approved reviews of a business and stores the result.
func (r *BusinessRepository) RefreshReviewCount(ctx context.Context, id string) (int, error) {
	query := `
		UPDATE businesses b
		SET review_count = (SELECT count(*) FROM reviews rv WHERE rv.business_id = b.id AND rv.status = 'approved')
		WHERE b.id = $1
		RETURNING b.review_count`

	return r.refresh(ctx, "RefreshReviewCount", query, id)
}

func (r *BusinessRepository) refresh(ctx context.Context, operation, query, id string) (n int, err error) {
	ctx, end := database.TraceQuery(ctx, operation, query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, id).Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NotFound("business", id)
		}
		return 0, fmt.Errorf("%s: %w", strings.ToLower(operation), err)
	}
	return n, nil
}

// list runs a query selecting businessColumns plus total_count.
func (r *BusinessRepository) list(ctx context.Context, query string, args ...any) ([]domain.Business, int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	var (
		businesses []domain.Business
		totalCount int
	)

	for rows.Next() {
		b, err := scanBusiness(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("scan business row: %w", err)
		}
		businesses = append(businesses, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate business rows: %w", err)
	}

	if err := r.attachServices(ctx, businesses); err != nil {
		return nil, 0, err
	}

	if businesses == nil {
		businesses = []domain.Business{}
	}

	return businesses, totalCount, nil
}

// attachServices loads the service links of every business in one query.
func (r *BusinessRepository) attachServices(ctx context.Context, businesses []domain.Business) error {
	if len(businesses) == 0 {
		return nil
	}

	ids := make([]string, len(businesses))
	for i := range businesses {
		ids[i] = businesses[i].ID
	}

	services, err := r.loadServices(ctx, ids)
	if err != nil {
		return err
	}

	for i := range businesses {
		businesses[i].Services = services[businesses[i].ID]
		if businesses[i].Services == nil {
			businesses[i].Services = []domain.BusinessService{}
		}
	}
	return nil
}

func (r *BusinessRepository) loadServices(ctx context.Context, businessIDs []string) (map[string][]domain.BusinessService, error) {
	query := `
		SELECT business_id, service_id, price, currency
		FROM business_services
		WHERE business_id = ANY($1::uuid[])
		ORDER BY business_id, service_id`

	rows, err := r.pool.Query(ctx, query, businessIDs)
	if err != nil {
		return nil, fmt.Errorf("load business services: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.BusinessService, len(businessIDs))
	for rows.Next() {
		var (
			businessID string
			s          domain.BusinessService
		)
		if err := rows.Scan(&businessID, &s.ServiceID, &s.Price, &s.Currency); err != nil {
			return nil, fmt.Errorf("scan business service row: %w", err)
		}
		out[businessID] = append(out[businessID], s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate business service rows: %w", err)
	}
	return out, nil
}

func insertServices(ctx context.Context, tx pgx.Tx, businessID string, services []domain.BusinessService) error {
	for _, s := range services {
		currency := s.Currency
		if currency == "" {
			currency = domain.DefaultCurrency
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO business_services (business_id, service_id, price, currency) VALUES ($1, $2, $3, $4)`,
			businessID, s.ServiceID, s.Price, currency,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return apperrors.InvalidInput("service " + s.ServiceID + " does not exist")
			}
			if isUniqueViolation(err) {
				return apperrors.InvalidInput("service " + s.ServiceID + " is listed twice")
			}
			return fmt.Errorf("insert business service: %w", err)
		}
	}
	return nil
}

// scanBusiness scans businessColumns followed by any extra destinations.
func scanBusiness(row scanner, extra ...any) (*domain.Business, error) {
	var (
		b         domain.Business
		hoursJSON []byte
	)

	dest := []any{
		&b.ID,
		&b.OwnerID,
		&b.Name,
		&b.Description,
		&b.Address,
		&b.City,
		&b.Country,
		&b.PostalCode,
		&b.Prefix,
		&b.Phone,
		&b.Email,
		&b.Website,
		&b.Logo,
		&b.Location.Lat,
		&b.Location.Lng,
		&b.CategoryID,
		&b.Tags,
		&hoursJSON,
		&b.Active,
		&b.Status,
		&b.Featured,
		&b.Verified,
		&b.Rating,
		&b.TotalRatings,
		&b.Distribution.One,
		&b.Distribution.Two,
		&b.Distribution.Three,
		&b.Distribution.Four,
		&b.Distribution.Five,
		&b.ViewCount,
		&b.FavoriteCount,
		&b.ReviewCount,
		&b.ApprovedAt,
		&b.ApprovedBy,
		&b.CreatedAt,
		&b.UpdatedAt,
	}

	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	if len(hoursJSON) > 0 {
		if err := json.Unmarshal(hoursJSON, &b.OpeningHours); err != nil {
			return nil, fmt.Errorf("unmarshal opening hours: %w", err)
		}
	}
	if b.OpeningHours == nil {
		b.OpeningHours = []domain.OpeningHours{}
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}

	return &b, nil
}
