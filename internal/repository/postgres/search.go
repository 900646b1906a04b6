package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/pkg/database"
)

// earthRadiusKm is the mean Earth radius used by the haversine distance.
const earthRadiusKm = 6371.0

// searchBuilder accumulates WHERE conditions and positional args.
type searchBuilder struct {
	conditions []string
	args       []any
}

func (sb *searchBuilder) arg(v any) string {
	sb.args = append(sb.args, v)
	return fmt.Sprintf("$%d", len(sb.args))
}

func (sb *searchBuilder) where(cond string) {
	sb.conditions = append(sb.conditions, cond)
}

// haversine returns the SQL great-circle distance in km from b to (lat, lng).
func haversine(lat, lng string) string {
	return fmt.Sprintf(
		"(%g * 2 * asin(sqrt(power(sin(radians(b.lat - %s) / 2), 2) + cos(radians(%s)) * cos(radians(b.lat)) * power(sin(radians(b.lng - %s) / 2), 2))))",
		earthRadiusKm, lat, lat, lng,
	)
}

// Search returns a page of visible businesses matching the criteria. Only
// the stored aggregate columns are read; nothing is recomputed here.
func (r *BusinessRepository) Search(ctx context.Context, c *domain.SearchCriteria) (hits []domain.SearchHit, total int, err error) {
	sb := &searchBuilder{}
	sb.where("b.active")
	sb.where("b.status = 'approved'")

	rank := "0::float8"
	if c.Text != "" {
		ts := "plainto_tsquery('simple', " + sb.arg(c.Text) + ")"
		sb.where("b.search_vector @@ " + ts)
		rank = "ts_rank(b.search_vector, " + ts + ")"
	}

	if c.CategoryID != "" {
		sb.where("b.category_id = " + sb.arg(c.CategoryID))
	}

	if c.MinRating > 0 {
		sb.where("b.rating >= " + sb.arg(c.MinRating))
	}

	if len(c.ServiceIDs) > 0 {
		sb.where("EXISTS (SELECT 1 FROM business_services bs WHERE bs.business_id = b.id AND bs.service_id = ANY(" +
			sb.arg(c.ServiceIDs) + "::uuid[]))")
	}

	distance := "NULL::float8"
	if c.Geo != nil {
		dist := haversine(sb.arg(c.Geo.Lat)+"::float8", sb.arg(c.Geo.Lng)+"::float8")
		sb.where(dist + " <= " + sb.arg(c.Geo.MaxDistanceKm))
		distance = "round(" + dist + "::numeric, 2)::float8"
	}

	where := strings.Join(sb.conditions, " AND ")
	filterArgs := append([]any(nil), sb.args...)

	query := fmt.Sprintf(`
		SELECT %s,
		       %s AS distance_km,
		       count(*) OVER() AS total_count
		FROM businesses b
		WHERE %s
		ORDER BY %s
		LIMIT %s OFFSET %s`,
		businessColumns,
		distance,
		where,
		orderBy(c, rank),
		sb.arg(c.Page.Limit), sb.arg(c.Page.Offset),
	)

	ctx, end := database.TraceQuery(ctx, "SearchBusinesses", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, sb.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search businesses: %w", err)
	}
	defer rows.Close()

	var businesses []domain.Business
	var distances []*float64

	for rows.Next() {
		var d *float64
		b, err := scanBusiness(rows, &d, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan search row: %w", err)
		}
		businesses = append(businesses, *b)
		distances = append(distances, d)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate search rows: %w", err)
	}

	// The window count is only carried on returned rows.
	if len(businesses) == 0 && c.Page.Offset > 0 {
		if total, err = r.countMatches(ctx, where, filterArgs); err != nil {
			return nil, 0, err
		}
	}

	if err = r.attachServices(ctx, businesses); err != nil {
		return nil, 0, err
	}

	hits = make([]domain.SearchHit, len(businesses))
	for i := range businesses {
		hits[i] = domain.SearchHit{Business: businesses[i], DistanceKm: distances[i]}
	}
	database.RecordRows(ctx, len(hits))

	return hits, total, nil
}

// countMatches counts the visible businesses matching a search WHERE clause.
func (r *BusinessRepository) countMatches(ctx context.Context, where string, args []any) (int, error) {
	query := "SELECT count(*) FROM businesses b WHERE " + where

	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count search matches: %w", err)
	}
	return n, nil
}

// orderBy maps a sort key to an ORDER BY clause. Relevance without a text
// query falls back to rating, then newest.
func orderBy(c *domain.SearchCriteria, rank string) string {
	switch c.Sort {
	case domain.SortRelevance:
		if c.Text != "" {
			return rank + " DESC, b.rating DESC, b.created_at DESC, b.id"
		}
		return "b.rating DESC, b.total_ratings DESC, b.created_at DESC, b.id"
	case domain.SortRating:
		return "b.rating DESC, b.total_ratings DESC, b.created_at DESC, b.id"
	case domain.SortDistance:
		return "distance_km ASC, b.id"
	case domain.SortName:
		return "b.name ASC, b.id"
	case domain.SortNewest:
		return "b.created_at DESC, b.id"
	default:
		return "b.created_at DESC, b.id"
	}
}
