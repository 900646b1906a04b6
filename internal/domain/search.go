package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/zezman/directory/pkg/errors"
	"github.com/zezman/directory/pkg/pagination"
)

// Search defaults and limits.
const (
	DefaultMaxDistanceKm = 10.0
	MaxSearchDistanceKm  = 500.0
	MaxSearchTextLength  = 200
)

// SearchSort orders search results.
type SearchSort string

// Search sort keys.
const (
	SortRelevance SearchSort = "relevance"
	SortRating    SearchSort = "rating"
	SortDistance  SearchSort = "distance"
	SortName      SearchSort = "name"
	SortNewest    SearchSort = "newest"
)

// ValidSearchSorts returns every accepted sort key.
func ValidSearchSorts() []SearchSort {
	return []SearchSort{SortRelevance, SortRating, SortDistance, SortName, SortNewest}
}

// SearchQuery holds raw search parameters as supplied by a client. Optional
// numeric parameters are nil when absent.
type SearchQuery struct {
	Text          string
	CategoryID    string
	MinRating     *float64
	ServiceIDs    []string
	Lat           *float64
	Lng           *float64
	MaxDistanceKm *float64
	Sort          string
	Page          int
	PageSize      int
}

// GeoFilter restricts results to a radius around a point.
type GeoFilter struct {
	Lat           float64
	Lng           float64
	MaxDistanceKm float64
}

// SearchCriteria is a validated search with defaults applied.
type SearchCriteria struct {
	Text       string
	CategoryID string
	MinRating  float64
	ServiceIDs []string
	Geo        *GeoFilter
	Sort       SearchSort
	Page       pagination.Params
}

// Normalize validates q and returns the criteria the store executes.
// Invalid combinations fail with an INVALID_QUERY error.
func (q SearchQuery) Normalize() (*SearchCriteria, error) {
	c := &SearchCriteria{
		Text:       strings.TrimSpace(q.Text),
		CategoryID: strings.TrimSpace(q.CategoryID),
		Page:       pagination.New(q.Page, q.PageSize),
	}

	if q.Page > pagination.MaxPage {
		return nil, apperrors.InvalidQuery(fmt.Sprintf("page must be at most %d", pagination.MaxPage))
	}

	if len([]rune(c.Text)) > MaxSearchTextLength {
		return nil, apperrors.InvalidQuery(fmt.Sprintf("q must be at most %d characters", MaxSearchTextLength))
	}

	if c.CategoryID != "" {
		if _, err := uuid.Parse(c.CategoryID); err != nil {
			return nil, apperrors.InvalidQuery("category must be a valid id")
		}
	}

	for _, id := range q.ServiceIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return nil, apperrors.InvalidQuery("services must be a comma separated list of ids")
		}
		c.ServiceIDs = append(c.ServiceIDs, id)
	}

	if q.MinRating != nil {
		r := *q.MinRating
		if math.IsNaN(r) || r < 0 || r > MaxStars {
			return nil, apperrors.InvalidQuery("minRating must be between 0 and 5")
		}
		c.MinRating = r
	}

	geo, err := q.geo()
	if err != nil {
		return nil, err
	}
	c.Geo = geo

	switch sort := SearchSort(q.Sort); sort {
	case "":
		c.Sort = SortRelevance
	case SortRelevance, SortRating, SortName, SortNewest:
		c.Sort = sort
	case SortDistance:
		if c.Geo == nil {
			return nil, apperrors.InvalidQuery("sort=distance requires lat and lng")
		}
		c.Sort = sort
	default:
		return nil, apperrors.InvalidQuery(fmt.Sprintf("unknown sort %q", q.Sort))
	}

	return c, nil
}

func (q SearchQuery) geo() (*GeoFilter, error) {
	if q.Lat == nil && q.Lng == nil {
		if q.MaxDistanceKm != nil {
			return nil, apperrors.InvalidQuery("maxDistance requires lat and lng")
		}
		return nil, nil
	}
	if q.Lat == nil || q.Lng == nil {
		return nil, apperrors.InvalidQuery("lat and lng must be provided together")
	}

	lat, lng := *q.Lat, *q.Lng
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return nil, apperrors.InvalidQuery("lat must be between -90 and 90")
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return nil, apperrors.InvalidQuery("lng must be between -180 and 180")
	}

	dist := DefaultMaxDistanceKm
	if q.MaxDistanceKm != nil {
		dist = *q.MaxDistanceKm
		if math.IsNaN(dist) || dist <= 0 || dist > MaxSearchDistanceKm {
			return nil, apperrors.InvalidQuery(fmt.Sprintf("maxDistance must be greater than 0 and at most %g", MaxSearchDistanceKm))
		}
	}

	return &GeoFilter{Lat: lat, Lng: lng, MaxDistanceKm: dist}, nil
}

// SearchHit is a business in a search result. DistanceKm is set when the
// search had a reference point.
type SearchHit struct {
	Business
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// SearchResult is one page of search hits.
type SearchResult struct {
	Businesses []SearchHit     `json:"businesses"`
	Pagination pagination.Meta `json:"pagination"`
}
