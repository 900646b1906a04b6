package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zezman/directory/pkg/errors"
	"github.com/zezman/directory/pkg/pagination"
)

func f64(v float64) *float64 { return &v }

func TestNormalize_Defaults(t *testing.T) {
	c, err := SearchQuery{}.Normalize()

	require.NoError(t, err)
	assert.Equal(t, SortRelevance, c.Sort)
	assert.Nil(t, c.Geo)
	assert.Equal(t, 1, c.Page.Page)
	assert.Equal(t, 20, c.Page.Limit)
	assert.Equal(t, 0, c.Page.Offset)
}

func TestNormalize_PageSizeCapped(t *testing.T) {
	c, err := SearchQuery{Page: 3, PageSize: 500}.Normalize()

	require.NoError(t, err)
	assert.Equal(t, 100, c.Page.Limit)
	assert.Equal(t, 200, c.Page.Offset)
}

func TestNormalize_HugePageRejected(t *testing.T) {
	_, err := SearchQuery{Page: math.MaxInt64 / 10, PageSize: 100}.Normalize()
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)

	c, err := SearchQuery{Page: pagination.MaxPage, PageSize: 100}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, (pagination.MaxPage-1)*100, c.Page.Offset)
	assert.GreaterOrEqual(t, c.Page.Offset, 0)
}

func TestNormalize_DistanceSortWithoutGeo(t *testing.T) {
	_, err := SearchQuery{Sort: "distance"}.Normalize()

	assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)
}

func TestNormalize_DistanceSortWithGeo(t *testing.T) {
	c, err := SearchQuery{Sort: "distance", Lat: f64(32.08), Lng: f64(34.78)}.Normalize()

	require.NoError(t, err)
	assert.Equal(t, SortDistance, c.Sort)
	require.NotNil(t, c.Geo)
	assert.Equal(t, DefaultMaxDistanceKm, c.Geo.MaxDistanceKm)
}

func TestNormalize_InvalidQueries(t *testing.T) {
	tests := []struct {
		name string
		q    SearchQuery
	}{
		{"unknown sort", SearchQuery{Sort: "popular"}},
		{"lat without lng", SearchQuery{Lat: f64(32)}},
		{"lng without lat", SearchQuery{Lng: f64(34)}},
		{"distance without point", SearchQuery{MaxDistanceKm: f64(5)}},
		{"lat out of range", SearchQuery{Lat: f64(91), Lng: f64(34)}},
		{"lng out of range", SearchQuery{Lat: f64(32), Lng: f64(-181)}},
		{"zero distance", SearchQuery{Lat: f64(32), Lng: f64(34), MaxDistanceKm: f64(0)}},
		{"min rating too high", SearchQuery{MinRating: f64(5.5)}},
		{"min rating negative", SearchQuery{MinRating: f64(-1)}},
		{"category not an id", SearchQuery{CategoryID: "restaurants"}},
		{"service not an id", SearchQuery{ServiceIDs: []string{"wifi"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.q.Normalize()
			assert.Nil(t, c)
			assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)
		})
	}
}

func TestNormalize_Filters(t *testing.T) {
	q := SearchQuery{
		Text:          "  pizza  ",
		CategoryID:    "9a4c3a1e-5a0b-4c55-8d0e-3c1f6a1b2c3d",
		MinRating:     f64(4),
		ServiceIDs:    []string{"0f8b1a52-7d3e-4c0e-9a51-2b6f1f0e7a11", ""},
		Lat:           f64(31.77),
		Lng:           f64(35.21),
		MaxDistanceKm: f64(25),
		Sort:          "rating",
	}

	c, err := q.Normalize()

	require.NoError(t, err)
	assert.Equal(t, "pizza", c.Text)
	assert.Equal(t, 4.0, c.MinRating)
	assert.Equal(t, []string{"0f8b1a52-7d3e-4c0e-9a51-2b6f1f0e7a11"}, c.ServiceIDs)
	assert.Equal(t, &GeoFilter{Lat: 31.77, Lng: 35.21, MaxDistanceKm: 25}, c.Geo)
	assert.Equal(t, SortRating, c.Sort)
}
