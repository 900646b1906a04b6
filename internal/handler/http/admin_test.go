package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zezman/directory/internal/domain"
)

func TestAdminReviewStats(t *testing.T) {
	svc := new(mockAdminService)
	router := newTestRouter(RouterDeps{Admin: svc})

	svc.On("ReviewStats", mock.Anything).Return(&domain.ReviewStats{
		TotalReviews:  3,
		AverageRating: 4.3,
		HelpfulVotes:  7,
		Distribution:  domain.RatingDistribution{Four: 2, Five: 1},
	}, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/admin/reviews/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got domain.ReviewStats
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &got))
	assert.Equal(t, 3, got.TotalReviews)
	assert.Equal(t, 4.3, got.AverageRating)
	assert.Equal(t, 2, got.Distribution.Four)
	svc.AssertExpectations(t)
}

func TestAdminFavoriteStats(t *testing.T) {
	svc := new(mockAdminService)
	router := newTestRouter(RouterDeps{Admin: svc})

	svc.On("FavoriteStats", mock.Anything).
		Return(&domain.FavoriteStats{TotalFavorites: 12, UniqueUsers: 5, UniqueBusinesses: 4}, nil).Once()

	rec := doRequest(t, router, http.MethodGet, "/api/v1/admin/favorites/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"total_favorites":12,"unique_users":5,"unique_businesses":4}`, string(decodeEnvelope(t, rec).Data))

	svc.On("FavoriteStats", mock.Anything).Return(nil, errors.New("connection reset")).Once()

	rec = doRequest(t, router, http.MethodGet, "/api/v1/admin/favorites/stats", adminToken, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	svc.AssertExpectations(t)
}
