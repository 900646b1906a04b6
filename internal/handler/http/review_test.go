package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/service"
	apperrors "github.com/zezman/directory/pkg/errors"
	"github.com/zezman/directory/pkg/pagination"
)

func TestCreateReview_DuplicateIsConflict(t *testing.T) {
	svc := new(mockReviewService)
	router := newTestRouter(RouterDeps{Reviews: svc})

	svc.On("CreateReview", mock.Anything, testUser, &service.CreateReviewInput{
		BusinessID: testBusinessID, Rating: 4, Comment: "good",
	}).Return(nil, apperrors.Conflict("you have already reviewed this business"))

	rec := doRequest(t, router, http.MethodPost, "/api/v1/reviews", userToken, map[string]any{
		"business_id": testBusinessID, "rating": 4, "comment": "good",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(t, rec))
	svc.AssertExpectations(t)
}

func TestCreateReview_RatingOutOfRange(t *testing.T) {
	svc := new(mockReviewService)
	router := newTestRouter(RouterDeps{Reviews: svc})

	for _, rating := range []int{0, 6} {
		rec := doRequest(t, router, http.MethodPost, "/api/v1/reviews", userToken, map[string]any{
			"business_id": testBusinessID, "rating": rating,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}

	svc.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestListBusinessReviews(t *testing.T) {
	svc := new(mockReviewService)
	router := newTestRouter(RouterDeps{Reviews: svc})

	page := pagination.New(2, 5)
	result := pagination.NewResult([]domain.Review{{ID: testReviewID, Rating: 5}}, 6, page)
	svc.On("ListBusinessReviews", mock.Anything, testBusinessID, domain.ReviewSortHelpful, page).Return(&result, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/businesses/"+testBusinessID+"/reviews?sort=helpful&page=2&limit=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got pagination.Result[domain.Review]
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &got))
	assert.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Pagination.Pages)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/businesses/"+testBusinessID+"/reviews?sort=loudest", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", errorCode(t, rec))

	svc.AssertExpectations(t)
}

func TestVoteHelpful(t *testing.T) {
	svc := new(mockReviewService)
	router := newTestRouter(RouterDeps{Reviews: svc})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/reviews/"+testReviewID+"/helpful", userToken, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.On("VoteHelpful", mock.Anything, testUser, testReviewID, false).
		Return(domain.VoteTally{Helpful: 2, Total: 3}, nil)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/reviews/"+testReviewID+"/helpful", userToken, map[string]any{"helpful": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tally domain.VoteTally
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &tally))
	assert.Equal(t, domain.VoteTally{Helpful: 2, Total: 3}, tally)
	svc.AssertExpectations(t)
}

func TestReportReview_ReasonMustBeKnown(t *testing.T) {
	svc := new(mockReviewService)
	router := newTestRouter(RouterDeps{Reviews: svc})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/reviews/"+testReviewID+"/report", userToken, map[string]any{"reason": "boring"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.On("ReportReview", mock.Anything, testUser, testReviewID, "spam", "link farm").Return(nil)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/reviews/"+testReviewID+"/report", userToken,
		map[string]any{"reason": "spam", "details": "link farm"})
	assert.Less(t, rec.Code, 300)
	svc.AssertExpectations(t)
}

func TestRespondToReview_OwnerOnly(t *testing.T) {
	svc := new(mockReviewService)
	router := newTestRouter(RouterDeps{Reviews: svc})

	svc.On("RespondToReview", mock.Anything, testUser, testReviewID, "thanks").
		Return(nil, apperrors.Forbidden("only the business owner can respond"))

	rec := doRequest(t, router, http.MethodPost, "/api/v1/reviews/"+testReviewID+"/response", userToken, map[string]any{"comment": "thanks"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))
}

func TestAddFavorite_OptionalBody(t *testing.T) {
	svc := new(mockFavoriteService)
	router := newTestRouter(RouterDeps{Favorites: svc})

	svc.On("AddFavorite", mock.Anything, testUser.UserID, testBusinessID, "").
		Return(&domain.Favorite{UserID: testUser.UserID, BusinessID: testBusinessID}, nil).Once()
	svc.On("AddFavorite", mock.Anything, testUser.UserID, testBusinessID, "date night").
		Return(nil, apperrors.Conflict("business is already in favorites")).Once()

	rec := doRequest(t, router, http.MethodPost, "/api/v1/businesses/"+testBusinessID+"/favorites", userToken, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/businesses/"+testBusinessID+"/favorites", userToken, map[string]any{"notes": "date night"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	svc.AssertExpectations(t)
}

func TestCheckFavorite(t *testing.T) {
	svc := new(mockFavoriteService)
	router := newTestRouter(RouterDeps{Favorites: svc})

	svc.On("IsFavorite", mock.Anything, testUser.UserID, testBusinessID).Return(true, nil)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/businesses/"+testBusinessID+"/favorites/check", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got FavoriteCheckResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &got))
	assert.True(t, got.IsFavorite)
	assert.Equal(t, testBusinessID, got.BusinessID)
}
