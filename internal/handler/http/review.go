package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/service"
	"github.com/zezman/directory/pkg/httputil"
	"github.com/zezman/directory/pkg/pagination"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateReviewRequest is the JSON request body for creating a review.
type CreateReviewRequest struct {
	BusinessID string `json:"business_id" validate:"required,uuid"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"max=1000"`
}

// UpdateReviewRequest is the JSON request body for editing a review.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}

// VoteRequest is the JSON request body for a helpful vote.
type VoteRequest struct {
	Helpful *bool `json:"helpful" validate:"required"`
}

// ReportRequest is the JSON request body for reporting a review.
type ReportRequest struct {
	Reason  string `json:"reason" validate:"required,oneof=inappropriate spam fake offensive other"`
	Details string `json:"details" validate:"max=500"`
}

// RespondRequest is the JSON request body for an owner response.
type RespondRequest struct {
	Comment string `json:"comment" validate:"required,min=1,max=1000"`
}

// --- Handlers ---

// CreateReview handles POST /api/v1/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	rv, err := h.service.CreateReview(r.Context(), actor, &service.CreateReviewInput{
		BusinessID: req.BusinessID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, rv)
}

// GetReview handles GET /api/v1/reviews/{id}
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	rv, err := h.service.GetReview(r.Context(), actorFrom(r), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, rv)
}

// UpdateReview handles PUT /api/v1/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	rv, err := h.service.UpdateReview(r.Context(), actor, id, &service.UpdateReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, rv)
}

// DeleteReview handles DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteReview(r.Context(), actor, id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// ListBusinessReviews handles GET /api/v1/businesses/{id}/reviews
func (h *ReviewHandler) ListBusinessReviews(w http.ResponseWriter, r *http.Request) {
	businessID, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	sort, ok := domain.ParseReviewSort(r.URL.Query().Get("sort"))
	if !ok {
		writeInvalidParam(w, r, "sort must be one of: newest, oldest, rating, helpful")
		return
	}

	result, err := h.service.ListBusinessReviews(r.Context(), businessID, sort, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, result)
}

// ListMyReviews handles GET /api/v1/users/me/reviews
func (h *ReviewHandler) ListMyReviews(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}

	result, err := h.service.ListMyReviews(r.Context(), actor.UserID, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, result)
}

// VoteHelpful handles POST /api/v1/reviews/{id}/helpful
func (h *ReviewHandler) VoteHelpful(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req VoteRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	tally, err := h.service.VoteHelpful(r.Context(), actor, id, *req.Helpful)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, tally)
}

// ReportReview handles POST /api/v1/reviews/{id}/report
func (h *ReviewHandler) ReportReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req ReportRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.ReportReview(r.Context(), actor, id, req.Reason, req.Details); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]string{"id": id, "status": "reported"})
}

// RespondToReview handles POST /api/v1/reviews/{id}/response
func (h *ReviewHandler) RespondToReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req RespondRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	rv, err := h.service.RespondToReview(r.Context(), actor, id, req.Comment)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, rv)
}
