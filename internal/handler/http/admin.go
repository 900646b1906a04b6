package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zezman/directory/pkg/httputil"
	"github.com/zezman/directory/pkg/pagination"
)

// AdminHandler handles moderation and maintenance endpoints. Every route is
// mounted behind the admin role check.
type AdminHandler struct {
	moderation ModerationService
	admin      AdminService
	logger     *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(moderation ModerationService, admin AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		moderation: moderation,
		admin:      admin,
		logger:     logger,
	}
}

// ModerateReviewRequest is the JSON request body for moderating a review.
type ModerateReviewRequest struct {
	Approved *bool  `json:"approved" validate:"required"`
	Notes    string `json:"notes" validate:"max=500"`
}

// ApproveBusiness handles PATCH /api/v1/businesses/{id}/approve
func (h *AdminHandler) ApproveBusiness(w http.ResponseWriter, r *http.Request) {
	h.setBusinessApproval(w, r, true)
}

// RejectBusiness handles PATCH /api/v1/businesses/{id}/reject
func (h *AdminHandler) RejectBusiness(w http.ResponseWriter, r *http.Request) {
	h.setBusinessApproval(w, r, false)
}

func (h *AdminHandler) setBusinessApproval(w http.ResponseWriter, r *http.Request, approve bool) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	b, err := h.moderation.SetBusinessApproval(r.Context(), id, approve, actor.UserID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, b)
}

// ModerateReview handles PATCH /api/v1/reviews/{id}/moderate
func (h *AdminHandler) ModerateReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req ModerateReviewRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	rv, err := h.moderation.SetReviewApproval(r.Context(), id, *req.Approved, actor.UserID, req.Notes)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, rv)
}

// Dashboard handles GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Dashboard(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, stats)
}

// ReviewStats handles GET /api/v1/admin/reviews/stats
func (h *AdminHandler) ReviewStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.ReviewStats(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, stats)
}

// FavoriteStats handles GET /api/v1/admin/favorites/stats
func (h *AdminHandler) FavoriteStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.FavoriteStats(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, stats)
}

// PendingBusinesses handles GET /api/v1/admin/businesses/pending
func (h *AdminHandler) PendingBusinesses(w http.ResponseWriter, r *http.Request) {
	result, err := h.admin.PendingBusinesses(r.Context(), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, result)
}

// PendingReviews handles GET /api/v1/admin/reviews/pending
func (h *AdminHandler) PendingReviews(w http.ResponseWriter, r *http.Request) {
	result, err := h.admin.PendingReviews(r.Context(), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, result)
}

// RecountBusiness handles POST /api/v1/admin/businesses/{id}/recount
func (h *AdminHandler) RecountBusiness(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	b, err := h.admin.RecountBusiness(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, b)
}

// RecountCategory handles POST /api/v1/admin/categories/{id}/recount
func (h *AdminHandler) RecountCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	c, err := h.admin.RecountCategory(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, c)
}

// RecountService handles POST /api/v1/admin/services/{id}/recount
func (h *AdminHandler) RecountService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	svc, err := h.admin.RecountService(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, svc)
}
