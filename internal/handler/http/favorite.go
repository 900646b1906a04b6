package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zezman/directory/pkg/httputil"
	"github.com/zezman/directory/pkg/pagination"
)

// FavoriteHandler handles HTTP requests for favorite endpoints.
type FavoriteHandler struct {
	service FavoriteService
	logger  *slog.Logger
}

// NewFavoriteHandler creates a new favorite HTTP handler.
func NewFavoriteHandler(svc FavoriteService, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		service: svc,
		logger:  logger,
	}
}

// FavoriteRequest is the optional JSON body for adding or annotating a favorite.
type FavoriteRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

// FavoriteCheckResponse reports whether a business is in the caller's favorites.
type FavoriteCheckResponse struct {
	BusinessID string `json:"business_id"`
	IsFavorite bool   `json:"is_favorite"`
}

// AddFavorite handles POST /api/v1/businesses/{id}/favorites
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	businessID, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req FavoriteRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	fav, err := h.service.AddFavorite(r.Context(), actor.UserID, businessID, req.Notes)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, fav)
}

// RemoveFavorite handles DELETE /api/v1/businesses/{id}/favorites
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	businessID, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.RemoveFavorite(r.Context(), actor.UserID, businessID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]string{"business_id": businessID, "status": "removed"})
}

// UpdateNotes handles PUT /api/v1/businesses/{id}/favorites
func (h *FavoriteHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	businessID, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req FavoriteRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	fav, err := h.service.UpdateNotes(r.Context(), actor.UserID, businessID, req.Notes)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, fav)
}

// CheckFavorite handles GET /api/v1/businesses/{id}/favorites/check
func (h *FavoriteHandler) CheckFavorite(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	businessID, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	isFav, err := h.service.IsFavorite(r.Context(), actor.UserID, businessID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, FavoriteCheckResponse{BusinessID: businessID, IsFavorite: isFav})
}

// ListMyFavorites handles GET /api/v1/users/me/favorites
func (h *FavoriteHandler) ListMyFavorites(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}

	result, err := h.service.ListMyFavorites(r.Context(), actor.UserID, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, result)
}

// decodeOptional decodes and validates dst when the request has a body. A
// request without a body leaves dst at its zero value.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return true
	}
	return httputil.DecodeAndValidate(w, r, dst)
}
