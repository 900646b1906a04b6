package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/service"
	"github.com/zezman/directory/pkg/httputil"
)

// CatalogHandler handles HTTP requests for category and service endpoints.
type CatalogHandler struct {
	service CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateCategoryRequest is the JSON request body for creating a category.
type CreateCategoryRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=100"`
	NameEn        string `json:"name_en" validate:"max=100"`
	Description   string `json:"description" validate:"max=500"`
	DescriptionEn string `json:"description_en" validate:"max=500"`
	Icon          string `json:"icon" validate:"max=100"`
	Color         string `json:"color" validate:"omitempty,hexcolor"`
	SortOrder     int    `json:"sort_order" validate:"gte=0"`
}

// CreateServiceRequest is the JSON request body for creating a service.
type CreateServiceRequest struct {
	Name          string  `json:"name" validate:"required,min=1,max=100"`
	NameEn        string  `json:"name_en" validate:"max=100"`
	Description   string  `json:"description" validate:"max=500"`
	DescriptionEn string  `json:"description_en" validate:"max=500"`
	CategoryID    *string `json:"category_id" validate:"omitempty,uuid"`
	Icon          string  `json:"icon" validate:"max=100"`
	SortOrder     int     `json:"sort_order" validate:"gte=0"`
}

// CreateCategory handles POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	c, err := h.service.CreateCategory(r.Context(), &service.CreateCategoryInput{
		Name:          req.Name,
		NameEn:        req.NameEn,
		Description:   req.Description,
		DescriptionEn: req.DescriptionEn,
		Icon:          req.Icon,
		Color:         req.Color,
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, c)
}

// GetCategory handles GET /api/v1/categories/{id}
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	c, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, c)
}

// ListCategories handles GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListCategories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if items == nil {
		items = []domain.Category{}
	}

	httputil.WriteData(w, http.StatusOK, items)
}

// CreateService handles POST /api/v1/services
func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req CreateServiceRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	svc, err := h.service.CreateService(r.Context(), &service.CreateServiceInput{
		Name:          req.Name,
		NameEn:        req.NameEn,
		Description:   req.Description,
		DescriptionEn: req.DescriptionEn,
		CategoryID:    req.CategoryID,
		Icon:          req.Icon,
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, svc)
}

// GetService handles GET /api/v1/services/{id}
func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	svc, err := h.service.GetService(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, svc)
}

// ListServices handles GET /api/v1/services?category={id}
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	var categoryID *string
	if v := r.URL.Query().Get("category"); v != "" {
		if _, err := uuid.Parse(v); err != nil {
			writeInvalidParam(w, r, "category must be a valid UUID")
			return
		}
		categoryID = &v
	}

	items, err := h.service.ListServices(r.Context(), categoryID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if items == nil {
		items = []domain.Service{}
	}

	httputil.WriteData(w, http.StatusOK, items)
}
