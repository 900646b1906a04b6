package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/service"
	"github.com/zezman/directory/pkg/httputil"
	"github.com/zezman/directory/pkg/pagination"
)

// BusinessHandler handles HTTP requests for business endpoints.
type BusinessHandler struct {
	service BusinessService
	logger  *slog.Logger
}

// NewBusinessHandler creates a new business HTTP handler.
func NewBusinessHandler(svc BusinessService, logger *slog.Logger) *BusinessHandler {
	return &BusinessHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// LocationRequest is a WGS84 point.
type LocationRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// BusinessServiceRequest links a business to a service it offers.
type BusinessServiceRequest struct {
	ServiceID string `json:"service_id" validate:"required,uuid"`
	Price     *int64 `json:"price" validate:"omitempty,gte=0"`
	Currency  string `json:"currency" validate:"omitempty,len=3"`
}

// TimeRangeRequest is an opening interval in "HH:MM".
type TimeRangeRequest struct {
	Open  string `json:"open" validate:"required,clock"`
	Close string `json:"close" validate:"required,clock"`
}

// OpeningHoursRequest describes one weekday; 0 is Sunday.
type OpeningHoursRequest struct {
	Day    int                `json:"day" validate:"gte=0,lte=6"`
	Closed bool               `json:"closed"`
	Ranges []TimeRangeRequest `json:"ranges" validate:"omitempty,dive"`
}

// CreateBusinessRequest is the JSON request body for creating a business.
type CreateBusinessRequest struct {
	Name         string                   `json:"name" validate:"required,min=1,max=200"`
	Description  string                   `json:"description" validate:"max=2000"`
	Address      string                   `json:"address" validate:"max=500"`
	City         string                   `json:"city" validate:"max=100"`
	Country      string                   `json:"country" validate:"max=100"`
	PostalCode   string                   `json:"postal_code" validate:"max=20"`
	Prefix       string                   `json:"prefix" validate:"max=10"`
	Phone        string                   `json:"phone" validate:"max=30"`
	Email        string                   `json:"email" validate:"omitempty,email"`
	Website      string                   `json:"website" validate:"omitempty,url"`
	Logo         string                   `json:"logo" validate:"omitempty,url"`
	Location     LocationRequest          `json:"location"`
	CategoryID   string                   `json:"category_id" validate:"required,uuid"`
	Services     []BusinessServiceRequest `json:"services" validate:"omitempty,dive"`
	Tags         []string                 `json:"tags" validate:"omitempty,max=30,dive,max=50"`
	OpeningHours []OpeningHoursRequest    `json:"opening_hours" validate:"omitempty,max=7,dive"`
}

// UpdateBusinessRequest is the JSON request body for updating a business.
// Absent fields are left unchanged.
type UpdateBusinessRequest struct {
	Name         *string                  `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string                  `json:"description" validate:"omitempty,max=2000"`
	Address      *string                  `json:"address" validate:"omitempty,max=500"`
	City         *string                  `json:"city" validate:"omitempty,max=100"`
	Country      *string                  `json:"country" validate:"omitempty,max=100"`
	PostalCode   *string                  `json:"postal_code" validate:"omitempty,max=20"`
	Prefix       *string                  `json:"prefix" validate:"omitempty,max=10"`
	Phone        *string                  `json:"phone" validate:"omitempty,max=30"`
	Email        *string                  `json:"email" validate:"omitempty,email"`
	Website      *string                  `json:"website" validate:"omitempty,url"`
	Logo         *string                  `json:"logo" validate:"omitempty,url"`
	Location     *LocationRequest         `json:"location"`
	CategoryID   *string                  `json:"category_id" validate:"omitempty,uuid"`
	Services     []BusinessServiceRequest `json:"services" validate:"omitempty,dive"`
	Tags         []string                 `json:"tags" validate:"omitempty,max=30,dive,max=50"`
	OpeningHours []OpeningHoursRequest    `json:"opening_hours" validate:"omitempty,max=7,dive"`
	Featured     *bool                    `json:"featured"`
	Verified     *bool                    `json:"verified"`
}

// --- Handlers ---

// CreateBusiness handles POST /api/v1/businesses
func (h *BusinessHandler) CreateBusiness(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateBusinessRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	input := &service.CreateBusinessInput{
		Name:         req.Name,
		Description:  req.Description,
		Address:      req.Address,
		City:         req.City,
		Country:      req.Country,
		PostalCode:   req.PostalCode,
		Prefix:       req.Prefix,
		Phone:        req.Phone,
		Email:        req.Email,
		Website:      req.Website,
		Logo:         req.Logo,
		Location:     domain.Location{Lat: req.Location.Lat, Lng: req.Location.Lng},
		CategoryID:   req.CategoryID,
		Services:     toBusinessServices(req.Services),
		Tags:         req.Tags,
		OpeningHours: toOpeningHours(req.OpeningHours),
	}

	b, err := h.service.CreateBusiness(r.Context(), actor, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, b)
}

// GetBusiness handles GET /api/v1/businesses/{id}
func (h *BusinessHandler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	b, err := h.service.GetBusiness(r.Context(), actorFrom(r), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, b)
}

// UpdateBusiness handles PUT /api/v1/businesses/{id}
func (h *BusinessHandler) UpdateBusiness(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateBusinessRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	input := &service.UpdateBusinessInput{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
		PostalCode:  req.PostalCode,
		Prefix:      req.Prefix,
		Phone:       req.Phone,
		Email:       req.Email,
		Website:     req.Website,
		Logo:        req.Logo,
		CategoryID:  req.CategoryID,
		Tags:        req.Tags,
		Featured:    req.Featured,
		Verified:    req.Verified,
	}
	if req.Location != nil {
		input.Location = &domain.Location{Lat: req.Location.Lat, Lng: req.Location.Lng}
	}
	if req.Services != nil {
		input.Services = toBusinessServices(req.Services)
	}
	if req.OpeningHours != nil {
		input.OpeningHours = toOpeningHours(req.OpeningHours)
	}

	b, err := h.service.UpdateBusiness(r.Context(), actor, id, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, b)
}

// DeleteBusiness handles DELETE /api/v1/businesses/{id}
func (h *BusinessHandler) DeleteBusiness(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteBusiness(r.Context(), actor, id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// ListMyBusinesses handles GET /api/v1/users/me/businesses
func (h *BusinessHandler) ListMyBusinesses(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}

	result, err := h.service.ListMyBusinesses(r.Context(), actor.UserID, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, result)
}

// ListFeatured handles GET /api/v1/businesses/featured
func (h *BusinessHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	h.listTop(w, r, h.service.ListFeatured)
}

// ListPopular handles GET /api/v1/businesses/popular
func (h *BusinessHandler) ListPopular(w http.ResponseWriter, r *http.Request) {
	h.listTop(w, r, h.service.ListPopular)
}

// listTop serves an unpaginated list bounded by the limit query parameter.
func (h *BusinessHandler) listTop(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, limit int) ([]domain.Business, error)) {
	limit, err := queryInt(r, "limit", service.DefaultFeaturedLimit)
	if err != nil || limit < 1 {
		writeInvalidParam(w, r, "limit must be a positive integer")
		return
	}

	items, err := list(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if items == nil {
		items = []domain.Business{}
	}

	httputil.WriteData(w, http.StatusOK, items)
}

func toBusinessServices(in []BusinessServiceRequest) []domain.BusinessService {
	out := make([]domain.BusinessService, 0, len(in))
	for _, s := range in {
		out = append(out, domain.BusinessService{ServiceID: s.ServiceID, Price: s.Price, Currency: s.Currency})
	}
	return out
}

func toOpeningHours(in []OpeningHoursRequest) []domain.OpeningHours {
	out := make([]domain.OpeningHours, 0, len(in))
	for _, h := range in {
		oh := domain.OpeningHours{Day: h.Day, Closed: h.Closed}
		for _, tr := range h.Ranges {
			oh.Ranges = append(oh.Ranges, domain.TimeRange{Open: tr.Open, Close: tr.Close})
		}
		out = append(out, oh)
	}
	return out
}
