package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/pkg/httputil"
	"github.com/zezman/directory/pkg/pagination"
)

// SearchHandler handles GET /api/v1/businesses/search.
type SearchHandler struct {
	service SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// Search handles GET /api/v1/businesses/search
//
// Query parameters: q, category, minRating, maxDistance, lat, lng,
// services (comma separated ids), sort, page, limit.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q, msg := parseSearchQuery(r)
	if msg != "" {
		writeErrorCode(w, r, http.StatusBadRequest, "INVALID_QUERY", msg)
		return
	}

	result, err := h.service.Search(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, result)
}

// parseSearchQuery reads the raw search parameters. Range and combination
// checks are left to domain.SearchQuery.Normalize; only unparseable numbers
// are reported here.
func parseSearchQuery(r *http.Request) (domain.SearchQuery, string) {
	values := r.URL.Query()
	q := domain.SearchQuery{
		Text:       values.Get("q"),
		CategoryID: values.Get("category"),
		Sort:       values.Get("sort"),
	}

	if v := values.Get("services"); v != "" {
		q.ServiceIDs = strings.Split(v, ",")
	}

	floats := []struct {
		name string
		dst  **float64
	}{
		{"minRating", &q.MinRating},
		{"maxDistance", &q.MaxDistanceKm},
		{"lat", &q.Lat},
		{"lng", &q.Lng},
	}
	for _, f := range floats {
		v, err := queryFloat(r, f.name)
		if err != nil {
			return q, f.name + " must be a number"
		}
		*f.dst = v
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		return q, "page must be an integer"
	}
	limit, err := queryInt(r, "limit", pagination.DefaultLimit)
	if err != nil {
		return q, "limit must be an integer"
	}
	q.Page, q.PageSize = page, limit

	return q, ""
}
