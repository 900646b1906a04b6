package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	// MaxPage bounds the page number so Offset cannot overflow.
	MaxPage = 100000
)

// Params holds offset pagination parameters extracted from query strings.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// DefaultParams returns page 1 with the default limit.
func DefaultParams() Params {
	return Params{Page: 1, Limit: DefaultLimit}
}

// New normalizes page and limit: non-positive values fall back to the
// defaults, the limit is capped at MaxLimit and the page at MaxPage.
func New(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// FromRequest reads "page" and "limit" from the query string. Unparseable
// values are ignored.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return New(page, limit)
}

// Meta is the pagination block returned with every list response.
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewMeta computes the page count for total items.
func NewMeta(params Params, total int) Meta {
	limit := params.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	pages := total / limit
	if total%limit > 0 {
		pages++
	}
	return Meta{Page: params.Page, Limit: limit, Total: total, Pages: pages}
}

// Result wraps a page of items with its pagination block.
type Result[T any] struct {
	Items      []T  `json:"items"`
	Pagination Meta `json:"pagination"`
}

// NewResult creates a paginated result. A nil slice is encoded as [].
func NewResult[T any](items []T, total int, params Params) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{Items: items, Pagination: NewMeta(params, total)}
}
