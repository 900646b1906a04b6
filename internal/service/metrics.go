package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/zezman/directory/pkg/errors"
)

// Aggregate kinds used as the "kind" label.
const (
	kindRating                = "rating"
	kindFavoriteCount         = "favorite_count"
	kindReviewCount           = "review_count"
	kindCategoryBusinessCount = "category_business_count"
	kindServiceBusinessCount  = "service_business_count"
)

var recomputeTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "directory_aggregate_recompute_total",
		Help: "Total number of aggregate recomputations by kind and result",
	},
	[]string{"kind", "result"},
)

// observeRecompute counts one recomputation as ok, missing or error.
func observeRecompute(kind string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNotFound):
		result = "missing"
	default:
		result = "error"
	}
	recomputeTotal.WithLabelValues(kind, result).Inc()
}
