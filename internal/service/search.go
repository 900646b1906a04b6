package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/repository"
	"github.com/zezman/directory/pkg/pagination"
)

// SearchService answers directory searches from the stored aggregates.
type SearchService struct {
	repo     repository.BusinessRepository
	logger   *slog.Logger
	location *time.Location
}

// NewSearchService creates a new search service. Opening hours in results
// are evaluated in loc.
func NewSearchService(repo repository.BusinessRepository, logger *slog.Logger, loc *time.Location) *SearchService {
	return &SearchService{
		repo:     repo,
		logger:   logger,
		location: loc,
	}
}

// Search validates q and returns one page of visible matching businesses.
func (s *SearchService) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error) {
	criteria, err := q.Normalize()
	if err != nil {
		return nil, err
	}

	hits, total, err := s.repo.Search(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("search businesses: %w", err)
	}
	if hits == nil {
		hits = []domain.SearchHit{}
	}

	now := localNow(s.location)
	for i := range hits {
		hits[i].Decorate(now)
	}

	s.logger.DebugContext(ctx, "search executed",
		slog.String("text", criteria.Text),
		slog.String("sort", string(criteria.Sort)),
		slog.Int("total", total),
	)

	return &domain.SearchResult{
		Businesses: hits,
		Pagination: pagination.NewMeta(criteria.Page, total),
	}, nil
}
