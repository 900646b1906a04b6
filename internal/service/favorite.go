package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/repository"
	apperrors "github.com/zezman/directory/pkg/errors"
	"github.com/zezman/directory/pkg/pagination"
)

// FavoriteService implements the business logic for saved businesses.
type FavoriteService struct {
	favorites  repository.FavoriteRepository
	businesses repository.BusinessRepository
	counts     *CountSynchronizer
	events     EventPublisher
	logger     *slog.Logger
}

// NewFavoriteService creates a new favorite service.
func NewFavoriteService(
	favorites repository.FavoriteRepository,
	businesses repository.BusinessRepository,
	counts *CountSynchronizer,
	events EventPublisher,
	logger *slog.Logger,
) *FavoriteService {
	return &FavoriteService{
		favorites:  favorites,
		businesses: businesses,
		counts:     counts,
		events:     events,
		logger:     logger,
	}
}

// AddFavorite saves a visible business for a user and recounts its favorites.
func (s *FavoriteService) AddFavorite(ctx context.Context, userID, businessID, notes string) (*domain.Favorite, error) {
	notes = strings.TrimSpace(notes)
	if err := validateLength("notes", notes, domain.MaxFavoriteNotesLength); err != nil {
		return nil, err
	}

	b, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("add favorite: %w", err)
	}
	if !b.Visible() {
		return nil, apperrors.NotFound("business", businessID)
	}

	f := &domain.Favorite{
		UserID:     userID,
		BusinessID: businessID,
		Notes:      notes,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.favorites.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("add favorite: %w", err)
	}

	if err := s.counts.RecomputeFavoriteCount(ctx, businessID); err != nil {
		return nil, fmt.Errorf("add favorite: %w", err)
	}

	logPublishFailure(ctx, s.logger, "favorite.added", s.events.PublishFavoriteAdded(ctx, f),
		slog.String("business_id", businessID),
	)

	s.logger.InfoContext(ctx, "favorite added",
		slog.String("user_id", userID),
		slog.String("business_id", businessID),
	)
	return f, nil
}

// RemoveFavorite deletes a user's favorite and recounts the business favorites.
func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, businessID string) error {
	if err := s.favorites.Delete(ctx, userID, businessID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}

	if err := s.counts.RecomputeFavoriteCount(ctx, businessID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}

	logPublishFailure(ctx, s.logger, "favorite.removed", s.events.PublishFavoriteRemoved(ctx, userID, businessID),
		slog.String("business_id", businessID),
	)

	s.logger.InfoContext(ctx, "favorite removed",
		slog.String("user_id", userID),
		slog.String("business_id", businessID),
	)
	return nil
}

// UpdateNotes replaces the notes on a user's favorite.
func (s *FavoriteService) UpdateNotes(ctx context.Context, userID, businessID, notes string) (*domain.Favorite, error) {
	notes = strings.TrimSpace(notes)
	if err := validateLength("notes", notes, domain.MaxFavoriteNotesLength); err != nil {
		return nil, err
	}

	if err := s.favorites.UpdateNotes(ctx, userID, businessID, notes); err != nil {
		return nil, fmt.Errorf("update favorite notes: %w", err)
	}

	f, err := s.favorites.Get(ctx, userID, businessID)
	if err != nil {
		return nil, fmt.Errorf("update favorite notes: %w", err)
	}
	return f, nil
}

// IsFavorite reports whether a user saved a business.
func (s *FavoriteService) IsFavorite(ctx context.Context, userID, businessID string) (bool, error) {
	_, err := s.favorites.Get(ctx, userID, businessID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return true, nil
}

// ListMyFavorites returns a page of a user's favorites, newest first.
func (s *FavoriteService) ListMyFavorites(ctx context.Context, userID string, page pagination.Params) (*pagination.Result[domain.Favorite], error) {
	items, total, err := s.favorites.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	result := pagination.NewResult(items, total, page)
	return &result, nil
}
