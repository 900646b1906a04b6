package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zezman/directory/internal/domain"
	"github.com/zezman/directory/internal/repository"
	apperrors "github.com/zezman/directory/pkg/errors"
	"github.com/zezman/directory/pkg/slug"
)

// CatalogService manages the category and service reference data.
type CatalogService struct {
	categories repository.CategoryRepository
	services   repository.ServiceRepository
	logger     *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(categories repository.CategoryRepository, services repository.ServiceRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		categories: categories,
		services:   services,
		logger:     logger,
	}
}

// CreateCategoryInput holds the parameters for creating a category.
type CreateCategoryInput struct {
	Name          string
	NameEn        string
	Description   string
	DescriptionEn string
	Icon          string
	Color         string
	SortOrder     int
}

// CreateServiceInput holds the parameters for creating a service.
type CreateServiceInput struct {
	Name          string
	NameEn        string
	Description   string
	DescriptionEn string
	CategoryID    *string
	Icon          string
	SortOrder     int
}

// CreateCategory creates a category. The slug is derived from the English
// name, falling back to the Hebrew one.
func (s *CatalogService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	sl := slug.FromNames(name, input.NameEn)
	if sl == "" {
		return nil, apperrors.InvalidInput("name must contain letters or digits")
	}

	color := input.Color
	if color == "" {
		color = domain.DefaultCategoryColor
	}

	now := time.Now().UTC()
	c := &domain.Category{
		ID:            uuid.New().String(),
		Name:          name,
		NameEn:        strings.TrimSpace(input.NameEn),
		Description:   input.Description,
		DescriptionEn: input.DescriptionEn,
		Slug:          sl,
		Icon:          input.Icon,
		Color:         color,
		SortOrder:     input.SortOrder,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.categories.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", c.ID),
		slog.String("slug", c.Slug),
	)
	return c, nil
}

// GetCategory returns a category by ID.
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListCategories returns the active categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	items, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return items, nil
}

// CreateService creates a service, optionally under a category.
func (s *CatalogService) CreateService(ctx context.Context, input *CreateServiceInput) (*domain.Service, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	sl := slug.FromNames(name, input.NameEn)
	if sl == "" {
		return nil, apperrors.InvalidInput("name must contain letters or digits")
	}

	catID := input.CategoryID
	if catID != nil && *catID == "" {
		catID = nil
	}
	if catID != nil {
		if _, err := s.categories.GetByID(ctx, *catID); err != nil {
			return nil, fmt.Errorf("create service: %w", err)
		}
	}

	now := time.Now().UTC()
	svc := &domain.Service{
		ID:            uuid.New().String(),
		Name:          name,
		NameEn:        strings.TrimSpace(input.NameEn),
		Description:   input.Description,
		DescriptionEn: input.DescriptionEn,
		Slug:          sl,
		CategoryID:    catID,
		Icon:          input.Icon,
		SortOrder:     input.SortOrder,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.services.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}

	s.logger.InfoContext(ctx, "service created",
		slog.String("service_id", svc.ID),
		slog.String("slug", svc.Slug),
	)
	return svc, nil
}

// GetService returns a service by ID.
func (s *CatalogService) GetService(ctx context.Context, id string) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	return svc, nil
}

// ListServices returns the active services, optionally of one category.
func (s *CatalogService) ListServices(ctx context.Context, categoryID *string) ([]domain.Service, error) {
	items, err := s.services.List(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return items, nil
}
