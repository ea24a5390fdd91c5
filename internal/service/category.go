package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pxtester/showcase/internal/domain"
	"github.com/pxtester/showcase/internal/telemetry"
)

// CategoryRepositoryInterface defines the repository interface for categories
type CategoryRepositoryInterface interface {
	Create(ctx context.Context, c *domain.Category) error
	ExistsByNameOrSlug(ctx context.Context, name, slug string) (bool, error)
	List(ctx context.Context) ([]*domain.Category, error)
}

// CategoryService manages the category list
type CategoryService struct {
	repo    CategoryRepositoryInterface
	uuidGen UUIDGenerator
}

// NewCategoryService creates a new CategoryService instance
func NewCategoryService(repo CategoryRepositoryInterface) *CategoryService {
	return NewCategoryServiceWithUUIDGen(repo, &DefaultUUIDGenerator{})
}

func NewCategoryServiceWithUUIDGen(repo CategoryRepositoryInterface, uuidGen UUIDGenerator) *CategoryService {
	return &CategoryService{repo: repo, uuidGen: uuidGen}
}

func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.List(ctx)
}

// Create adds a category. Only super admins may do this.
func (s *CategoryService) Create(ctx context.Context, actor domain.Actor, name, description string) (*domain.Category, error) {
	ctx, span := telemetry.StartSpan(ctx, "CategoryService.Create", telemetry.SpanAttributes{
		UserID:    actor.UserID,
		Operation: "create_category",
	})
	defer span.End()

	if !actor.Role.AtLeast(domain.RoleSuperAdmin) {
		return nil, domain.ErrForbidden
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrMissingRequiredField)
	}

	c := domain.NewCategory(s.uuidGen.NewString(), name, description, time.Now().UTC())
	if c.Slug == "" {
		return nil, fmt.Errorf("%w: category name must contain letters or digits", domain.ErrMissingRequiredField)
	}

	exists, err := s.repo.ExistsByNameOrSlug(ctx, c.Name, c.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrCategoryExists
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
