package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-adoption-backend/internal/domain"
	"github.com/tbourn/go-adoption-backend/internal/repo"
)

// CatalogService exposes the category and breed taxonomy.
type CatalogService struct {
	DB *gorm.DB
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// Categories lists active categories ordered by name.
func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	out, err := repo.ListCategories(ctx, s.DB, true)
	return out, storeErr(err, nil)
}

// Breeds lists the active breeds of one category.
func (s *CatalogService) Breeds(ctx context.Context, categoryID uint) ([]domain.Breed, error) {
	if _, err := repo.GetCategory(ctx, s.DB, categoryID); err != nil {
		return nil, storeErr(err, ErrCategoryNotFound)
	}
	out, err := repo.ListBreeds(ctx, s.DB, categoryID, true)
	return out, storeErr(err, nil)
}

// CreateCategory adds a category. Administrators only.
func (s *CatalogService) CreateCategory(ctx context.Context, actor Actor, name string) (*domain.Category, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden.withMsg("administrator role required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	c := &domain.Category{Name: name, Active: true}
	if err := repo.CreateCategory(ctx, s.DB, c); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateCatalog.wrap(err)
		}
		return nil, storeErr(err, nil)
	}
	return c, nil
}

// CreateBreed adds a breed to a category. Administrators only.
func (s *CatalogService) CreateBreed(ctx context.Context, actor Actor, categoryID uint, name string) (*domain.Breed, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden.withMsg("administrator role required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if _, err := repo.GetCategory(ctx, s.DB, categoryID); err != nil {
		return nil, storeErr(err, ErrCategoryNotFound)
	}
	b := &domain.Breed{CategoryID: categoryID, Name: name, Active: true}
	if err := repo.CreateBreed(ctx, s.DB, b); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateCatalog.wrap(err)
		}
		return nil, storeErr(err, nil)
	}
	return b, nil
}
