// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides lookups for users and the category and
// breed taxonomy.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. Missing rows surface as ErrNotFound.
package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-adoption-backend/internal/domain"
)

// GetUser fetches a user by id.
func GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, Classify(err)
	}
	return &u, nil
}

// CreateUser inserts u. Email is normalized to lower case.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	return Classify(db.WithContext(ctx).Create(u).Error)
}

// GetUserByEmail fetches a user by (case-insensitive) email.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, Classify(err)
	}
	return &u, nil
}

// GetCategory fetches a category by id.
func GetCategory(ctx context.Context, db *gorm.DB, id uint) (*domain.Category, error) {
	var c domain.Category
	if err := db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, Classify(err)
	}
	return &c, nil
}

// ListCategories returns categories ordered by name, optionally only active ones.
func ListCategories(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.Category, error) {
	q := db.WithContext(ctx).Order("name asc")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var out []domain.Category
	err := q.Find(&out).Error
	return out, Classify(err)
}

// CreateCategory inserts c; a duplicate name yields ErrDuplicate.
func CreateCategory(ctx context.Context, db *gorm.DB, c *domain.Category) error {
	return Classify(db.WithContext(ctx).Create(c).Error)
}

// GetBreed fetches a breed by id.
func GetBreed(ctx context.Context, db *gorm.DB, id uint) (*domain.Breed, error) {
	var b domain.Breed
	if err := db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, Classify(err)
	}
	return &b, nil
}

// ListBreeds returns the breeds of one category ordered by name.
func ListBreeds(ctx context.Context, db *gorm.DB, categoryID uint, activeOnly bool) ([]domain.Breed, error) {
	q := db.WithContext(ctx).Where("category_id = ?", categoryID).Order("name asc")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var out []domain.Breed
	err := q.Find(&out).Error
	return out, Classify(err)
}

// CreateBreed inserts b; a duplicate (category, name) yields ErrDuplicate.
func CreateBreed(ctx context.Context, db *gorm.DB, b *domain.Breed) error {
	return Classify(db.WithContext(ctx).Omit("Category").Create(b).Error)
}
