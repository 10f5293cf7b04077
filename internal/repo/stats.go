// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-adoption-backend/internal/domain"
)

// RequesterStats returns how many requests requesterID has filed and the
// greatest UpdatedAt among them. With no rows, count is 0 and
// maxUpdatedAt is nil.
func RequesterStats(ctx context.Context, db *gorm.DB, requesterID uint) (count int64, maxUpdatedAt *time.Time, err error) {
	return requestStats(db.WithContext(ctx).Model(&domain.AdoptionRequest{}).Where("requester_id = ?", requesterID))
}

// OwnerStats is RequesterStats for the requests on every animal of ownerID.
func OwnerStats(ctx context.Context, db *gorm.DB, ownerID uint) (count int64, maxUpdatedAt *time.Time, err error) {
	return requestStats(db.WithContext(ctx).Model(&domain.AdoptionRequest{}).
		Joins("JOIN animals ON animals.id = adoption_requests.animal_id").
		Where("animals.owner_id = ?", ownerID))
}

func requestStats(q *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	if err = q.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return 0, nil, Classify(err)
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Session(&gorm.Session{}).
		Select("adoption_requests.updated_at").
		Order("adoption_requests.updated_at DESC").
		Limit(1).
		Scan(&row).Error; err != nil {
		return 0, nil, Classify(err)
	}
	return count, &row.UpdatedAt, nil
}
