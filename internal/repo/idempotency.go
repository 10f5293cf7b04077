package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-adoption-backend/internal/domain"
)

// IdemKey identifies a stored outcome: one caller, one operation, one
// client-chosen key.
type IdemKey struct {
	UserID uint
	Scope  string
	Key    string
}

func (k IdemKey) where(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ? AND scope = ? AND key = ?", k.UserID, k.Scope, k.Key)
}

// GetIdempotency returns the record for k if it is still live at now.
// Blank keys, expired and missing records all report ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, k IdemKey, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(k.Key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := k.where(db.WithContext(ctx)).Where("expires_at > ?", now).First(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, Classify(err)
	}
	return &rec, nil
}

// SaveIdempotency remembers that k produced resourceID with status, valid
// for ttl from now. An expired record under the same key is replaced; a live
// one yields ErrDuplicate.
func SaveIdempotency(ctx context.Context, db *gorm.DB, k IdemKey, resourceID uint, status int, now time.Time, ttl time.Duration) (*domain.Idempotency, error) {
	db = db.WithContext(ctx)
	if err := k.where(db).Where("expires_at <= ?", now).Delete(&domain.Idempotency{}).Error; err != nil {
		return nil, Classify(err)
	}
	rec := &domain.Idempotency{
		ID:         uuid.NewString(),
		UserID:     k.UserID,
		Scope:      k.Scope,
		Key:        k.Key,
		ResourceID: resourceID,
		Status:     status,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := db.Create(rec).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, Classify(err)
	}
	return rec, nil
}

// PurgeExpiredIdempotency deletes every record that expired at or before now
// and reports how many went.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Idempotency{})
	return res.RowsAffected, Classify(res.Error)
}
