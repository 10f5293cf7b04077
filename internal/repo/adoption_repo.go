// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// AdoptionRequest model.
//
// The functions here are thin: they never decide whether a transition is
// allowed. The compare-and-set helpers (SetRequestStatus, MarkAdopted)
// report through their boolean result whether the guarded row was still in
// the expected state, which lets the service layer re-check preconditions
// under the same transaction that performs the write.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-adoption-backend/internal/domain"
)

// RequestRow is an adoption request joined with the display data of its
// animal, the animal's owner and the requester.
type RequestRow struct {
	domain.AdoptionRequest
	AnimalName     string
	AnimalAdopted  bool
	CategoryName   string
	OwnerID        uint
	OwnerName      string
	RequesterName  string
	RequesterEmail string
}

const requestRowSelect = "adoption_requests.*, animals.name AS animal_name, animals.adopted AS animal_adopted, " +
	"categories.name AS category_name, animals.owner_id AS owner_id, owners.name AS owner_name, " +
	"requesters.name AS requester_name, requesters.email AS requester_email"

func requestRows(db *gorm.DB) *gorm.DB {
	return db.Model(&domain.AdoptionRequest{}).
		Select(requestRowSelect).
		Joins("JOIN animals ON animals.id = adoption_requests.animal_id").
		Joins("JOIN categories ON categories.id = animals.category_id").
		Joins("JOIN users AS owners ON owners.id = animals.owner_id").
		Joins("JOIN users AS requesters ON requesters.id = adoption_requests.requester_id")
}

// CreateRequest inserts r. A second open request for the same
// (animal, requester) violates ux_adoption_open_pair and yields ErrDuplicate.
func CreateRequest(ctx context.Context, db *gorm.DB, r *domain.AdoptionRequest) error {
	return Classify(db.WithContext(ctx).Omit(clause.Associations).Create(r).Error)
}

// GetRequest fetches a bare request row by id.
func GetRequest(ctx context.Context, db *gorm.DB, id uint) (*domain.AdoptionRequest, error) {
	var r domain.AdoptionRequest
	if err := db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, Classify(err)
	}
	return &r, nil
}

// GetRequestForUpdate fetches a request and row-locks it where supported.
func GetRequestForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*domain.AdoptionRequest, error) {
	var r domain.AdoptionRequest
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&r, id).Error
	if err != nil {
		return nil, Classify(err)
	}
	return &r, nil
}

// GetRequestRow fetches one request with its joined display data.
func GetRequestRow(ctx context.Context, db *gorm.DB, id uint) (*RequestRow, error) {
	var row RequestRow
	err := requestRows(db.WithContext(ctx)).Where("adoption_requests.id = ?", id).Take(&row).Error
	if err != nil {
		return nil, Classify(err)
	}
	return &row, nil
}

// HasOpenRequest reports whether an open request exists for the pair.
func HasOpenRequest(ctx context.Context, db *gorm.DB, animalID, requesterID uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.AdoptionRequest{}).
		Where("animal_id = ? AND requester_id = ? AND status IN ?", animalID, requesterID,
			[]domain.RequestStatus{domain.StatusPending, domain.StatusApproved}).
		Count(&n).Error
	return n > 0, Classify(err)
}

// SetRequestStatus moves request id from PENDING to status, stamping
// decisionAt. It returns false when the request was no longer PENDING.
func SetRequestStatus(ctx context.Context, tx *gorm.DB, id uint, status domain.RequestStatus, decisionAt time.Time) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&domain.AdoptionRequest{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(map[string]any{"status": status, "decision_at": decisionAt, "updated_at": decisionAt})
	if res.Error != nil {
		return false, Classify(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// RejectOtherPending rejects every PENDING request on animalID except keepID
// and returns how many rows changed.
func RejectOtherPending(ctx context.Context, tx *gorm.DB, animalID, keepID uint, decisionAt time.Time) (int64, error) {
	res := tx.WithContext(ctx).
		Model(&domain.AdoptionRequest{}).
		Where("animal_id = ? AND id <> ? AND status = ?", animalID, keepID, domain.StatusPending).
		Updates(map[string]any{"status": domain.StatusRejected, "decision_at": decisionAt, "updated_at": decisionAt})
	if res.Error != nil {
		return 0, Classify(res.Error)
	}
	return res.RowsAffected, nil
}

// UpdateRequestNote replaces the note of a still-PENDING request. It returns
// false when the request was no longer PENDING. Only note and updated_at change.
func UpdateRequestNote(ctx context.Context, tx *gorm.DB, id uint, note string, now time.Time) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&domain.AdoptionRequest{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(map[string]any{"note": note, "updated_at": now})
	if res.Error != nil {
		return false, Classify(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// DeleteRequest removes a request permanently.
func DeleteRequest(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.AdoptionRequest{}, id)
	if res.Error != nil {
		return Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRequestsByAnimal returns all requests for one animal, newest first.
func ListRequestsByAnimal(ctx context.Context, db *gorm.DB, animalID uint) ([]RequestRow, error) {
	return listRequests(ctx, db, "adoption_requests.animal_id = ?", animalID)
}

// ListRequestsByRequester returns all requests filed by requesterID.
func ListRequestsByRequester(ctx context.Context, db *gorm.DB, requesterID uint) ([]RequestRow, error) {
	return listRequests(ctx, db, "adoption_requests.requester_id = ?", requesterID)
}

// ListRequestsByOwner returns the requests on every animal held by ownerID.
func ListRequestsByOwner(ctx context.Context, db *gorm.DB, ownerID uint) ([]RequestRow, error) {
	return listRequests(ctx, db, "animals.owner_id = ?", ownerID)
}

// ListAllRequests returns every request.
func ListAllRequests(ctx context.Context, db *gorm.DB) ([]RequestRow, error) {
	return listRequests(ctx, db, "1 = 1")
}

func listRequests(ctx context.Context, db *gorm.DB, where string, args ...any) ([]RequestRow, error) {
	out := []RequestRow{}
	err := requestRows(db.WithContext(ctx)).
		Where(where, args...).
		Order("adoption_requests.created_at desc").
		Order("adoption_requests.id desc").
		Find(&out).Error
	return out, Classify(err)
}

// CountRequestsByAnimalAndStatus counts the requests of one animal in one status.
func CountRequestsByAnimalAndStatus(ctx context.Context, db *gorm.DB, animalID uint, status domain.RequestStatus) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.AdoptionRequest{}).
		Where("animal_id = ? AND status = ?", animalID, status).
		Count(&n).Error
	return n, Classify(err)
}
