// Package services – AdoptionService
//
// This file implements the adoption request lifecycle. A request is created
// PENDING by a requester and decided exactly once by the animal's owner;
// approving it rejects every competing PENDING request and marks the animal
// adopted inside the same transaction.
//
// Every write takes the per-animal lock before opening its transaction and
// re-reads the rows it guards inside that transaction. The status and
// adopted flag are then written with compare-and-set updates, and the store's
// partial unique indexes back both "one open request per pair" and "one
// approval per animal". Either mechanism alone keeps a second concurrent
// approval from succeeding.
//
// Observability: all public methods are OpenTelemetry-instrumented and
// failures are counted by operation and error kind.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-adoption-backend/internal/domain"
	"github.com/tbourn/go-adoption-backend/internal/lock"
	"github.com/tbourn/go-adoption-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ScopeCreateRequest namespaces idempotency keys used for request creation.
const ScopeCreateRequest = "adoption-requests:create"

// statusCreated is the response status recorded with an idempotency key.
const statusCreated = 201

// DefaultNoteMaxRunes is the longest note accepted when none is configured.
const DefaultNoteMaxRunes = 500

// AdoptionService coordinates the adoption request lifecycle.
type AdoptionService struct {
	DB    *gorm.DB
	Locks lock.Locker

	NoteMaxRunes   int
	IdempotencyTTL time.Duration

	// Now is the clock; nil means time.Now.
	Now func() time.Time

	fallback lock.KeyedMutex
}

// NewAdoptionService constructs an AdoptionService. A nil locker selects an
// in-process keyed mutex.
func NewAdoptionService(db *gorm.DB, locks lock.Locker) *AdoptionService {
	return &AdoptionService{
		DB:             db,
		Locks:          locks,
		NoteMaxRunes:   DefaultNoteMaxRunes,
		IdempotencyTTL: 24 * time.Hour,
	}
}

var adoptionTracer = otel.Tracer("services/AdoptionService")

func (s *AdoptionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AdoptionService) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}

func (s *AdoptionService) locker() lock.Locker {
	if s.Locks != nil {
		return s.Locks
	}
	return &s.fallback
}

// lockAnimal serializes lifecycle writes on one animal.
func (s *AdoptionService) lockAnimal(ctx context.Context, animalID uint) (func(), error) {
	release, err := s.locker().Acquire(ctx, lock.AnimalKey(animalID))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, ErrUnavailable.wrap(err)
	}
	return release, nil
}

// cleanNote trims note and enforces the length limit in runes.
func (s *AdoptionService) cleanNote(note string) (string, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return "", ErrNoteRequired
	}
	limit := s.NoteMaxRunes
	if limit <= 0 {
		limit = DefaultNoteMaxRunes
	}
	if utf8.RuneCountInString(note) > limit {
		return "", ErrNoteTooLong.withMsg(fmt.Sprintf("note must be at most %d characters", limit))
	}
	return note, nil
}

// finish records the outcome of a lifecycle operation on span and metrics.
func finish(span trace.Span, op string, err error) {
	if err != nil {
		kind := KindOf(err)
		lifecycleErrors.WithLabelValues(op, kind.String()).Inc()
		span.SetAttributes(attribute.String("error.kind", kind.String()))
		if kind == KindInternal || kind == KindUnavailable {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}

// Create files a new PENDING request by actor for animalID.
//
// Failures, in the order they are checked: NotFound (animal, requester),
// Conflict AlreadyAdopted, Forbidden (own animal), Conflict DuplicateRequest,
// InvalidInput (note).
func (s *AdoptionService) Create(ctx context.Context, actor Actor, animalID uint, note string) (*domain.AdoptionRequest, error) {
	req, _, err := s.create(ctx, actor, animalID, note, "")
	return req, err
}

// CreateIdempotent is Create keyed by a client-supplied idempotency key.
// Retrying with the same key returns the originally created request and
// replayed=true instead of failing with DuplicateRequest. Reusing a live
// key for a different animal is a conflict. A blank key behaves like Create.
func (s *AdoptionService) CreateIdempotent(ctx context.Context, actor Actor, animalID uint, note, key string) (req *domain.AdoptionRequest, replayed bool, err error) {
	return s.create(ctx, actor, animalID, note, strings.TrimSpace(key))
}

func (s *AdoptionService) create(ctx context.Context, actor Actor, animalID uint, note, key string) (req *domain.AdoptionRequest, replayed bool, err error) {
	ctx, span := adoptionTracer.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.Int64("animal.id", int64(animalID)),
			attribute.Int64("user.id", int64(actor.UserID)),
			attribute.Bool("idempotent", key != ""),
		),
	)
	defer func() { finish(span, "create", err) }()

	release, err := s.lockAnimal(ctx, animalID)
	if err != nil {
		return nil, false, err
	}
	defer release()

	now := s.now()
	idem := repo.IdemKey{UserID: actor.UserID, Scope: ScopeCreateRequest, Key: key}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if key != "" {
			rec, err := repo.GetIdempotency(ctx, tx, idem, now)
			switch {
			case err == nil:
				prev, err := repo.GetRequest(ctx, tx, rec.ResourceID)
				if err != nil {
					return storeErr(err, ErrRequestNotFound)
				}
				if prev.AnimalID != animalID {
					return ErrIdempotencyReuse
				}
				req, replayed = prev, true
				return nil
			case !errors.Is(err, repo.ErrNotFound):
				return storeErr(err, nil)
			}
		}

		animal, err := repo.GetAnimalForUpdate(ctx, tx, animalID)
		if err != nil {
			return storeErr(err, ErrAnimalNotFound)
		}
		if _, err := repo.GetUser(ctx, tx, actor.UserID); err != nil {
			return storeErr(err, ErrUserNotFound)
		}
		if animal.Adopted {
			return ErrAlreadyAdopted
		}
		if animal.OwnerID == actor.UserID {
			return ErrOwnAnimal
		}
		open, err := repo.HasOpenRequest(ctx, tx, animalID, actor.UserID)
		if err != nil {
			return storeErr(err, nil)
		}
		if open {
			return ErrDuplicateRequest
		}
		clean, err := s.cleanNote(note)
		if err != nil {
			return err
		}

		r := &domain.AdoptionRequest{
			AnimalID:    animalID,
			RequesterID: actor.UserID,
			Note:        clean,
			Status:      domain.StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repo.CreateRequest(ctx, tx, r); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrDuplicateRequest.wrap(err)
			}
			return storeErr(err, nil)
		}
		if key != "" {
			if _, err := repo.SaveIdempotency(ctx, tx, idem, r.ID, statusCreated, now, s.idempotencyTTL()); err != nil {
				if errors.Is(err, repo.ErrDuplicate) {
					return ErrDuplicateRequest.withMsg("idempotency key already used")
				}
				return storeErr(err, nil)
			}
		}
		req = r
		return nil
	})
	if err != nil {
		return nil, false, storeErr(err, nil)
	}

	if replayed {
		zerolog.Ctx(ctx).Debug().Uint("request_id", req.ID).Str("idempotency_key", key).Msg("adoption request replayed")
		return req, true, nil
	}
	requestsCreated.Inc()
	zerolog.Ctx(ctx).Info().Uint("request_id", req.ID).Uint("animal_id", animalID).Uint("requester_id", actor.UserID).Msg("adoption request created")
	return req, false, nil
}

// Decide approves or rejects a PENDING request on behalf of the animal's
// owner.
//
// Approval rejects every other PENDING request on the same animal and sets
// the animal's adopted flag; all three writes commit together or not at all.
// Failures: InvalidInput (decision), NotFound, Forbidden, InvalidState
// (not PENDING), Conflict AlreadyAdopted (another approval won).
func (s *AdoptionService) Decide(ctx context.Context, actor Actor, requestID uint, decision domain.RequestStatus) (req *domain.AdoptionRequest, err error) {
	ctx, span := adoptionTracer.Start(ctx, "Decide",
		trace.WithAttributes(
			attribute.Int64("request.id", int64(requestID)),
			attribute.Int64("user.id", int64(actor.UserID)),
			attribute.String("decision", string(decision)),
		),
	)
	defer func() { finish(span, "decide", err) }()

	if decision != domain.StatusApproved && decision != domain.StatusRejected {
		return nil, ErrInvalidDecision
	}

	current, err := repo.GetRequest(ctx, s.DB, requestID)
	if err != nil {
		return nil, storeErr(err, ErrRequestNotFound)
	}
	release, err := s.lockAnimal(ctx, current.AnimalID)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now()
	var rejected int64
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetRequestForUpdate(ctx, tx, requestID)
		if err != nil {
			return storeErr(err, ErrRequestNotFound)
		}
		animal, err := repo.GetAnimalForUpdate(ctx, tx, r.AnimalID)
		if err != nil {
			return storeErr(err, ErrAnimalNotFound)
		}
		if animal.OwnerID != actor.UserID {
			return ErrForbidden.withMsg("only the animal's owner can decide on this request")
		}
		if r.Status != domain.StatusPending {
			return ErrNotPending
		}
		if decision == domain.StatusApproved && animal.Adopted {
			return ErrAlreadyAdopted
		}

		ok, err := repo.SetRequestStatus(ctx, tx, r.ID, decision, now)
		if err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrAlreadyAdopted.wrap(err)
			}
			return storeErr(err, nil)
		}
		if !ok {
			return ErrNotPending
		}

		if decision == domain.StatusApproved {
			if rejected, err = repo.RejectOtherPending(ctx, tx, r.AnimalID, r.ID, now); err != nil {
				return storeErr(err, nil)
			}
			adopted, err := repo.MarkAdopted(ctx, tx, r.AnimalID)
			if err != nil {
				return storeErr(err, nil)
			}
			if !adopted {
				return ErrAlreadyAdopted
			}
		}

		r.Status = decision
		r.DecisionAt = &now
		r.UpdatedAt = now
		req = r
		return nil
	})
	if err != nil {
		return nil, storeErr(err, nil)
	}

	decisions.WithLabelValues(string(decision)).Inc()
	zerolog.Ctx(ctx).Info().
		Uint("request_id", req.ID).
		Uint("animal_id", req.AnimalID).
		Str("decision", string(decision)).
		Int64("rejected_others", rejected).
		Msg("adoption request decided")
	return req, nil
}

// UpdateNote replaces the note of a PENDING request on behalf of its
// requester. Status and decision timestamps are left untouched.
//
// Failures, in the order they are checked: NotFound, Forbidden, InvalidState,
// Conflict AlreadyAdopted, InvalidInput (note).
func (s *AdoptionService) UpdateNote(ctx context.Context, actor Actor, requestID uint, note string) (req *domain.AdoptionRequest, err error) {
	ctx, span := adoptionTracer.Start(ctx, "UpdateNote",
		trace.WithAttributes(
			attribute.Int64("request.id", int64(requestID)),
			attribute.Int64("user.id", int64(actor.UserID)),
		),
	)
	defer func() { finish(span, "update_note", err) }()

	current, err := repo.GetRequest(ctx, s.DB, requestID)
	if err != nil {
		return nil, storeErr(err, ErrRequestNotFound)
	}
	release, err := s.lockAnimal(ctx, current.AnimalID)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := repo.GetRequestForUpdate(ctx, tx, requestID)
		if err != nil {
			return storeErr(err, ErrRequestNotFound)
		}
		if r.RequesterID != actor.UserID {
			return ErrForbidden.withMsg("only the requester can edit this request")
		}
		if r.Status != domain.StatusPending {
			return ErrNotPending
		}
		animal, err := repo.GetAnimal(ctx, tx, r.AnimalID)
		if err != nil {
			return storeErr(err, ErrAnimalNotFound)
		}
		if animal.Adopted {
			return ErrAlreadyAdopted
		}
		clean, err := s.cleanNote(note)
		if err != nil {
			return err
		}
		ok, err := repo.UpdateRequestNote(ctx, tx, r.ID, clean, now)
		if err != nil {
			return storeErr(err, nil)
		}
		if !ok {
			return ErrNotPending
		}
		r.Note = clean
		r.UpdatedAt = now
		req = r
		return nil
	})
	if err != nil {
		return nil, storeErr(err, nil)
	}
	zerolog.Ctx(ctx).Debug().Uint("request_id", req.ID).Msg("adoption request note updated")
	return req, nil
}

// Delete removes a request permanently. Only its requester or an
// administrator may do so, whatever the request's status.
func (s *AdoptionService) Delete(ctx context.Context, actor Actor, requestID uint) (err error) {
	ctx, span := adoptionTracer.Start(ctx, "Delete",
		trace.WithAttributes(
			attribute.Int64("request.id", int64(requestID)),
			attribute.Int64("user.id", int64(actor.UserID)),
		),
	)
	defer func() { finish(span, "delete", err) }()

	r, err := repo.GetRequest(ctx, s.DB, requestID)
	if err != nil {
		return storeErr(err, ErrRequestNotFound)
	}
	if r.RequesterID != actor.UserID && !actor.IsAdmin() {
		return ErrForbidden.withMsg("only the requester can delete this request")
	}
	release, err := s.lockAnimal(ctx, r.AnimalID)
	if err != nil {
		return err
	}
	defer release()

	if err := repo.DeleteRequest(ctx, s.DB, requestID); err != nil {
		return storeErr(err, ErrRequestNotFound)
	}
	zerolog.Ctx(ctx).Info().Uint("request_id", requestID).Str("status", string(r.Status)).Msg("adoption request deleted")
	return nil
}

// Get returns one request with its joined display data. The requester, the
// animal's owner and administrators may read it.
func (s *AdoptionService) Get(ctx context.Context, actor Actor, requestID uint) (row *repo.RequestRow, err error) {
	ctx, span := adoptionTracer.Start(ctx, "Get",
		trace.WithAttributes(attribute.Int64("request.id", int64(requestID))),
	)
	defer func() { finish(span, "get", err) }()

	row, err = repo.GetRequestRow(ctx, s.DB, requestID)
	if err != nil {
		return nil, storeErr(err, ErrRequestNotFound)
	}
	if row.RequesterID != actor.UserID && row.OwnerID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return row, nil
}

// ListAll returns every request. Administrators only.
func (s *AdoptionService) ListAll(ctx context.Context, actor Actor) (rows []repo.RequestRow, err error) {
	ctx, span := adoptionTracer.Start(ctx, "ListAll")
	defer func() { finish(span, "list_all", err) }()

	if !actor.IsAdmin() {
		return nil, ErrForbidden.withMsg("administrator role required")
	}
	rows, err = repo.ListAllRequests(ctx, s.DB)
	return rows, storeErr(err, nil)
}

// ListByAnimal returns all requests for one animal.
func (s *AdoptionService) ListByAnimal(ctx context.Context, animalID uint) (rows []repo.RequestRow, err error) {
	ctx, span := adoptionTracer.Start(ctx, "ListByAnimal",
		trace.WithAttributes(attribute.Int64("animal.id", int64(animalID))),
	)
	defer func() { finish(span, "list_by_animal", err) }()

	if _, err := repo.GetAnimal(ctx, s.DB, animalID); err != nil {
		return nil, storeErr(err, ErrAnimalNotFound)
	}
	rows, err = repo.ListRequestsByAnimal(ctx, s.DB, animalID)
	return rows, storeErr(err, nil)
}

// ListByRequester returns the requests filed by requesterID.
func (s *AdoptionService) ListByRequester(ctx context.Context, requesterID uint) (rows []repo.RequestRow, err error) {
	ctx, span := adoptionTracer.Start(ctx, "ListByRequester",
		trace.WithAttributes(attribute.Int64("user.id", int64(requesterID))),
	)
	defer func() { finish(span, "list_by_requester", err) }()

	rows, err = repo.ListRequestsByRequester(ctx, s.DB, requesterID)
	return rows, storeErr(err, nil)
}

// ListForOwner returns the requests on every animal held by ownerID.
func (s *AdoptionService) ListForOwner(ctx context.Context, ownerID uint) (rows []repo.RequestRow, err error) {
	ctx, span := adoptionTracer.Start(ctx, "ListForOwner",
		trace.WithAttributes(attribute.Int64("user.id", int64(ownerID))),
	)
	defer func() { finish(span, "list_for_owner", err) }()

	rows, err = repo.ListRequestsByOwner(ctx, s.DB, ownerID)
	return rows, storeErr(err, nil)
}

// ListForOwnerAnimal returns the requests for one animal, provided ownerID
// holds it.
func (s *AdoptionService) ListForOwnerAnimal(ctx context.Context, ownerID, animalID uint) (rows []repo.RequestRow, err error) {
	ctx, span := adoptionTracer.Start(ctx, "ListForOwnerAnimal",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(ownerID)),
			attribute.Int64("animal.id", int64(animalID)),
		),
	)
	defer func() { finish(span, "list_for_owner_animal", err) }()

	animal, err := repo.GetAnimal(ctx, s.DB, animalID)
	if err != nil {
		return nil, storeErr(err, ErrAnimalNotFound)
	}
	if animal.OwnerID != ownerID {
		return nil, ErrForbidden.withMsg("you do not own this animal")
	}
	rows, err = repo.ListRequestsByAnimal(ctx, s.DB, animalID)
	return rows, storeErr(err, nil)
}

// CountByAnimalAndStatus counts the requests of one animal in one status.
func (s *AdoptionService) CountByAnimalAndStatus(ctx context.Context, animalID uint, status domain.RequestStatus) (n int64, err error) {
	ctx, span := adoptionTracer.Start(ctx, "CountByAnimalAndStatus",
		trace.WithAttributes(
			attribute.Int64("animal.id", int64(animalID)),
			attribute.String("status", string(status)),
		),
	)
	defer func() { finish(span, "count", err) }()

	if !status.Valid() {
		return 0, invalid(fmt.Sprintf("invalid status: %q", status))
	}
	n, err = repo.CountRequestsByAnimalAndStatus(ctx, s.DB, animalID, status)
	return n, storeErr(err, nil)
}

// RequesterStats backs conditional GETs on a requester's own list.
func (s *AdoptionService) RequesterStats(ctx context.Context, requesterID uint) (int64, *time.Time, error) {
	n, at, err := repo.RequesterStats(ctx, s.DB, requesterID)
	return n, at, storeErr(err, nil)
}

// OwnerStats backs conditional GETs on the requests for an owner's animals.
func (s *AdoptionService) OwnerStats(ctx context.Context, ownerID uint) (int64, *time.Time, error) {
	n, at, err := repo.OwnerStats(ctx, s.DB, ownerID)
	return n, at, storeErr(err, nil)
}
