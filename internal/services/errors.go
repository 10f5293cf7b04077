// Package services defines the business logic for animals, the category and
// breed catalog, and the adoption request lifecycle.
//
// This file centralizes the service-level error values. Every failure a
// service returns carries a Kind so the HTTP layer can map it to a status
// code without knowing which operation produced it. Translation into
// user-facing messages is performed at the handler layer.
package services

import (
	"context"
	"errors"

	"github.com/tbourn/go-adoption-backend/internal/domain"
	"github.com/tbourn/go-adoption-backend/internal/repo"
	"github.com/tbourn/go-adoption-backend/internal/search"
)

// Kind classifies a service failure.
type Kind uint8

const (
	// KindNone is the kind of a nil error.
	KindNone Kind = iota
	// KindInternal covers unexpected failures.
	KindInternal
	// KindNotFound means a referenced entity does not exist.
	KindNotFound
	// KindForbidden means the actor lacks rights over the target.
	KindForbidden
	// KindConflict means the write collides with existing state
	// (already adopted, duplicate request).
	KindConflict
	// KindInvalidState means the operation is not valid for the current status.
	KindInvalidState
	// KindInvalidInput means a field is malformed or out of range.
	KindInvalidInput
	// KindUnavailable marks transient store failures the caller may retry.
	KindUnavailable
)

var kindNames = [...]string{
	KindNone:         "none",
	KindInternal:     "internal",
	KindNotFound:     "not_found",
	KindForbidden:    "forbidden",
	KindConflict:     "conflict",
	KindInvalidState: "invalid_state",
	KindInvalidInput: "invalid_input",
	KindUnavailable:  "unavailable",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Error is a classified service failure. Code is a stable machine-readable
// identifier; Msg is safe to show to clients.
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind and Code so that wrapped or reworded copies still
// satisfy errors.Is against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Code == e.Code
}

// wrap returns a copy of e carrying cause.
func (e *Error) wrap(cause error) *Error {
	c := *e
	c.Err = cause
	return &c
}

// withMsg returns a copy of e with a more specific message.
func (e *Error) withMsg(msg string) *Error {
	c := *e
	c.Msg = msg
	return &c
}

var (
	ErrAnimalNotFound     = &Error{Kind: KindNotFound, Code: "animal_not_found", Msg: "animal not found"}
	ErrRequestNotFound    = &Error{Kind: KindNotFound, Code: "request_not_found", Msg: "adoption request not found"}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Code: "user_not_found", Msg: "user not found"}
	ErrCategoryNotFound   = &Error{Kind: KindNotFound, Code: "category_not_found", Msg: "category not found"}
	ErrBreedNotFound      = &Error{Kind: KindNotFound, Code: "breed_not_found", Msg: "breed not found"}
	ErrForbidden          = &Error{Kind: KindForbidden, Code: "forbidden", Msg: "not allowed"}
	ErrOwnAnimal          = &Error{Kind: KindForbidden, Code: "own_animal", Msg: "cannot request to adopt your own animal"}
	ErrAlreadyAdopted     = &Error{Kind: KindConflict, Code: "already_adopted", Msg: "animal is already adopted"}
	ErrDuplicateRequest   = &Error{Kind: KindConflict, Code: "duplicate_request", Msg: "an open adoption request already exists for this animal"}
	ErrIdempotencyReuse   = &Error{Kind: KindConflict, Code: "idempotency_key_reused", Msg: "idempotency key was already used for a different animal"}
	ErrDuplicateCatalog   = &Error{Kind: KindConflict, Code: "duplicate_name", Msg: "name already exists"}
	ErrNotPending         = &Error{Kind: KindInvalidState, Code: "not_pending", Msg: "adoption request is no longer pending"}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput, Code: "invalid_input", Msg: "invalid input"}
	ErrNoteRequired       = &Error{Kind: KindInvalidInput, Code: "note_required", Msg: "note must not be blank"}
	ErrNoteTooLong        = &Error{Kind: KindInvalidInput, Code: "note_too_long", Msg: "note is too long"}
	ErrInvalidDecision    = &Error{Kind: KindInvalidInput, Code: "invalid_decision", Msg: "decision must be APPROVED or REJECTED"}
	ErrBreedNotInCategory = &Error{Kind: KindInvalidInput, Code: "breed_category_mismatch", Msg: "breed does not belong to the category"}
	ErrUnavailable        = &Error{Kind: KindUnavailable, Code: "unavailable", Msg: "service temporarily unavailable, retry later"}
)

// invalid builds an InvalidInput error with a field-specific message.
func invalid(msg string) *Error { return ErrInvalidInput.withMsg(msg) }

// KindOf classifies err. Errors from lower layers that carry no Kind are
// mapped where their meaning is unambiguous and reported as internal otherwise.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var e *Error
	switch {
	case errors.As(err, &e):
		return e.Kind
	case errors.Is(err, domain.ErrBirthDateInFuture), errors.Is(err, search.ErrBadSort):
		return KindInvalidInput
	case errors.Is(err, repo.ErrTransient), errors.Is(err, context.DeadlineExceeded):
		return KindUnavailable
	}
	return KindInternal
}

// storeErr turns a classified repo failure into a service error. notFound
// is used for missing rows; duplicate violations are left to the caller.
func storeErr(err error, notFound *Error) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && errors.Is(err, repo.ErrNotFound):
		return notFound
	case errors.Is(err, repo.ErrTransient):
		return ErrUnavailable.wrap(err)
	}
	return err
}
