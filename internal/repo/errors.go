package repo

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound so callers can use either sentinel.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique-constraint violation.
var ErrDuplicate = errors.New("duplicate")

// ErrTransient marks store failures that may succeed when retried by the
// caller: serialization failures, deadlocks, lock timeouts, lost connections.
var ErrTransient = errors.New("store temporarily unavailable")

// storeError keeps the driver error reachable through errors.As while
// matching one of the sentinels above through errors.Is.
type storeError struct {
	kind error
	err  error
}

func (e *storeError) Error() string { return e.kind.Error() + ": " + e.err.Error() }

func (e *storeError) Unwrap() []error { return []error{e.kind, e.err} }

// Classify maps driver errors onto ErrNotFound, ErrDuplicate or
// ErrTransient. Other errors, and nil, are returned unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDuplicate), errors.Is(err, ErrTransient):
		return err
	case IsDuplicate(err):
		return &storeError{kind: ErrDuplicate, err: err}
	case IsTransient(err):
		return &storeError{kind: ErrTransient, err: err}
	}
	return err
}

// IsDuplicate detects unique-constraint violations across drivers, including
// those that do not map to gorm.ErrDuplicatedKey.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicate) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}

// IsTransient reports whether err is worth retrying by the caller.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "40"): // serialization_failure, deadlock_detected
			return true
		case strings.HasPrefix(pgErr.Code, "08"): // connection exceptions
			return true
		case strings.HasPrefix(pgErr.Code, "53"): // insufficient resources
			return true
		case pgErr.Code == "55P03", pgErr.Code == "57P01": // lock_not_available, admin_shutdown
			return true
		}
		return false
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "database is locked") ||
		strings.Contains(low, "database table is locked") ||
		strings.Contains(low, "sqlite_busy") ||
		strings.Contains(low, "connection refused")
}
