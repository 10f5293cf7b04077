package handlers

// Transport-level error codes. Business failures (already_adopted,
// duplicate_request, not_pending, ...) carry the code of the service error
// instead; see failErr. Codes are stable and snake_case so clients can
// branch on them.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"
	ErrCodeUnavailable      = "unavailable"

	// Written by middleware, listed so the taxonomy is in one place.
	ErrCodeBadIdentity       = "bad_identity"
	ErrCodeBadIdempotencyKey = "bad_idempotency_key"
	ErrCodeRateLimited       = "rate_limited"
)
