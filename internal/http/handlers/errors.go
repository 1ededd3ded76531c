package handlers

// Error codes carried in ErrorResponse.Code. They are stable; clients
// branch on them, never on Message. Middleware writes a few of its own
// (bad_idempotency_key, too_many_requests, internal_error on panic).
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeTooLarge         = "payload_too_large"
	ErrCodeInternal         = "internal_error"

	// The blob store or database refused an operation.
	ErrCodeStorage = "storage_failed"
)
