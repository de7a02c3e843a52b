// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These symbolic constants are mapped to HTTP responses via the `fail()`
// helper in this package. They give clients a stable, machine-readable
// taxonomy that supplements the human-readable message.
//
// Conventions:
//   - Codes are lowercase snake_case.
//   - Generic codes (bad_request, not_found) mirror common HTTP status
//     semantics.
//   - Read endpoints never map failures to 5xx codes: total data-source
//     failure degrades to the static fallback payload with a 200 and
//     X-DB-Source: fallback instead.

package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeCreateFailed = "create_failed"
	ErrCodeSeedFailed   = "seed_failed"
)
