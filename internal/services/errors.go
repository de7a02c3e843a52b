// Package services implements the application logic for the news read
// and write paths. This file centralizes the service-level error values
// so handlers can map them to HTTP results consistently. Translation to
// status codes and fallback payloads happens at the handler layer.
package services

import "errors"

var (
	// ErrInvalidInput is returned when a write payload fails validation
	// (currently: an empty title). The write performs no side effects.
	ErrInvalidInput = errors.New("invalid input")

	// ErrArticleNotFound indicates that a detail lookup matched no row.
	// Distinct from ErrDataUnavailable: the data path worked, the row
	// does not exist.
	ErrArticleNotFound = errors.New("article not found")

	// ErrDataUnavailable indicates that both the replica and the primary
	// failed. It is never surfaced raw: the handler substitutes the
	// fallback payload and answers 200.
	ErrDataUnavailable = errors.New("data sources unavailable")
)
