// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all
// endpoints: the structured error envelope, the data-source response
// header, and helpers for common patterns. The goal is uniform,
// machine-friendly responses for both success and failure cases.
//
// Conventions:
//   - All error responses return an ErrorResponse with a stable `code`.
//   - `fail()` centralizes error logging and formatting; 5xx responses
//     are logged with request context.
//   - Every read endpoint stamps X-DB-Source before writing its body so
//     clients and the access log can see which tier answered.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "article not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/http/middleware"
)

// SourceHeader carries the data tier that produced a read response.
const SourceHeader = "X-DB-Source"

var fallbacksServed = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fallbacks_served_total",
		Help: "Read responses answered by the static fallback payload, by operation.",
	},
	[]string{"operation"},
)

func init() {
	prometheus.MustRegister(fallbacksServed)
}

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code"`
	// Human-readable message (safe to show to users)
	Message string `json:"message"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) call Fail to return consistent
// error envelopes without depending on unexported helpers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// sourced stamps the X-DB-Source header and writes a 200 JSON body.
func sourced(c *gin.Context, src domain.Source, body any) {
	c.Header(SourceHeader, string(src))
	c.JSON(http.StatusOK, body)
}

// degraded serves a static fallback payload for a read whose data
// sources are all unavailable. It counts the substitution, warn-logs the
// underlying failure, and still answers 200 so reads never hard-fail.
func degraded(c *gin.Context, operation string, err error, body any) {
	fallbacksServed.WithLabelValues(operation).Inc()
	middleware.LoggerFrom(c).Warn().
		Err(err).
		Str("operation", operation).
		Msg("serving fallback payload")
	sourced(c, domain.SourceFallback, body)
}
