// Package repositories holds helpers shared by the per-table repositories.
package repositories

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"

	"github.com/Ramsey-B/primrose/pkg/database"
	"github.com/Ramsey-B/primrose/pkg/metrics"
)

// NotFound returns a 404 HTTP error with a descriptive message
func NotFound(format string, args ...any) error {
	return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf(format, args...))
}

// Conflict returns a 409 HTTP error
func Conflict(message string) error {
	return httperror.NewHTTPError(http.StatusConflict, message)
}

// Internal returns a 500 HTTP error
func Internal(message string) error {
	return httperror.NewHTTPError(http.StatusInternalServerError, message)
}

// WriteError maps a failed write to a 409 for unique violations and 500 otherwise.
func WriteError(err error, message string) error {
	if database.IsUniqueViolation(err) {
		return Conflict(message + ": record already exists")
	}
	return Internal(message)
}

// Observe records the duration of a query started at start.
func Observe(operation string, start time.Time) {
	metrics.ObserveQuery(operation, time.Since(start).Seconds())
}
