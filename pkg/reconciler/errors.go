package reconciler

import (
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"

	"github.com/Ramsey-B/primrose/pkg/models"
)

// StoreError wraps a failure of the persistent store.
type StoreError struct {
	Op   string
	Kind models.Kind
	Err  error
	// Conflict is set when the store rejected the write on a uniqueness rule.
	Conflict bool
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func newStoreError(op string, kind models.Kind, err error) *StoreError {
	return &StoreError{
		Op:       op,
		Kind:     kind,
		Err:      err,
		Conflict: httperror.IsHTTPError(err) && httperror.GetStatusCode(err) == http.StatusConflict,
	}
}

// ValidationError reports unusable caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError is returned by lookups that require an existing record.
type NotFoundError struct {
	Kind models.Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}
