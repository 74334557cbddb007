package remote

import (
	"fmt"

	"github.com/Ramsey-B/primrose/pkg/models"
)

// TransportError is any failure to obtain a usable collection from the
// remote API: network, non-2xx status, oversized or undecodable body.
type TransportError struct {
	Kind       models.Kind
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote %s: status %d: %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("remote %s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
