// Package notices keeps recoverable errors so the presentation layer can
// list, dismiss and retry them after the response that reported them.
package notices

import (
	"context"
	"errors"

	"github.com/Ramsey-B/primrose/pkg/models"
)

// ErrNotFound is returned when no notice has the requested token.
var ErrNotFound = errors.New("notice not found")

// Board stores notices keyed by their retry token.
type Board interface {
	Record(ctx context.Context, notice models.RecoverableError) error
	// List returns notices oldest first.
	List(ctx context.Context) ([]models.RecoverableError, error)
	Get(ctx context.Context, token string) (*models.RecoverableError, error)
	// Dismiss removes a notice. Dismissing an unknown token returns ErrNotFound.
	Dismiss(ctx context.Context, token string) error
}
