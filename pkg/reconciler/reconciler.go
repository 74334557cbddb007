// Package reconciler merges records from the remote API with the local store.
// The remote source is authoritative when it answers; the store is the
// fallback and is kept current by writing remote records through.
package reconciler

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/remote"
)

// RemoteSource fetches whole collections. Failures are *remote.TransportError.
type RemoteSource interface {
	FetchAll(ctx context.Context, kind models.Kind) ([]remote.RawRecord, error)
}

// Store is the persistent store. Lookups return nil with no error when the
// record does not exist.
type Store interface {
	ListListings(ctx context.Context) ([]models.Listing, error)
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	ListTours(ctx context.Context) ([]models.Tour, error)
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	UpsertListing(ctx context.Context, listing models.Listing) error
	UpsertVendor(ctx context.Context, vendor models.Vendor) error
	UpsertTour(ctx context.Context, tour models.Tour) error

	FindAssociated(ctx context.Context, kind models.Kind, vendorID, tourID string) (models.AssociatedRecord, error)
	GetAssociated(ctx context.Context, kind models.Kind, id string) (models.AssociatedRecord, error)
	UpsertAssociated(ctx context.Context, rec models.AssociatedRecord) (models.AssociatedRecord, error)

	FindLink(ctx context.Context, vendorID, tourID string) (*models.VendorTourLink, error)
	InsertLink(ctx context.Context, vendorID, tourID string) (models.LinkOutcome, error)
}

// Emitter publishes change events. Errors are logged and never fail the caller.
type Emitter interface {
	EmitRecordSaved(ctx context.Context, rec models.AssociatedRecord) error
	EmitVendorTourLinked(ctx context.Context, link models.VendorTourLink) error
}

type Reconciler struct {
	remote  RemoteSource
	store   Store
	emitter Emitter
	logger  ectologger.Logger
	now     func() time.Time
}

type Option func(*Reconciler)

// WithClock overrides the time source used for storage ids and retry tokens.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

func New(remote RemoteSource, store Store, emitter Emitter, logger ectologger.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		remote:  remote,
		store:   store,
		emitter: emitter,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) recoverable(kind models.Kind, message string) *models.RecoverableError {
	return &models.RecoverableError{
		Kind:    kind,
		Message: message,
		Token:   models.NewRetryToken(kind, r.now().UTC()),
	}
}
