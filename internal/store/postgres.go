// Package store implements the persistent record store used by the reconciler.
package store

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/primrose/internal/repositories/contact"
	"github.com/Ramsey-B/primrose/internal/repositories/listing"
	"github.com/Ramsey-B/primrose/internal/repositories/policy"
	"github.com/Ramsey-B/primrose/internal/repositories/tour"
	"github.com/Ramsey-B/primrose/internal/repositories/vendor"
	"github.com/Ramsey-B/primrose/internal/repositories/vendortour"
	"github.com/Ramsey-B/primrose/pkg/database"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/reconciler"
)

// Postgres is the store backed by the per-table repositories.
type Postgres struct {
	listings    *listing.Repository
	vendors     *vendor.Repository
	tours       *tour.Repository
	contacts    *contact.Repository
	policies    *policy.Repository
	vendorTours *vendortour.Repository
}

var _ reconciler.Store = (*Postgres)(nil)

func NewPostgres(db database.DB, logger ectologger.Logger) *Postgres {
	return &Postgres{
		listings:    listing.NewRepository(db, logger),
		vendors:     vendor.NewRepository(db, logger),
		tours:       tour.NewRepository(db, logger),
		contacts:    contact.NewRepository(db, logger),
		policies:    policy.NewRepository(db, logger),
		vendorTours: vendortour.NewRepository(db, logger),
	}
}

func (s *Postgres) ListListings(ctx context.Context) ([]models.Listing, error) {
	return s.listings.List(ctx)
}

func (s *Postgres) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	return s.vendors.List(ctx)
}

func (s *Postgres) ListTours(ctx context.Context) ([]models.Tour, error) {
	return s.tours.List(ctx)
}

func (s *Postgres) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	return s.listings.Get(ctx, id)
}

func (s *Postgres) UpsertListing(ctx context.Context, l models.Listing) error {
	return s.listings.Upsert(ctx, l)
}

func (s *Postgres) UpsertVendor(ctx context.Context, v models.Vendor) error {
	return s.vendors.Upsert(ctx, v)
}

func (s *Postgres) UpsertTour(ctx context.Context, t models.Tour) error {
	return s.tours.Upsert(ctx, t)
}

func (s *Postgres) FindAssociated(ctx context.Context, kind models.Kind, vendorID, tourID string) (models.AssociatedRecord, error) {
	switch kind {
	case models.KindContact:
		rec, err := s.contacts.FindByPair(ctx, vendorID, tourID)
		if err != nil || rec == nil {
			return nil, err
		}
		return rec, nil
	case models.KindPolicy:
		rec, err := s.policies.FindByPair(ctx, vendorID, tourID)
		if err != nil || rec == nil {
			return nil, err
		}
		return rec, nil
	}
	return nil, fmt.Errorf("kind %q has no associated records", kind)
}

func (s *Postgres) GetAssociated(ctx context.Context, kind models.Kind, id string) (models.AssociatedRecord, error) {
	switch kind {
	case models.KindContact:
		rec, err := s.contacts.FindByID(ctx, id)
		if err != nil || rec == nil {
			return nil, err
		}
		return rec, nil
	case models.KindPolicy:
		rec, err := s.policies.FindByID(ctx, id)
		if err != nil || rec == nil {
			return nil, err
		}
		return rec, nil
	}
	return nil, fmt.Errorf("kind %q has no associated records", kind)
}

func (s *Postgres) UpsertAssociated(ctx context.Context, rec models.AssociatedRecord) (models.AssociatedRecord, error) {
	switch v := rec.(type) {
	case *models.ContactRecord:
		stored, err := s.contacts.Upsert(ctx, v)
		if err != nil {
			return nil, err
		}
		return stored, nil
	case *models.CancellationPolicyRecord:
		stored, err := s.policies.Upsert(ctx, v)
		if err != nil {
			return nil, err
		}
		return stored, nil
	}
	return nil, fmt.Errorf("unsupported record type %T", rec)
}

func (s *Postgres) FindLink(ctx context.Context, vendorID, tourID string) (*models.VendorTourLink, error) {
	return s.vendorTours.Find(ctx, vendorID, tourID)
}

func (s *Postgres) InsertLink(ctx context.Context, vendorID, tourID string) (models.LinkOutcome, error) {
	return s.vendorTours.Insert(ctx, vendorID, tourID)
}
