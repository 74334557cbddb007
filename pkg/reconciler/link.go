package reconciler

import (
	"context"
	"errors"
	"strings"

	"github.com/Ramsey-B/primrose/pkg/metrics"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/tracing"
)

const kindVendorTour models.Kind = "vendor_tour"

// LinkVendorTour records that a vendor offers a tour. Linking an existing
// pair is not an error and reports AlreadyExists.
func (r *Reconciler) LinkVendorTour(ctx context.Context, vendorID, tourID string) (models.LinkOutcome, error) {
	vendorID, tourID = strings.TrimSpace(vendorID), strings.TrimSpace(tourID)
	if vendorID == "" {
		return "", &ValidationError{Field: "vendor_id", Message: "is required"}
	}
	if tourID == "" {
		return "", &ValidationError{Field: "tour_id", Message: "is required"}
	}

	ctx, span := tracing.StartSpan(ctx, "reconciler.LinkVendorTour", tracing.PairAttrs(string(kindVendorTour), vendorID, tourID)...)
	defer span.End()

	existing, err := r.store.FindLink(ctx, vendorID, tourID)
	if err != nil {
		tracing.RecordError(span, err)
		return "", newStoreError("find", kindVendorTour, err)
	}
	if existing != nil {
		metrics.RecordLinkOutcome(string(models.LinkAlreadyExists))
		return models.LinkAlreadyExists, nil
	}

	outcome, err := r.store.InsertLink(ctx, vendorID, tourID)
	if err != nil {
		storeErr := newStoreError("insert", kindVendorTour, err)
		if !storeErr.Conflict {
			tracing.RecordError(span, err)
			return "", storeErr
		}
		outcome = models.LinkAlreadyExists
	}
	metrics.RecordLinkOutcome(string(outcome))

	if outcome == models.LinkCreated {
		link := models.VendorTourLink{VendorID: vendorID, TourID: tourID}
		if stored, err := r.store.FindLink(ctx, vendorID, tourID); err == nil && stored != nil {
			link = *stored
		}
		if err := r.emitter.EmitVendorTourLinked(ctx, link); err != nil {
			r.logger.WithContext(ctx).WithError(err).Warn("failed to publish link event")
		}
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"vendor_id": vendorID,
		"tour_id":   tourID,
		"outcome":   outcome,
	}).Info("vendor tour link processed")

	return outcome, nil
}

// ListingActions returns the actions the presentation layer may offer for a
// listing. A multi-variant listing must be linked to its tour before its
// contact and policy can be fetched.
func (r *Reconciler) ListingActions(ctx context.Context, listingID string) ([]models.Action, error) {
	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		return nil, &ValidationError{Field: "listing_id", Message: "is required"}
	}

	ctx, span := tracing.StartSpan(ctx, "reconciler.ListingActions")
	defer span.End()

	listing, err := r.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, newStoreError("get", models.KindListings, err)
	}
	if listing == nil {
		return nil, &NotFoundError{Kind: models.KindListings, ID: listingID}
	}

	fetch := []models.Action{models.ActionFetchContact, models.ActionFetchPolicy}
	if listing.ListingKind != models.ListingKindMultiVariant {
		return fetch, nil
	}

	link, err := r.store.FindLink(ctx, listing.VendorID, listing.TourID)
	if err != nil {
		return nil, newStoreError("find", kindVendorTour, err)
	}
	if link == nil {
		return []models.Action{models.ActionLinkVendorTour}, nil
	}
	return fetch, nil
}

func asStoreError(err error, target **StoreError) bool {
	return errors.As(err, target)
}
