package reconciler

import (
	"context"
	"math"
	"strings"

	"github.com/Ramsey-B/primrose/pkg/identifiers"
	"github.com/Ramsey-B/primrose/pkg/metrics"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/remote"
	"github.com/Ramsey-B/primrose/pkg/tracing"
)

// Resolution is the outcome of resolving a pair's associated record.
type Resolution struct {
	Record models.AssociatedRecord
	Source models.Source
	// Level is the comparison level that matched the remote record.
	Level identifiers.Level
	Error *models.RecoverableError
}

// ResolveAssociatedRecord returns the contact or policy record for a pair.
// A remote match is written through to the store. Without one the stored
// record is returned, and failing that an unsaved empty record. A failed
// remote fetch is reported as one recoverable error either way.
func (r *Reconciler) ResolveAssociatedRecord(ctx context.Context, kind models.Kind, vendorID, tourID string) (Resolution, error) {
	vendorID, tourID = strings.TrimSpace(vendorID), strings.TrimSpace(tourID)
	if err := validateAssociatedQuery(kind, vendorID, tourID); err != nil {
		return Resolution{}, err
	}

	ctx, span := tracing.StartSpan(ctx, "reconciler.ResolveAssociatedRecord", tracing.PairAttrs(string(kind), vendorID, tourID)...)
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"kind":      kind,
		"vendor_id": vendorID,
		"tour_id":   tourID,
	})

	raw, fetchErr := r.remote.FetchAll(ctx, kind)
	if fetchErr == nil {
		if match, level := findPair(raw, vendorID, tourID); match != nil {
			metrics.RecordMatch(string(kind), level.String())
			rec := r.toAssociated(kind, match, vendorID, tourID)
			rec.SetID(r.storageID(ctx, kind, vendorID, tourID, match.String(remote.FieldID)))

			stored, err := r.store.UpsertAssociated(ctx, rec)
			if err != nil {
				log.WithError(newStoreError("upsert", kind, err)).Warn("failed to persist remote record")
				return Resolution{Record: rec, Source: models.SourceRemote, Level: level}, nil
			}
			return Resolution{Record: stored, Source: models.SourceRemote, Level: level}, nil
		}
		metrics.RecordMatch(string(kind), identifiers.LevelNone.String())
		log.Debug("no remote record for pair")
	} else {
		log.WithError(fetchErr).Warn("remote fetch failed, falling back to store")
	}

	stored, err := r.store.FindAssociated(ctx, kind, vendorID, tourID)
	if err != nil {
		log.WithError(newStoreError("find", kind, err)).Warn("store lookup failed")
		stored = nil
	}
	res := Resolution{Record: stored, Source: models.SourceStore}
	if stored == nil {
		res = Resolution{Record: models.EmptyRecord(kind, vendorID, tourID), Source: models.SourceEmpty}
	}
	if fetchErr != nil {
		msg := "failed to load " + string(kind) + " record"
		if stored != nil {
			msg = msgRecordFromStore
		}
		res.Error = r.recoverable(kind, msg)
		res.Error.VendorID = vendorID
		res.Error.TourID = tourID
	}
	return res, nil
}

// SaveAssociatedRecord stores rec as the only record of its kind for its
// pair, reusing the id of an existing record.
func (r *Reconciler) SaveAssociatedRecord(ctx context.Context, rec models.AssociatedRecord) (models.AssociatedRecord, error) {
	if err := normalizeForSave(rec); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "reconciler.SaveAssociatedRecord")
	defer span.End()

	kind := rec.Kind()
	vendorID, tourID := rec.Pair()
	span.SetAttributes(tracing.PairAttrs(string(kind), vendorID, tourID)...)

	stored, err := r.upsertForPair(ctx, rec)
	if err != nil {
		var storeErr *StoreError
		if asStoreError(err, &storeErr) && storeErr.Conflict {
			// Another writer created the pair's record first; take its id.
			r.logger.WithContext(ctx).WithFields(map[string]any{
				"kind":      kind,
				"vendor_id": vendorID,
				"tour_id":   tourID,
			}).Info("pair conflict on save, retrying as update")
			stored, err = r.upsertForPair(ctx, rec)
		}
		if err != nil {
			tracing.RecordError(span, err)
			return nil, err
		}
	}

	if err := r.emitter.EmitRecordSaved(ctx, stored); err != nil {
		r.logger.WithContext(ctx).WithError(err).Warn("failed to publish save event")
	}

	return stored, nil
}

func (r *Reconciler) upsertForPair(ctx context.Context, rec models.AssociatedRecord) (models.AssociatedRecord, error) {
	kind := rec.Kind()
	vendorID, tourID := rec.Pair()

	existing, err := r.store.FindAssociated(ctx, kind, vendorID, tourID)
	if err != nil {
		return nil, newStoreError("find", kind, err)
	}

	if existing != nil {
		rec.SetID(existing.GetID())
	} else {
		rec.SetID(identifiers.StorageID(storagePrefix(kind), vendorID, tourID, r.now()))
	}

	stored, err := r.store.UpsertAssociated(ctx, rec)
	if err != nil {
		return nil, newStoreError("upsert", kind, err)
	}
	return stored, nil
}

// storageID picks the id for a remote match: the stored pair's id, then a
// raw id that already carries the kind prefix and is not held by another
// pair, then a new one.
func (r *Reconciler) storageID(ctx context.Context, kind models.Kind, vendorID, tourID, rawID string) string {
	log := r.logger.WithContext(ctx)
	existing, err := r.store.FindAssociated(ctx, kind, vendorID, tourID)
	if err != nil {
		log.WithError(newStoreError("find", kind, err)).Warn("store lookup failed while deriving id")
	}
	if err == nil && existing != nil {
		return existing.GetID()
	}

	prefix := storagePrefix(kind)
	if identifiers.HasPrefix(prefix, rawID) && r.idAvailable(ctx, kind, rawID, vendorID, tourID) {
		return rawID
	}
	return identifiers.StorageID(prefix, vendorID, tourID, r.now())
}

// idAvailable reports whether id is unused or already belongs to the pair.
func (r *Reconciler) idAvailable(ctx context.Context, kind models.Kind, id, vendorID, tourID string) bool {
	owner, err := r.store.GetAssociated(ctx, kind, id)
	if err != nil {
		r.logger.WithContext(ctx).WithError(newStoreError("get", kind, err)).Warn("store lookup failed while checking raw id")
		return false
	}
	if owner == nil {
		return true
	}
	ownerVendor, ownerTour := owner.Pair()
	return ownerVendor == vendorID && ownerTour == tourID
}

func validateAssociatedQuery(kind models.Kind, vendorID, tourID string) error {
	if !kind.IsAssociated() {
		return &ValidationError{Field: "kind", Message: "must be contact or policy"}
	}
	if vendorID == "" {
		return &ValidationError{Field: "vendor_id", Message: "is required"}
	}
	if tourID == "" {
		return &ValidationError{Field: "tour_id", Message: "is required"}
	}
	return nil
}

func normalizeForSave(rec models.AssociatedRecord) error {
	switch v := rec.(type) {
	case *models.ContactRecord:
		v.VendorID, v.TourID = strings.TrimSpace(v.VendorID), strings.TrimSpace(v.TourID)
		v.Email = identifiers.NormalizeEmail(v.Email)
		v.Phone = identifiers.NormalizePhone(v.Phone)
	case *models.CancellationPolicyRecord:
		v.VendorID, v.TourID = strings.TrimSpace(v.VendorID), strings.TrimSpace(v.TourID)
		if v.CancellationBeforeMinutes < 0 {
			return &ValidationError{Field: "cancellation_before_minutes", Message: "must not be negative"}
		}
		if v.CancellationBeforeMinutes > math.MaxInt32 {
			return &ValidationError{Field: "cancellation_before_minutes", Message: "is too large"}
		}
	case nil:
		return &ValidationError{Message: "record is required"}
	default:
		return &ValidationError{Field: "kind", Message: "must be contact or policy"}
	}

	vendorID, tourID := rec.Pair()
	return validateAssociatedQuery(rec.Kind(), vendorID, tourID)
}
