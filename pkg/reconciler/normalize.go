package reconciler

import (
	"math"
	"strconv"
	"strings"

	"github.com/Gobusters/ectolinq"

	"github.com/Ramsey-B/primrose/pkg/identifiers"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/remote"
)

func (r *Reconciler) toListing(raw remote.RawRecord) models.Listing {
	rawKind := raw.String(remote.FieldListingType)
	kind, ok := models.ParseListingKind(rawKind)
	if !ok {
		r.logger.WithFields(map[string]any{
			"listing_id":   raw.String(remote.FieldID),
			"listing_type": rawKind,
		}).Warn("unknown listing type, treating as new listing")
	}

	return models.Listing{
		ID:          raw.String(remote.FieldID),
		ProductName: raw.String(remote.FieldProductName),
		VendorID:    raw.String(remote.FieldVendorID),
		TourID:      raw.String(remote.FieldTourID),
		ListingKind: kind,
		Status:      raw.OptionalString(remote.FieldStatus),
	}
}

func toVendor(raw remote.RawRecord) models.Vendor {
	return models.Vendor{
		ID:   raw.String(remote.FieldID),
		Name: raw.String(remote.FieldName),
	}
}

func toTour(raw remote.RawRecord) models.Tour {
	return models.Tour{
		ID:       raw.String(remote.FieldID),
		Name:     raw.String(remote.FieldName),
		Location: raw.OptionalString(remote.FieldLocation),
		VendorID: raw.OptionalString(remote.FieldVendorID),
	}
}

// toAssociated builds a record of kind from raw, keyed by the caller's pair.
func (r *Reconciler) toAssociated(kind models.Kind, raw remote.RawRecord, vendorID, tourID string) models.AssociatedRecord {
	if kind == models.KindPolicy {
		return &models.CancellationPolicyRecord{
			VendorID:                  vendorID,
			TourID:                    tourID,
			CancellationBeforeMinutes: r.minutes(raw),
		}
	}
	return &models.ContactRecord{
		VendorID: vendorID,
		TourID:   tourID,
		Email:    identifiers.NormalizeEmail(raw.String(remote.FieldEmail)),
		Phone:    identifiers.NormalizePhone(raw.String(remote.FieldPhone)),
	}
}

// minutes reads the cancellation window. Values that are negative, unparsable
// or beyond an int32 column become 0.
func (r *Reconciler) minutes(raw remote.RawRecord) int {
	s := raw.String(remote.FieldCancellationBeforeMinutes)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		r.logger.WithFields(map[string]any{
			"record_id": raw.String(remote.FieldID),
			"minutes":   s,
		}).Warn("cancellation window out of range, using 0")
		return 0
	}
	return int(f)
}

// dedupe drops records without an id and keeps the last record for each id
// at the position of its first occurrence.
func dedupe[T any](records []T, id func(T) string) []T {
	index := make(map[string]int, len(records))
	out := make([]T, 0, len(records))
	for _, rec := range records {
		key := id(rec)
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			out[i] = rec
			continue
		}
		index[key] = len(out)
		out = append(out, rec)
	}
	return out
}

func normalizeListings(r *Reconciler, raw []remote.RawRecord) []models.Listing {
	return dedupe(ectolinq.Map(raw, r.toListing), func(l models.Listing) string { return l.ID })
}

func normalizeVendors(raw []remote.RawRecord) []models.Vendor {
	return dedupe(ectolinq.Map(raw, toVendor), func(v models.Vendor) string { return v.ID })
}

func normalizeTours(raw []remote.RawRecord) []models.Tour {
	return dedupe(ectolinq.Map(raw, toTour), func(t models.Tour) string { return t.ID })
}

// findPair locates the record for a pair. Each pass widens the accepted
// comparison level and the first match in the earliest pass wins.
func findPair(records []remote.RawRecord, vendorID, tourID string) (remote.RawRecord, identifiers.Level) {
	for _, level := range identifiers.Levels {
		for _, rec := range records {
			v, okV := rec.Get(remote.FieldVendorID)
			t, okT := rec.Get(remote.FieldTourID)
			if !okV || !okT {
				continue
			}
			if identifiers.EqualAt(v, vendorID, level) && identifiers.EqualAt(t, tourID, level) {
				return rec, level
			}
		}
	}
	return nil, identifiers.LevelNone
}

func storagePrefix(kind models.Kind) string {
	return strings.ToLower(string(kind))
}
