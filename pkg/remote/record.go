package remote

import (
	"github.com/Ramsey-B/primrose/pkg/identifiers"
)

// RawRecord is one decoded remote object. Numbers are json.Number.
type RawRecord map[string]any

// Field names accepted from the remote API, camelCase first.
var (
	FieldID                        = []string{"id"}
	FieldVendorID                  = []string{"vendorId", "vendor_id"}
	FieldTourID                    = []string{"tourId", "tour_id"}
	FieldProductName               = []string{"productName", "product_name"}
	FieldListingType               = []string{"listingType", "listing_type"}
	FieldStatus                    = []string{"status"}
	FieldName                      = []string{"name"}
	FieldLocation                  = []string{"location"}
	FieldEmail                     = []string{"email"}
	FieldPhone                     = []string{"phone"}
	FieldCancellationBeforeMinutes = []string{"cancellationBeforeMinutes", "cancellation_before_minutes"}
)

// Get returns the first present, non-null value among names.
func (r RawRecord) Get(names []string) (any, bool) {
	for _, name := range names {
		if v, ok := r[name]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// String returns the canonical string form of the first present field.
func (r RawRecord) String(names []string) string {
	v, ok := r.Get(names)
	if !ok {
		return ""
	}
	return identifiers.CanonicalString(v)
}

// OptionalString is String but nil when the field is absent or blank.
func (r RawRecord) OptionalString(names []string) *string {
	s := r.String(names)
	if s == "" {
		return nil
	}
	return &s
}
