package models

import (
	"strings"
	"time"
)

type ListingKind string

const (
	ListingKindNew          ListingKind = "new_listing"
	ListingKindMultiVariant ListingKind = "multi_variant"
)

// ParseListingKind folds case, spaces, hyphens and underscores, so
// "NewListing", "new-listing" and "NEW LISTING" all parse.
func ParseListingKind(raw string) (ListingKind, bool) {
	folded := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(raw)))
	switch folded {
	case "newlisting":
		return ListingKindNew, true
	case "multivariant":
		return ListingKindMultiVariant, true
	}
	return ListingKindNew, false
}

// Listing is a sellable ticket product for a tour.
type Listing struct {
	ID          string      `db:"id" json:"id"`
	ProductName string      `db:"product_name" json:"product_name"`
	VendorID    string      `db:"vendor_id" json:"vendor_id"`
	TourID      string      `db:"tour_id" json:"tour_id"`
	ListingKind ListingKind `db:"listing_kind" json:"listing_kind"`
	Status      *string     `db:"status" json:"status,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"-"`
	UpdatedAt   time.Time   `db:"updated_at" json:"-"`
}

func (Listing) TableName() string {
	return "listings"
}

type Vendor struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

func (Vendor) TableName() string {
	return "vendors"
}

type Tour struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Location  *string   `db:"location" json:"location,omitempty"`
	VendorID  *string   `db:"vendor_id" json:"vendor_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

func (Tour) TableName() string {
	return "tours"
}

// VendorTourLink marks a vendor as offering a tour. Links are never mutated.
type VendorTourLink struct {
	ID        string    `db:"id" json:"id"`
	VendorID  string    `db:"vendor_id" json:"vendor_id"`
	TourID    string    `db:"tour_id" json:"tour_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (VendorTourLink) TableName() string {
	return "vendor_tours"
}

type LinkOutcome string

const (
	LinkCreated       LinkOutcome = "created"
	LinkAlreadyExists LinkOutcome = "already_exists"
)

// Action is an operation the presentation layer may offer for a listing.
type Action string

const (
	ActionLinkVendorTour Action = "link_vendor_tour"
	ActionFetchContact   Action = "fetch_contact"
	ActionFetchPolicy    Action = "fetch_policy"
)
