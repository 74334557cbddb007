package models

import "time"

// AssociatedRecord is a record keyed by a (vendor, tour) pair.
type AssociatedRecord interface {
	Kind() Kind
	GetID() string
	SetID(id string)
	Pair() (vendorID, tourID string)
	// IsEmpty is true for the placeholder returned when neither source has a record.
	IsEmpty() bool
}

type ContactRecord struct {
	ID        string    `db:"id" json:"id"`
	VendorID  string    `db:"vendor_id" json:"vendor_id" validate:"required"`
	TourID    string    `db:"tour_id" json:"tour_id" validate:"required"`
	Email     string    `db:"email" json:"email" validate:"omitempty,email"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

func (ContactRecord) TableName() string {
	return "contact_records"
}

func (r *ContactRecord) Kind() Kind { return KindContact }
func (r *ContactRecord) GetID() string { return r.ID }
func (r *ContactRecord) SetID(id string) { r.ID = id }
func (r *ContactRecord) Pair() (string, string) { return r.VendorID, r.TourID }
func (r *ContactRecord) IsEmpty() bool { return r.ID == "" }

type CancellationPolicyRecord struct {
	ID                        string    `db:"id" json:"id"`
	VendorID                  string    `db:"vendor_id" json:"vendor_id" validate:"required"`
	TourID                    string    `db:"tour_id" json:"tour_id" validate:"required"`
	CancellationBeforeMinutes int       `db:"cancellation_before_minutes" json:"cancellation_before_minutes" validate:"gte=0"`
	CreatedAt                 time.Time `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt                 time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

func (CancellationPolicyRecord) TableName() string {
	return "cancellation_policies"
}

func (r *CancellationPolicyRecord) Kind() Kind { return KindPolicy }
func (r *CancellationPolicyRecord) GetID() string { return r.ID }
func (r *CancellationPolicyRecord) SetID(id string) { r.ID = id }
func (r *CancellationPolicyRecord) Pair() (string, string) { return r.VendorID, r.TourID }
func (r *CancellationPolicyRecord) IsEmpty() bool { return r.ID == "" }

// EmptyRecord returns the unsaved placeholder for a pair.
func EmptyRecord(kind Kind, vendorID, tourID string) AssociatedRecord {
	if kind == KindPolicy {
		return &CancellationPolicyRecord{VendorID: vendorID, TourID: tourID}
	}
	return &ContactRecord{VendorID: vendorID, TourID: tourID}
}
