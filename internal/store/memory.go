package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/primrose/internal/repositories"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/reconciler"
)

type pairKey struct {
	kind     models.Kind
	vendorID string
	tourID   string
}

// Memory is a mutex-guarded in-process store with the same uniqueness
// rules as the Postgres schema.
type Memory struct {
	mu       sync.RWMutex
	listings map[string]models.Listing
	vendors  map[string]models.Vendor
	tours    map[string]models.Tour
	records  map[string]models.AssociatedRecord
	pairs    map[pairKey]string
	links    map[pairKey]models.VendorTourLink
	now      func() time.Time
}

var _ reconciler.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		listings: make(map[string]models.Listing),
		vendors:  make(map[string]models.Vendor),
		tours:    make(map[string]models.Tour),
		records:  make(map[string]models.AssociatedRecord),
		pairs:    make(map[pairKey]string),
		links:    make(map[pairKey]models.VendorTourLink),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) ListListings(_ context.Context) ([]models.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.listings, func(l models.Listing) string { return l.ID }), nil
}

func (m *Memory) ListVendors(_ context.Context) ([]models.Vendor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.vendors, func(v models.Vendor) string { return v.ID }), nil
}

func (m *Memory) ListTours(_ context.Context) ([]models.Tour, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.tours, func(t models.Tour) string { return t.ID }), nil
}

func (m *Memory) GetListing(_ context.Context, id string) (*models.Listing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (m *Memory) UpsertListing(_ context.Context, l models.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	l.CreatedAt, l.UpdatedAt = now, now
	if existing, ok := m.listings[l.ID]; ok {
		l.CreatedAt = existing.CreatedAt
	}
	m.listings[l.ID] = l
	return nil
}

func (m *Memory) UpsertVendor(_ context.Context, v models.Vendor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	v.CreatedAt, v.UpdatedAt = now, now
	if existing, ok := m.vendors[v.ID]; ok {
		v.CreatedAt = existing.CreatedAt
	}
	m.vendors[v.ID] = v
	return nil
}

func (m *Memory) UpsertTour(_ context.Context, t models.Tour) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	t.CreatedAt, t.UpdatedAt = now, now
	if existing, ok := m.tours[t.ID]; ok {
		t.CreatedAt = existing.CreatedAt
	}
	m.tours[t.ID] = t
	return nil
}

func (m *Memory) FindAssociated(_ context.Context, kind models.Kind, vendorID, tourID string) (models.AssociatedRecord, error) {
	if !kind.IsAssociated() {
		return nil, fmt.Errorf("kind %q has no associated records", kind)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.pairs[pairKey{kind, vendorID, tourID}]
	if !ok {
		return nil, nil
	}
	return clone(m.records[recordKey(kind, id)]), nil
}

func (m *Memory) GetAssociated(_ context.Context, kind models.Kind, id string) (models.AssociatedRecord, error) {
	if !kind.IsAssociated() {
		return nil, fmt.Errorf("kind %q has no associated records", kind)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[recordKey(kind, id)]
	if !ok {
		return nil, nil
	}
	return clone(rec), nil
}

// UpsertAssociated writes rec by id. A different id for an already stored
// pair is rejected with a conflict, matching the unique pair index.
func (m *Memory) UpsertAssociated(_ context.Context, rec models.AssociatedRecord) (models.AssociatedRecord, error) {
	if rec == nil || rec.GetID() == "" {
		return nil, fmt.Errorf("record id is required")
	}
	kind := rec.Kind()
	vendorID, tourID := rec.Pair()
	pair := pairKey{kind, vendorID, tourID}

	m.mu.Lock()
	defer m.mu.Unlock()

	if owner, ok := m.pairs[pair]; ok && owner != rec.GetID() {
		return nil, repositories.Conflict("a record already exists for this vendor and tour")
	}

	key := recordKey(kind, rec.GetID())
	stored := clone(rec)
	now := m.now()
	createdAt := now
	if existing, ok := m.records[key]; ok {
		createdAt = timestamps(existing)
		// The id may move to a new pair on update.
		oldVendor, oldTour := existing.Pair()
		delete(m.pairs, pairKey{kind, oldVendor, oldTour})
	}
	setTimestamps(stored, createdAt, now)

	m.records[key] = stored
	m.pairs[pair] = rec.GetID()
	return clone(stored), nil
}

func (m *Memory) FindLink(_ context.Context, vendorID, tourID string) (*models.VendorTourLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	link, ok := m.links[pairKey{"", vendorID, tourID}]
	if !ok {
		return nil, nil
	}
	return &link, nil
}

func (m *Memory) InsertLink(_ context.Context, vendorID, tourID string) (models.LinkOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{"", vendorID, tourID}
	if _, ok := m.links[key]; ok {
		return models.LinkAlreadyExists, nil
	}
	m.links[key] = models.VendorTourLink{
		ID:        uuid.New().String(),
		VendorID:  vendorID,
		TourID:    tourID,
		CreatedAt: m.now(),
	}
	return models.LinkCreated, nil
}

// LinkCount returns the number of stored links.
func (m *Memory) LinkCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.links)
}

// RecordCount returns the number of stored records of kind.
func (m *Memory) RecordCount(kind models.Kind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, rec := range m.records {
		if rec.Kind() == kind {
			n++
		}
	}
	return n
}

func recordKey(kind models.Kind, id string) string {
	return string(kind) + "/" + id
}

func clone(rec models.AssociatedRecord) models.AssociatedRecord {
	switch v := rec.(type) {
	case *models.ContactRecord:
		c := *v
		return &c
	case *models.CancellationPolicyRecord:
		c := *v
		return &c
	}
	return nil
}

func timestamps(rec models.AssociatedRecord) time.Time {
	switch v := rec.(type) {
	case *models.ContactRecord:
		return v.CreatedAt
	case *models.CancellationPolicyRecord:
		return v.CreatedAt
	}
	return time.Time{}
}

func setTimestamps(rec models.AssociatedRecord, createdAt, updatedAt time.Time) {
	switch v := rec.(type) {
	case *models.ContactRecord:
		v.CreatedAt, v.UpdatedAt = createdAt, updatedAt
	case *models.CancellationPolicyRecord:
		v.CreatedAt, v.UpdatedAt = createdAt, updatedAt
	}
}

func sortedValues[T any](m map[string]T, id func(T) string) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}
