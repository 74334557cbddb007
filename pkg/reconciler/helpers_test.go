package reconciler_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/primrose/internal/repositories"
	"github.com/Ramsey-B/primrose/internal/store"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/reconciler"
	"github.com/Ramsey-B/primrose/pkg/remote"
)

var errUnavailable = errors.New("connection refused")

type fakeRemote struct {
	mu      sync.Mutex
	records map[models.Kind][]remote.RawRecord
	failing map[models.Kind]bool
	calls   map[models.Kind]int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		records: map[models.Kind][]remote.RawRecord{},
		failing: map[models.Kind]bool{},
		calls:   map[models.Kind]int{},
	}
}

func (f *fakeRemote) FetchAll(_ context.Context, kind models.Kind) ([]remote.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[kind]++
	if f.failing[kind] {
		return nil, &remote.TransportError{Kind: kind, Err: errUnavailable}
	}
	return f.records[kind], nil
}

// raw decodes a JSON object the way the remote adapter does.
func raw(s string) remote.RawRecord {
	var out map[string]any
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		panic(err)
	}
	return out
}

// faultyStore wraps the memory store and fails selected operations.
type faultyStore struct {
	*store.Memory
	failList   bool
	failFind   bool
	failUpsert bool
	failLink   bool
	// raceLink makes InsertLink lose to a concurrent writer.
	raceLink bool
	upserts  int
}

func (s *faultyStore) ListTours(ctx context.Context) ([]models.Tour, error) {
	if s.failList {
		return nil, errUnavailable
	}
	return s.Memory.ListTours(ctx)
}

func (s *faultyStore) ListListings(ctx context.Context) ([]models.Listing, error) {
	if s.failList {
		return nil, errUnavailable
	}
	return s.Memory.ListListings(ctx)
}

func (s *faultyStore) UpsertTour(ctx context.Context, t models.Tour) error {
	if s.failUpsert {
		return errUnavailable
	}
	return s.Memory.UpsertTour(ctx, t)
}

func (s *faultyStore) FindAssociated(ctx context.Context, kind models.Kind, vendorID, tourID string) (models.AssociatedRecord, error) {
	if s.failFind {
		return nil, errUnavailable
	}
	return s.Memory.FindAssociated(ctx, kind, vendorID, tourID)
}

func (s *faultyStore) UpsertAssociated(ctx context.Context, rec models.AssociatedRecord) (models.AssociatedRecord, error) {
	s.upserts++
	if s.failUpsert {
		return nil, errUnavailable
	}
	return s.Memory.UpsertAssociated(ctx, rec)
}

func (s *faultyStore) FindLink(ctx context.Context, vendorID, tourID string) (*models.VendorTourLink, error) {
	if s.failLink {
		return nil, errUnavailable
	}
	return s.Memory.FindLink(ctx, vendorID, tourID)
}

func (s *faultyStore) InsertLink(ctx context.Context, vendorID, tourID string) (models.LinkOutcome, error) {
	if s.raceLink {
		return "", repositories.Conflict("vendor tour link already exists")
	}
	return s.Memory.InsertLink(ctx, vendorID, tourID)
}

type captureEmitter struct {
	mu     sync.Mutex
	saved  []models.AssociatedRecord
	linked []models.VendorTourLink
}

func (e *captureEmitter) EmitRecordSaved(_ context.Context, rec models.AssociatedRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.saved = append(e.saved, rec)
	return nil
}

func (e *captureEmitter) EmitVendorTourLinked(_ context.Context, link models.VendorTourLink) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.linked = append(e.linked, link)
	return nil
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	remote  *fakeRemote
	store   *faultyStore
	emitter *captureEmitter
	rec     *reconciler.Reconciler
}

func newHarness() *harness {
	h := &harness{
		remote:  newFakeRemote(),
		store:   &faultyStore{Memory: store.NewMemory()},
		emitter: &captureEmitter{},
	}
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	h.rec = reconciler.New(h.remote, h.store, h.emitter, logger, reconciler.WithClock(func() time.Time { return fixedNow }))
	return h
}
