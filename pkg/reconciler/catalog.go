package reconciler

import (
	"context"
	"sync"

	"github.com/Ramsey-B/primrose/pkg/metrics"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/remote"
	"github.com/Ramsey-B/primrose/pkg/tracing"
)

const (
	msgRemoteUnavailable = "remote source unavailable; showing stored records"
	msgBothUnavailable   = "remote source and store unavailable"
	msgRecordFromStore   = "remote source unavailable; showing stored record"
)

// Collection is one catalog collection. Only the slice matching Kind is set.
type Collection struct {
	Kind     models.Kind
	Source   models.Source
	Listings []models.Listing
	Vendors  []models.Vendor
	Tours    []models.Tour
	Error    *models.RecoverableError
}

// Records returns the populated slice, never nil.
func (c Collection) Records() any {
	switch c.Kind {
	case models.KindListings:
		return nonNil(c.Listings)
	case models.KindVendors:
		return nonNil(c.Vendors)
	default:
		return nonNil(c.Tours)
	}
}

func (c Collection) Len() int {
	return len(c.Listings) + len(c.Vendors) + len(c.Tours)
}

type Catalog struct {
	Listings []models.Listing              `json:"listings"`
	Vendors  []models.Vendor               `json:"vendors"`
	Tours    []models.Tour                 `json:"tours"`
	Sources  map[models.Kind]models.Source `json:"sources"`
	Errors   []models.RecoverableError     `json:"errors"`
}

// LoadCatalog loads listings, vendors and tours concurrently. Each collection
// falls back to the store on its own; a failure in one never affects another.
func (r *Reconciler) LoadCatalog(ctx context.Context) Catalog {
	ctx, span := tracing.StartSpan(ctx, "reconciler.LoadCatalog")
	defer span.End()

	results := make([]Collection, len(models.CatalogKinds))
	var wg sync.WaitGroup
	for i, kind := range models.CatalogKinds {
		wg.Add(1)
		go func(i int, kind models.Kind) {
			defer wg.Done()
			results[i] = r.loadCollection(ctx, kind)
		}(i, kind)
	}
	wg.Wait()

	catalog := Catalog{
		Listings: []models.Listing{},
		Vendors:  []models.Vendor{},
		Tours:    []models.Tour{},
		Sources:  make(map[models.Kind]models.Source, len(results)),
		Errors:   []models.RecoverableError{},
	}
	for _, res := range results {
		catalog.Sources[res.Kind] = res.Source
		if res.Error != nil {
			catalog.Errors = append(catalog.Errors, *res.Error)
		}
		switch res.Kind {
		case models.KindListings:
			catalog.Listings = nonNil(res.Listings)
		case models.KindVendors:
			catalog.Vendors = nonNil(res.Vendors)
		case models.KindTours:
			catalog.Tours = nonNil(res.Tours)
		}
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"listings": len(catalog.Listings),
		"vendors":  len(catalog.Vendors),
		"tours":    len(catalog.Tours),
		"errors":   len(catalog.Errors),
	}).Info("catalog loaded")

	return catalog
}

// ReloadCollection loads a single catalog collection with the same remote
// first, store fallback rules as LoadCatalog.
func (r *Reconciler) ReloadCollection(ctx context.Context, kind models.Kind) (Collection, error) {
	if !kind.IsCatalog() {
		return Collection{}, &ValidationError{Field: "kind", Message: "must be one of listings, vendors, tours"}
	}

	ctx, span := tracing.StartSpan(ctx, "reconciler.ReloadCollection", tracing.AttrKind.String(string(kind)))
	defer span.End()

	return r.loadCollection(ctx, kind), nil
}

func (r *Reconciler) loadCollection(ctx context.Context, kind models.Kind) Collection {
	log := r.logger.WithContext(ctx).WithField("kind", kind)

	raw, err := r.remote.FetchAll(ctx, kind)
	if err == nil {
		col := Collection{Kind: kind, Source: models.SourceRemote}
		switch kind {
		case models.KindListings:
			col.Listings = normalizeListings(r, raw)
		case models.KindVendors:
			col.Vendors = normalizeVendors(raw)
		case models.KindTours:
			col.Tours = normalizeTours(raw)
		}
		r.writeThrough(ctx, col)
		return col
	}

	log.WithError(err).Warn("remote fetch failed, falling back to store")
	col, storeErr := r.readStored(ctx, kind)
	if storeErr != nil {
		metrics.RecordStoreFallback(string(kind), "error")
		log.WithError(storeErr).Error("store fallback failed")
		col = Collection{Kind: kind, Source: models.SourceEmpty}
		col.Error = r.recoverable(kind, msgBothUnavailable)
		return col
	}

	metrics.RecordStoreFallback(string(kind), "success")
	col.Error = r.recoverable(kind, msgRemoteUnavailable)
	return col
}

func (r *Reconciler) readStored(ctx context.Context, kind models.Kind) (Collection, error) {
	col := Collection{Kind: kind, Source: models.SourceStore}
	var err error
	switch kind {
	case models.KindListings:
		col.Listings, err = r.store.ListListings(ctx)
	case models.KindVendors:
		col.Vendors, err = r.store.ListVendors(ctx)
	case models.KindTours:
		col.Tours, err = r.store.ListTours(ctx)
	}
	if err != nil {
		return Collection{}, newStoreError("list", kind, err)
	}
	return col, nil
}

// writeThrough persists every remote record. Failures are counted and logged only.
func (r *Reconciler) writeThrough(ctx context.Context, col Collection) {
	failures := 0
	fail := func(id string, err error) {
		failures++
		metrics.RecordWriteThroughFailure(string(col.Kind))
		r.logger.WithContext(ctx).WithError(newStoreError("upsert", col.Kind, err)).WithFields(map[string]any{
			"kind": col.Kind,
			"id":   id,
		}).Warn("failed to write remote record to store")
	}

	for _, l := range col.Listings {
		if err := r.store.UpsertListing(ctx, l); err != nil {
			fail(l.ID, err)
		}
	}
	for _, v := range col.Vendors {
		if err := r.store.UpsertVendor(ctx, v); err != nil {
			fail(v.ID, err)
		}
	}
	for _, t := range col.Tours {
		if err := r.store.UpsertTour(ctx, t); err != nil {
			fail(t.ID, err)
		}
	}

	if failures > 0 {
		r.logger.WithContext(ctx).WithFields(map[string]any{
			"kind":     col.Kind,
			"failures": failures,
			"total":    col.Len(),
		}).Warn("write-through incomplete")
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var _ RemoteSource = (*remote.Source)(nil)
