package reconciler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/remote"
)

func seedRemoteCatalog(h *harness) {
	h.remote.records[models.KindListings] = []remote.RawRecord{
		raw(`{"id": 1, "productName": "Harbor Cruise", "vendorId": 7, "tourId": "12", "listingType": "NewListing"}`),
		raw(`{"id": "2", "product_name": "Sunset Sail", "vendor_id": "7", "tour_id": 13, "listing_type": "multi-variant", "status": "draft"}`),
	}
	h.remote.records[models.KindVendors] = []remote.RawRecord{
		raw(`{"id": 7, "name": "Blue Boats"}`),
	}
	h.remote.records[models.KindTours] = []remote.RawRecord{
		raw(`{"id": 12, "name": "Harbor", "location": "Pier 3"}`),
		raw(`{"id": 13, "name": "Sunset"}`),
		raw(`{"id": 14, "name": "Reef", "vendorId": 7}`),
	}
}

func TestLoadCatalogAllRemote(t *testing.T) {
	h := newHarness()
	seedRemoteCatalog(h)
	ctx := context.Background()

	catalog := h.rec.LoadCatalog(ctx)

	assert.Empty(t, catalog.Errors)
	require.Len(t, catalog.Listings, 2)
	assert.Len(t, catalog.Vendors, 1)
	assert.Len(t, catalog.Tours, 3)
	for _, kind := range models.CatalogKinds {
		assert.Equal(t, models.SourceRemote, catalog.Sources[kind])
	}

	assert.Equal(t, "1", catalog.Listings[0].ID)
	assert.Equal(t, "7", catalog.Listings[0].VendorID)
	assert.Equal(t, models.ListingKindNew, catalog.Listings[0].ListingKind)
	assert.Equal(t, "13", catalog.Listings[1].TourID)
	assert.Equal(t, models.ListingKindMultiVariant, catalog.Listings[1].ListingKind)
	require.NotNil(t, catalog.Listings[1].Status)
	assert.Equal(t, "draft", *catalog.Listings[1].Status)

	// Every remote record was written through.
	stored, err := h.store.ListTours(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
	listings, err := h.store.ListListings(ctx)
	require.NoError(t, err)
	assert.Len(t, listings, 2)
}

func TestLoadCatalogToursFallBackToStore(t *testing.T) {
	h := newHarness()
	seedRemoteCatalog(h)
	ctx := context.Background()

	require.NoError(t, h.store.Memory.UpsertTour(ctx, models.Tour{ID: "T1", Name: "Stored One"}))
	require.NoError(t, h.store.Memory.UpsertTour(ctx, models.Tour{ID: "T2", Name: "Stored Two"}))
	h.remote.failing[models.KindTours] = true

	catalog := h.rec.LoadCatalog(ctx)

	require.Len(t, catalog.Tours, 2)
	assert.Equal(t, "Stored One", catalog.Tours[0].Name)
	assert.Equal(t, models.SourceStore, catalog.Sources[models.KindTours])

	assert.Len(t, catalog.Listings, 2)
	assert.Len(t, catalog.Vendors, 1)
	assert.Equal(t, models.SourceRemote, catalog.Sources[models.KindListings])
	assert.Equal(t, models.SourceRemote, catalog.Sources[models.KindVendors])

	require.Len(t, catalog.Errors, 1)
	assert.Equal(t, models.KindTours, catalog.Errors[0].Kind)
	assert.Equal(t, models.NewRetryToken(models.KindTours, fixedNow), catalog.Errors[0].Token)
}

func TestLoadCatalogBothSourcesFail(t *testing.T) {
	h := newHarness()
	seedRemoteCatalog(h)
	h.remote.failing[models.KindTours] = true
	h.remote.failing[models.KindListings] = true
	h.store.failList = true

	catalog := h.rec.LoadCatalog(context.Background())

	assert.Empty(t, catalog.Tours)
	assert.NotNil(t, catalog.Tours)
	assert.Empty(t, catalog.Listings)
	assert.Len(t, catalog.Vendors, 1)
	assert.Equal(t, models.SourceEmpty, catalog.Sources[models.KindTours])
	require.Len(t, catalog.Errors, 2)

	kinds := []models.Kind{catalog.Errors[0].Kind, catalog.Errors[1].Kind}
	assert.ElementsMatch(t, []models.Kind{models.KindListings, models.KindTours}, kinds)
	assert.Contains(t, catalog.Errors[0].Message, "store")
}

func TestLoadCatalogWriteThroughFailureIsNotFatal(t *testing.T) {
	h := newHarness()
	seedRemoteCatalog(h)
	h.store.failUpsert = true

	catalog := h.rec.LoadCatalog(context.Background())

	assert.Empty(t, catalog.Errors)
	assert.Len(t, catalog.Tours, 3)
	assert.Equal(t, models.SourceRemote, catalog.Sources[models.KindTours])
}

func TestLoadCatalogDeduplicatesRemoteIDs(t *testing.T) {
	h := newHarness()
	h.remote.records[models.KindVendors] = []remote.RawRecord{
		raw(`{"id": 7, "name": "Old Name"}`),
		raw(`{"id": "7", "name": "New Name"}`),
		raw(`{"name": "No Id"}`),
	}

	catalog := h.rec.LoadCatalog(context.Background())

	require.Len(t, catalog.Vendors, 1)
	assert.Equal(t, "New Name", catalog.Vendors[0].Name)
}

func TestLoadCatalogKeepsLargeNumericIDsExact(t *testing.T) {
	h := newHarness()
	h.remote.records[models.KindListings] = []remote.RawRecord{
		raw(`{"id": 12345678901234567890, "productName": "A", "vendorId": 7, "tourId": 12}`),
		raw(`{"id": 12345678901234567891, "productName": "B", "vendorId": 7, "tourId": 12}`),
	}

	catalog := h.rec.LoadCatalog(context.Background())

	require.Len(t, catalog.Listings, 2)
	assert.Equal(t, "12345678901234567890", catalog.Listings[0].ID)
	assert.Equal(t, "A", catalog.Listings[0].ProductName)
	assert.Equal(t, "12345678901234567891", catalog.Listings[1].ID)
	assert.Equal(t, "B", catalog.Listings[1].ProductName)

	stored, err := h.store.GetListing(context.Background(), "12345678901234567890")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "A", stored.ProductName)
}

func TestReloadCollection(t *testing.T) {
	h := newHarness()
	seedRemoteCatalog(h)

	col, err := h.rec.ReloadCollection(context.Background(), models.KindVendors)
	require.NoError(t, err)
	assert.Equal(t, models.SourceRemote, col.Source)
	assert.Equal(t, 1, col.Len())
	assert.Nil(t, col.Error)
	assert.Equal(t, 1, h.remote.calls[models.KindVendors])
	assert.Zero(t, h.remote.calls[models.KindTours])

	_, err = h.rec.ReloadCollection(context.Background(), models.KindContact)
	assert.Error(t, err)
}
