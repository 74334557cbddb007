package reconciler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/reconciler"
)

func TestLinkVendorTourIsIdempotent(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	outcome, err := h.rec.LinkVendorTour(ctx, "7", "12")
	require.NoError(t, err)
	assert.Equal(t, models.LinkCreated, outcome)

	outcome, err = h.rec.LinkVendorTour(ctx, "7", "12")
	require.NoError(t, err)
	assert.Equal(t, models.LinkAlreadyExists, outcome)

	assert.Equal(t, 1, h.store.LinkCount())
	require.Len(t, h.emitter.linked, 1)
	assert.Equal(t, "7", h.emitter.linked[0].VendorID)
	assert.NotEmpty(t, h.emitter.linked[0].ID)
}

func TestLinkVendorTourStoreFailure(t *testing.T) {
	h := newHarness()
	h.store.failLink = true

	_, err := h.rec.LinkVendorTour(context.Background(), "7", "12")
	var storeErr *reconciler.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Zero(t, h.store.LinkCount())
}

func TestLinkVendorTourInsertConflictIsAlreadyExists(t *testing.T) {
	h := newHarness()
	h.store.raceLink = true

	outcome, err := h.rec.LinkVendorTour(context.Background(), "7", "12")
	require.NoError(t, err)
	assert.Equal(t, models.LinkAlreadyExists, outcome)
	assert.Empty(t, h.emitter.linked)
}

func TestLinkVendorTourValidation(t *testing.T) {
	h := newHarness()
	_, err := h.rec.LinkVendorTour(context.Background(), "7", "")
	var validationErr *reconciler.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "tour_id", validationErr.Field)
}

func TestListingActions(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	require.NoError(t, h.store.UpsertListing(ctx, models.Listing{ID: "L1", VendorID: "7", TourID: "12", ListingKind: models.ListingKindNew}))
	require.NoError(t, h.store.UpsertListing(ctx, models.Listing{ID: "L2", VendorID: "7", TourID: "13", ListingKind: models.ListingKindMultiVariant}))

	actions, err := h.rec.ListingActions(ctx, "L1")
	require.NoError(t, err)
	assert.Equal(t, []models.Action{models.ActionFetchContact, models.ActionFetchPolicy}, actions)

	actions, err = h.rec.ListingActions(ctx, "L2")
	require.NoError(t, err)
	assert.Equal(t, []models.Action{models.ActionLinkVendorTour}, actions)

	_, err = h.rec.LinkVendorTour(ctx, "7", "13")
	require.NoError(t, err)

	actions, err = h.rec.ListingActions(ctx, "L2")
	require.NoError(t, err)
	assert.Equal(t, []models.Action{models.ActionFetchContact, models.ActionFetchPolicy}, actions)

	_, err = h.rec.ListingActions(ctx, "missing")
	var notFound *reconciler.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}
