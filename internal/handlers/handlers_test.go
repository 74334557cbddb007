package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/primrose/internal/store"
	"github.com/Ramsey-B/primrose/pkg/events"
	"github.com/Ramsey-B/primrose/pkg/middleware"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/notices"
	"github.com/Ramsey-B/primrose/pkg/reconciler"
	"github.com/Ramsey-B/primrose/pkg/remote"
)

type fakeRemote struct {
	mu      sync.Mutex
	records map[models.Kind][]remote.RawRecord
	failing map[models.Kind]bool
}

func (f *fakeRemote) FetchAll(_ context.Context, kind models.Kind) ([]remote.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[kind] {
		return nil, &remote.TransportError{Kind: kind, StatusCode: http.StatusBadGateway}
	}
	return f.records[kind], nil
}

type testAPI struct {
	echo   *echo.Echo
	remote *fakeRemote
	store  *store.Memory
	board  *notices.MemoryBoard
}

func newTestAPI() *testAPI {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	api := &testAPI{
		remote: &fakeRemote{records: map[models.Kind][]remote.RawRecord{}, failing: map[models.Kind]bool{}},
		store:  store.NewMemory(),
		board:  notices.NewMemoryBoard(0),
	}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := reconciler.New(api.remote, api.store, events.NoopEmitter{}, logger, reconciler.WithClock(func() time.Time { return now }))

	api.echo = echo.New()
	api.echo.HTTPErrorHandler = middleware.Error(logger)
	api.echo.Use(middleware.Context())
	NewHandler(rec, notices.NewService(api.board, rec, logger), logger).Register(api.echo.Group("/api/v1"))
	return api
}

func (a *testAPI) do(t *testing.T, method, path, body string, out any) int {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func TestCatalogFallbackRecordsNoticeAndRetryClearsIt(t *testing.T) {
	api := newTestAPI()
	ctx := context.Background()
	require.NoError(t, api.store.UpsertTour(ctx, models.Tour{ID: "12", Name: "Harbor"}))
	require.NoError(t, api.store.UpsertTour(ctx, models.Tour{ID: "13", Name: "Sunset"}))
	api.remote.records[models.KindVendors] = []remote.RawRecord{{"id": "7", "name": "Blue Boats"}}
	api.remote.failing[models.KindTours] = true

	var catalog reconciler.Catalog
	code := api.do(t, http.MethodGet, "/api/v1/catalog", "", &catalog)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, catalog.Tours, 2)
	assert.Len(t, catalog.Vendors, 1)
	assert.NotNil(t, catalog.Listings)
	assert.Equal(t, models.SourceStore, catalog.Sources[models.KindTours])
	require.Len(t, catalog.Errors, 1)
	assert.Equal(t, models.KindTours, catalog.Errors[0].Kind)

	var list NoticeListResponse
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/v1/notices", "", &list))
	require.Equal(t, 1, list.Count)
	token := list.Notices[0].Token.String()

	api.remote.failing[models.KindTours] = false
	api.remote.records[models.KindTours] = []remote.RawRecord{{"id": 14, "name": "Reef"}}

	var retry RetryResponse
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/v1/notices/"+token+"/retry", "", &retry))
	assert.True(t, retry.Resolved)
	require.NotNil(t, retry.Collection)
	assert.Equal(t, models.SourceRemote, retry.Collection.Source)

	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/v1/notices", "", &list))
	assert.Zero(t, list.Count)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodPost, "/api/v1/notices/"+token+"/retry", "", nil))
}

func TestGetCollection(t *testing.T) {
	api := newTestAPI()
	api.remote.records[models.KindListings] = []remote.RawRecord{{"id": "L1", "productName": "Harbor Cruise", "vendorId": 7, "tourId": 12, "listingType": "multi_variant"}}

	var resp map[string]any
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/v1/catalog/LISTINGS", "", &resp))
	assert.Equal(t, "listings", resp["kind"])
	assert.Equal(t, "remote", resp["source"])
	assert.Len(t, resp["records"], 1)

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/api/v1/catalog/contact", "", nil))
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/api/v1/catalog/bogus", "", nil))
}

func TestContactWriteThenRead(t *testing.T) {
	api := newTestAPI()
	api.remote.failing[models.KindContact] = true

	var saved models.ContactRecord
	code := api.do(t, http.MethodPut, "/api/v1/contacts", `{"vendor_id":" 7 ","tour_id":"12","email":"  Ops@Example.COM ","phone":" 555-0100 "}`, &saved)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "ops@example.com", saved.Email)
	assert.Equal(t, "555-0100", saved.Phone)

	var got struct {
		Record models.ContactRecord     `json:"record"`
		Source models.Source            `json:"source"`
		Saved  bool                     `json:"saved"`
		Error  *models.RecoverableError `json:"error"`
	}
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/v1/contacts?vendor_id=7&tour_id=12", "", &got))
	assert.Equal(t, saved.ID, got.Record.ID)
	assert.Equal(t, models.SourceStore, got.Source)
	assert.True(t, got.Saved)
	require.NotNil(t, got.Error)
	assert.Equal(t, models.KindContact, got.Error.Kind)
}

func TestPolicyUnmatchedIsEmptyAndUnsaved(t *testing.T) {
	api := newTestAPI()

	var got struct {
		Record models.CancellationPolicyRecord `json:"record"`
		Source models.Source                   `json:"source"`
		Saved  bool                            `json:"saved"`
	}
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/v1/policies?vendor_id=7&tour_id=12", "", &got))
	assert.Empty(t, got.Record.ID)
	assert.Equal(t, models.SourceEmpty, got.Source)
	assert.False(t, got.Saved)
	assert.Zero(t, api.store.RecordCount(models.KindPolicy))
}

func TestSaveValidation(t *testing.T) {
	api := newTestAPI()
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "negative minutes", path: "/api/v1/policies", body: `{"vendor_id":"7","tour_id":"12","cancellation_before_minutes":-5}`},
		{name: "minutes past column range", path: "/api/v1/policies", body: `{"vendor_id":"7","tour_id":"12","cancellation_before_minutes":2147483648}`},
		{name: "missing minutes", path: "/api/v1/policies", body: `{"vendor_id":"7","tour_id":"12"}`},
		{name: "missing tour", path: "/api/v1/contacts", body: `{"vendor_id":"7","email":"a@b.co"}`},
		{name: "bad email", path: "/api/v1/contacts", body: `{"vendor_id":"7","tour_id":"12","email":"nope"}`},
		{name: "malformed json", path: "/api/v1/contacts", body: `{"vendor_id":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPut, tt.path, tt.body, nil))
		})
	}
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/api/v1/contacts?vendor_id=7", "", nil))
}

func TestLinkVendorTourStatusCodes(t *testing.T) {
	api := newTestAPI()

	var resp LinkResponse
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/v1/vendor-tours", `{"vendor_id":"7","tour_id":"12"}`, &resp))
	assert.Equal(t, models.LinkCreated, resp.Outcome)

	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/v1/vendor-tours", `{"vendor_id":"7","tour_id":"12"}`, &resp))
	assert.Equal(t, models.LinkAlreadyExists, resp.Outcome)
	assert.Equal(t, 1, api.store.LinkCount())

	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/api/v1/vendor-tours", `{"vendor_id":"7"}`, nil))
}

func TestListingActionsRoute(t *testing.T) {
	api := newTestAPI()
	ctx := context.Background()
	require.NoError(t, api.store.UpsertListing(ctx, models.Listing{ID: "L1", VendorID: "7", TourID: "12", ListingKind: models.ListingKindMultiVariant}))

	var resp ActionsResponse
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/v1/listings/L1/actions", "", &resp))
	assert.Equal(t, []models.Action{models.ActionLinkVendorTour}, resp.Actions)

	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/v1/vendor-tours", `{"vendor_id":"7","tour_id":"12"}`, nil))
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/v1/listings/L1/actions", "", &resp))
	assert.Equal(t, []models.Action{models.ActionFetchContact, models.ActionFetchPolicy}, resp.Actions)

	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/api/v1/listings/L404/actions", "", nil))
}

func TestDismissNotice(t *testing.T) {
	api := newTestAPI()
	api.remote.failing[models.KindContact] = true

	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/v1/contacts?vendor_id=7&tour_id=12", "", nil))

	var list NoticeListResponse
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/v1/notices", "", &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "7", list.Notices[0].VendorID)

	token := list.Notices[0].Token.String()
	assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, "/api/v1/notices/"+token, "", nil))
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodDelete, "/api/v1/notices/"+token, "", nil))
}
