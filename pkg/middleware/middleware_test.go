package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/primrose/pkg/context"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/reconciler"
)

func newTestEcho() *echo.Echo {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	e := echo.New()
	e.HTTPErrorHandler = Error(logger)
	e.Use(Context())
	e.Use(Logger(logger))
	return e
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMeta map[string]any
	}{
		{
			name:     "validation",
			err:      &reconciler.ValidationError{Field: "vendor_id", Message: "is required"},
			wantCode: http.StatusBadRequest,
			wantMeta: map[string]any{"field": "vendor_id"},
		},
		{
			name:     "not found",
			err:      &reconciler.NotFoundError{Kind: models.KindListings, ID: "L9"},
			wantCode: http.StatusNotFound,
			wantMeta: map[string]any{"kind": "listings", "id": "L9"},
		},
		{
			name:     "store conflict",
			err:      fmt.Errorf("save: %w", &reconciler.StoreError{Op: "upsert", Kind: models.KindContact, Err: errors.New("dup"), Conflict: true}),
			wantCode: http.StatusConflict,
			wantMeta: map[string]any{"kind": "contact", "op": "upsert"},
		},
		{
			name:     "store failure",
			err:      &reconciler.StoreError{Op: "insert", Kind: "vendor_tour", Err: errors.New("connection refused")},
			wantCode: http.StatusServiceUnavailable,
			wantMeta: map[string]any{"kind": "vendor_tour", "op": "insert"},
		},
		{
			name:     "http error",
			err:      httperror.NewHTTPError(http.StatusUnprocessableEntity, "bad body"),
			wantCode: http.StatusUnprocessableEntity,
			wantMeta: map[string]any{},
		},
		{
			name:     "echo error",
			err:      echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"),
			wantCode: http.StatusMethodNotAllowed,
			wantMeta: map[string]any{},
		},
		{
			name:     "unknown",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
			wantMeta: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			e.GET("/fail", func(echo.Context) error { return tt.err })

			req := httptest.NewRequest(http.MethodGet, "/fail", nil)
			req.Header.Set(echo.HeaderXRequestID, "req-1")
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "req-1", body.RequestID)
			assert.NotEmpty(t, body.Message)
			assert.Equal(t, tt.wantMeta, body.Meta)
		})
	}
}

func TestContextPopulatesRequestValues(t *testing.T) {
	e := newTestEcho()
	var requestID, operator string
	e.GET("/ping", func(c echo.Context) error {
		requestID = context.GetRequestID(c.Request().Context())
		operator = context.GetOperator(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderOperator, "ops@example.com")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, requestID)
	assert.Equal(t, requestID, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "ops@example.com", operator)
}
