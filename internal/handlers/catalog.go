package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/reconciler"
	"github.com/Ramsey-B/primrose/pkg/tracing"
)

type CollectionResponse struct {
	Kind    models.Kind              `json:"kind"`
	Source  models.Source            `json:"source"`
	Records any                      `json:"records"`
	Error   *models.RecoverableError `json:"error,omitempty"`
}

// GetCatalog handles GET /catalog
func (h *Handler) GetCatalog(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.GetCatalog")
	defer span.End()

	catalog := h.reconciler.LoadCatalog(ctx)
	for i := range catalog.Errors {
		h.notices.Publish(ctx, &catalog.Errors[i])
	}
	return SuccessResponse(c, catalog)
}

// GetCollection handles GET /catalog/:kind
func (h *Handler) GetCollection(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.GetCollection")
	defer span.End()

	kind, ok := models.ParseKind(c.Param("kind"))
	if !ok || !kind.IsCatalog() {
		return BadRequest("kind must be one of listings, vendors, tours")
	}

	col, err := h.reconciler.ReloadCollection(ctx, kind)
	if err != nil {
		return err
	}
	h.notices.Publish(ctx, col.Error)

	return SuccessResponse(c, toCollectionResponse(col))
}

func toCollectionResponse(col reconciler.Collection) *CollectionResponse {
	return &CollectionResponse{
		Kind:    col.Kind,
		Source:  col.Source,
		Records: col.Records(),
		Error:   col.Error,
	}
}
