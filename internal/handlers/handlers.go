// Package handlers exposes the reconciler over HTTP.
package handlers

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/notices"
	"github.com/Ramsey-B/primrose/pkg/reconciler"
)

// Reconciler is the subset of *reconciler.Reconciler the API serves.
type Reconciler interface {
	LoadCatalog(ctx context.Context) reconciler.Catalog
	ReloadCollection(ctx context.Context, kind models.Kind) (reconciler.Collection, error)
	ResolveAssociatedRecord(ctx context.Context, kind models.Kind, vendorID, tourID string) (reconciler.Resolution, error)
	SaveAssociatedRecord(ctx context.Context, rec models.AssociatedRecord) (models.AssociatedRecord, error)
	LinkVendorTour(ctx context.Context, vendorID, tourID string) (models.LinkOutcome, error)
	ListingActions(ctx context.Context, listingID string) ([]models.Action, error)
}

type Handler struct {
	reconciler Reconciler
	notices    *notices.Service
	logger     ectologger.Logger
}

func NewHandler(rec Reconciler, noticeService *notices.Service, logger ectologger.Logger) *Handler {
	return &Handler{
		reconciler: rec,
		notices:    noticeService,
		logger:     logger,
	}
}

// Register mounts every API route on g.
func (h *Handler) Register(g *echo.Group) {
	catalog := g.Group("/catalog")
	catalog.GET("", h.GetCatalog)
	catalog.GET("/:kind", h.GetCollection)

	g.GET("/listings/:id/actions", h.ListingActions)

	g.GET("/contacts", h.GetContact)
	g.PUT("/contacts", h.PutContact)
	g.GET("/policies", h.GetPolicy)
	g.PUT("/policies", h.PutPolicy)

	g.POST("/vendor-tours", h.LinkVendorTour)

	n := g.Group("/notices")
	n.GET("", h.ListNotices)
	n.DELETE("/:token", h.DismissNotice)
	n.POST("/:token/retry", h.RetryNotice)
}
