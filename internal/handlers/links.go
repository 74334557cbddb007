package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/tracing"
)

type LinkRequest struct {
	VendorID string `json:"vendor_id" validate:"required"`
	TourID   string `json:"tour_id" validate:"required"`
}

type LinkResponse struct {
	Outcome models.LinkOutcome `json:"outcome"`
}

type ActionsResponse struct {
	ListingID string          `json:"listing_id"`
	Actions   []models.Action `json:"actions"`
}

// LinkVendorTour handles POST /vendor-tours. A new link answers 201, an
// existing one 200.
func (h *Handler) LinkVendorTour(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.LinkVendorTour")
	defer span.End()

	req, err := BindRequest[LinkRequest](c)
	if err != nil {
		return err
	}

	outcome, err := h.reconciler.LinkVendorTour(ctx, req.VendorID, req.TourID)
	if err != nil {
		return err
	}
	if outcome == models.LinkCreated {
		return CreatedResponse(c, LinkResponse{Outcome: outcome})
	}
	return SuccessResponse(c, LinkResponse{Outcome: outcome})
}

// ListingActions handles GET /listings/:id/actions
func (h *Handler) ListingActions(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.ListingActions")
	defer span.End()

	id := c.Param("id")
	actions, err := h.reconciler.ListingActions(ctx, id)
	if err != nil {
		return err
	}
	return SuccessResponse(c, ActionsResponse{ListingID: id, Actions: actions})
}
