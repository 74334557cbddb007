package handlers

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/primrose/pkg/identifiers"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/reconciler"
	"github.com/Ramsey-B/primrose/pkg/tracing"
)

type RecordResponse struct {
	Record     models.AssociatedRecord  `json:"record"`
	Source     models.Source            `json:"source"`
	MatchLevel string                   `json:"match_level,omitempty"`
	Saved      bool                     `json:"saved"`
	Error      *models.RecoverableError `json:"error,omitempty"`
}

type SaveContactRequest struct {
	VendorID string `json:"vendor_id" validate:"required"`
	TourID   string `json:"tour_id" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,max=64"`
}

func (r *SaveContactRequest) Normalize() {
	r.VendorID = strings.TrimSpace(r.VendorID)
	r.TourID = strings.TrimSpace(r.TourID)
	r.Email = identifiers.NormalizeEmail(r.Email)
	r.Phone = identifiers.NormalizePhone(r.Phone)
}

type SavePolicyRequest struct {
	VendorID                  string `json:"vendor_id" validate:"required"`
	TourID                    string `json:"tour_id" validate:"required"`
	CancellationBeforeMinutes *int   `json:"cancellation_before_minutes" validate:"required,gte=0,lte=2147483647"`
}

func (r *SavePolicyRequest) Normalize() {
	r.VendorID = strings.TrimSpace(r.VendorID)
	r.TourID = strings.TrimSpace(r.TourID)
}

// GetContact handles GET /contacts?vendor_id=&tour_id=
func (h *Handler) GetContact(c echo.Context) error {
	return h.resolve(c, models.KindContact)
}

// GetPolicy handles GET /policies?vendor_id=&tour_id=
func (h *Handler) GetPolicy(c echo.Context) error {
	return h.resolve(c, models.KindPolicy)
}

func (h *Handler) resolve(c echo.Context, kind models.Kind) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.Resolve")
	defer span.End()

	res, err := h.reconciler.ResolveAssociatedRecord(ctx, kind, c.QueryParam("vendor_id"), c.QueryParam("tour_id"))
	if err != nil {
		return err
	}
	h.notices.Publish(ctx, res.Error)
	return SuccessResponse(c, toRecordResponse(res))
}

func toRecordResponse(res reconciler.Resolution) *RecordResponse {
	resp := &RecordResponse{
		Record: res.Record,
		Source: res.Source,
		Saved:  !res.Record.IsEmpty(),
		Error:  res.Error,
	}
	if res.Level != identifiers.LevelNone {
		resp.MatchLevel = res.Level.String()
	}
	return resp
}

// PutContact handles PUT /contacts
func (h *Handler) PutContact(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.PutContact")
	defer span.End()

	req, err := BindRequest[SaveContactRequest](c)
	if err != nil {
		return err
	}

	saved, err := h.reconciler.SaveAssociatedRecord(ctx, &models.ContactRecord{
		VendorID: req.VendorID,
		TourID:   req.TourID,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}
	return SuccessResponse(c, saved)
}

// PutPolicy handles PUT /policies
func (h *Handler) PutPolicy(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "handlers.PutPolicy")
	defer span.End()

	req, err := BindRequest[SavePolicyRequest](c)
	if err != nil {
		return err
	}

	saved, err := h.reconciler.SaveAssociatedRecord(ctx, &models.CancellationPolicyRecord{
		VendorID:                  req.VendorID,
		TourID:                    req.TourID,
		CancellationBeforeMinutes: *req.CancellationBeforeMinutes,
	})
	if err != nil {
		return err
	}
	return SuccessResponse(c, saved)
}
