package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/notices"
)

type NoticeListResponse struct {
	Notices []models.RecoverableError `json:"notices"`
	Count   int                       `json:"count"`
}

type RetryResponse struct {
	Token      string              `json:"token"`
	Resolved   bool                `json:"resolved"`
	Collection *CollectionResponse `json:"collection,omitempty"`
	Record     *RecordResponse     `json:"record,omitempty"`
	// Notice replaces the retried one when the retry failed again.
	Notice *models.RecoverableError `json:"notice,omitempty"`
}

// ListNotices handles GET /notices
func (h *Handler) ListNotices(c echo.Context) error {
	ctx := c.Request().Context()

	list, err := h.notices.List(ctx)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to list notices")
		return err
	}
	return SuccessResponse(c, NoticeListResponse{Notices: list, Count: len(list)})
}

// DismissNotice handles DELETE /notices/:token
func (h *Handler) DismissNotice(c echo.Context) error {
	ctx := c.Request().Context()
	token := c.Param("token")

	if err := h.notices.Dismiss(ctx, token); err != nil {
		if errors.Is(err, notices.ErrNotFound) {
			return NotFound("notice %s not found", token)
		}
		h.logger.WithContext(ctx).WithError(err).Error("Failed to dismiss notice")
		return err
	}
	return NoContentResponse(c)
}

// RetryNotice handles POST /notices/:token/retry
func (h *Handler) RetryNotice(c echo.Context) error {
	ctx := c.Request().Context()
	token := c.Param("token")

	result, err := h.notices.Retry(ctx, token)
	if err != nil {
		if errors.Is(err, notices.ErrNotFound) {
			return NotFound("notice %s not found", token)
		}
		h.logger.WithContext(ctx).WithError(err).Error("Failed to retry notice")
		return err
	}

	resp := RetryResponse{
		Token:    token,
		Resolved: result.Notice == nil,
		Notice:   result.Notice,
	}
	if result.Collection != nil {
		resp.Collection = toCollectionResponse(*result.Collection)
	}
	if result.Resolution != nil {
		resp.Record = toRecordResponse(*result.Resolution)
	}
	return SuccessResponse(c, resp)
}
