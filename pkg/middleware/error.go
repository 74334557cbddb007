package middleware

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/primrose/pkg/context"
	"github.com/Ramsey-B/primrose/pkg/reconciler"
	"github.com/Ramsey-B/primrose/pkg/tracing"
)

type ErrorResponse struct {
	Message   string         `json:"message"`
	RequestID string         `json:"request_id"`
	TraceID   string         `json:"trace_id"`
	Meta      map[string]any `json:"meta"`
}

func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()
		if c.Response().Committed {
			return
		}

		code, message, meta := classify(err)
		log := logger.WithContext(ctx).WithError(err).WithField("status", code)
		if code >= http.StatusInternalServerError {
			log.Error("api is returning an error")
		} else {
			log.Warn("api is returning an error")
		}

		_ = c.JSON(code, ErrorResponse{
			Message:   message,
			RequestID: context.GetRequestID(ctx),
			TraceID:   tracing.GetTraceID(ctx),
			Meta:      meta,
		})
	}
}

// classify maps an error to a status code, message and meta.
func classify(err error) (int, string, map[string]any) {
	meta := map[string]any{}

	var validationErr *reconciler.ValidationError
	if errors.As(err, &validationErr) {
		if validationErr.Field != "" {
			meta["field"] = validationErr.Field
		}
		return http.StatusBadRequest, validationErr.Error(), meta
	}

	var notFoundErr *reconciler.NotFoundError
	if errors.As(err, &notFoundErr) {
		meta["kind"] = notFoundErr.Kind
		meta["id"] = notFoundErr.ID
		return http.StatusNotFound, notFoundErr.Error(), meta
	}

	var storeErr *reconciler.StoreError
	if errors.As(err, &storeErr) {
		meta["kind"] = storeErr.Kind
		meta["op"] = storeErr.Op
		if storeErr.Conflict {
			return http.StatusConflict, "record conflicts with an existing record", meta
		}
		return http.StatusServiceUnavailable, "store unavailable", meta
	}

	if httperror.IsHTTPError(err) {
		httpErr := httperror.ToHTTPError(err)
		if httpErr.Meta != nil {
			meta = httpErr.Meta
		}
		return httperror.GetStatusCode(err), httpErr.Error(), meta
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		message := http.StatusText(echoErr.Code)
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		}
		return echoErr.Code, message, meta
	}

	return http.StatusInternalServerError, "Internal Server Error", meta
}
