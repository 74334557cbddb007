package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// normalizer is implemented by request bodies that clean input before validation.
type normalizer interface {
	Normalize()
}

// BindRequest binds and validates the request body.
func BindRequest[T any](c echo.Context) (T, error) {
	var v T
	if err := c.Bind(&v); err != nil {
		return v, BadRequest("invalid request body")
	}
	if n, ok := any(&v).(normalizer); ok {
		n.Normalize()
	}
	if err := validate.Struct(v); err != nil {
		return v, validationError(err)
	}
	return v, nil
}

func validationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return BadRequest(err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed rule '%s'", fe.Field(), fe.Tag()))
		fields = append(fields, fe.Field())
	}
	httpErr := httperror.NewHTTPError(http.StatusBadRequest, strings.Join(msgs, "; "))
	httpErr.AddMetaValue("fields", fields)
	return httpErr
}

func SuccessResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

func CreatedResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, data)
}

func NoContentResponse(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func BadRequest(message string) error {
	return httperror.NewHTTPError(http.StatusBadRequest, message)
}

func NotFound(format string, args ...any) error {
	return httperror.NewHTTPErrorf(http.StatusNotFound, format, args...)
}
