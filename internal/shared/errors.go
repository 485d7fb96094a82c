package shared

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUnsupported   = errors.New("unsupported on this platform")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrDisabled      = errors.New("component disabled")
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

func (e *APIError) ToHTTP(status int) *echo.HTTPError {
	return echo.NewHTTPError(status, e)
}

func BadRequest(code, message string) *echo.HTTPError {
	return NewAPIError(code, message).ToHTTP(http.StatusBadRequest)
}

func NotFound(code, message string) *echo.HTTPError {
	return NewAPIError(code, message).ToHTTP(http.StatusNotFound)
}

func Conflict(code, message string) *echo.HTTPError {
	return NewAPIError(code, message).ToHTTP(http.StatusConflict)
}

func NotImplemented(code, message string) *echo.HTTPError {
	return NewAPIError(code, message).ToHTTP(http.StatusNotImplemented)
}

func ServiceUnavailable(code, message string) *echo.HTTPError {
	return NewAPIError(code, message).ToHTTP(http.StatusServiceUnavailable)
}

func InternalError(code, message string) *echo.HTTPError {
	return NewAPIError(code, message).ToHTTP(http.StatusInternalServerError)
}

// FromError maps package sentinels onto API errors so handlers can return
// coordinator errors directly.
func FromError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return BadRequest("invalid_config", err.Error())
	case errors.Is(err, ErrUnsupported):
		return NotImplemented("unsupported", err.Error())
	case errors.Is(err, ErrNotFound):
		return NotFound("not_found", err.Error())
	case errors.Is(err, ErrDisabled):
		return ServiceUnavailable("disabled", err.Error())
	default:
		return InternalError("internal_error", err.Error())
	}
}
