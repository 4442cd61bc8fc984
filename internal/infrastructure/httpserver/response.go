package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/feastline/feastline/internal/domain/errs"
)

// ErrorResponse is the envelope for failed requests. Successful responses
// carry their own typed payloads and are sent with RespondJSON.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RespondJSON sends payload as-is with the given status code.
func RespondJSON(c echo.Context, code int, payload any) error {
	return c.JSON(code, payload)
}

// RespondError maps err to an HTTP status and sends the failure envelope.
// Client errors expose the error text; server errors get a generic message
// so internals never leak.
func RespondError(c echo.Context, err error) error {
	status := errorStatus(err)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}

	return c.JSON(status, ErrorResponse{
		Success: false,
		Message: message,
	})
}

// RespondErrorWithStatus sends the failure envelope with an explicit status
// and message, bypassing error mapping.
func RespondErrorWithStatus(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorResponse{
		Success: false,
		Message: message,
	})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, errs.ErrRoomNotFound),
		errors.Is(err, errs.ErrUserNotFound),
		errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusConflict

	case errors.Is(err, errs.ErrInvalidInput):
		return http.StatusBadRequest

	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized

	default:
		return http.StatusInternalServerError
	}
}
