package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// errorJSON is rendered by echo's error handler as an Error body.
func errorJSON(code int, message string) *echo.HTTPError {
	return echo.NewHTTPError(code, Error{Code: code, Message: message})
}

// fail maps a use case error to a status code. Only generic messages leave the
// process; unexpected errors are logged.
func (s *Server) fail(ctx echo.Context, err error, fallback string) error {
	code, message := http.StatusInternalServerError, fallback

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		code, message = http.StatusNotFound, "Not found"
	case errors.Is(err, commands.ErrInsufficientFunds):
		code, message = http.StatusPaymentRequired, "Insufficient funds"
	case errors.Is(err, commands.ErrUnknownTemplate):
		code, message = http.StatusBadRequest, "Unknown template"
	case errors.Is(err, commands.ErrConfirmationRunning):
		code, message = http.StatusConflict, "Confirmation already running"
	case errors.Is(err, commands.ErrBatchNotConfirmable):
		code, message = http.StatusConflict, "Batch cannot be confirmed in its current status"
	case errors.Is(err, commands.ErrBatchNotConfirming):
		code, message = http.StatusConflict, "Batch is not confirming"
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		code, message = http.StatusBadRequest, "Invalid request"
	default:
		s.logger.ErrorContext(ctx.Request().Context(), fallback,
			"method", ctx.Request().Method, "path", ctx.Path(), "error", err)
	}

	return errorJSON(code, message)
}
