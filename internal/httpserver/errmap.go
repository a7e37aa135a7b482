package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atelier-moda/fashion-shop/internal/domain"
)

// serviceError translates domain sentinels into HTTP responses and logs the
// failure at the matching level. Anything unrecognized is a 500 with a
// generic body.
func serviceError(l *slog.Logger, op string, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrBusinessRule):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		l.Error(op+"_failed", "status", status, "error", err)
		return echo.NewHTTPError(status, "internal server error")
	}
	l.Warn(op+"_failed", "status", status, "error", err)
	return echo.NewHTTPError(status, err.Error())
}

// validationError rejects a request whose body failed its Validate pass.
func validationError(l *slog.Logger, op string, errs []string) error {
	l.Warn(op+"_failed", "status", 400, "reason", "validation", "errors", errs)
	return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"errors": errs})
}
