package handler // handler defines http handlers

import (
    "errors"
    "log"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/kiosk-table-reservation/internal/control"
    "github.com/iliyamo/kiosk-table-reservation/internal/repository"
    "github.com/iliyamo/kiosk-table-reservation/internal/service"
)

// errorJSON maps a service error onto the JSON error response used by every
// endpoint.  Unexpected errors are logged and hidden behind a 500.
func errorJSON(c echo.Context, op string, err error) error {
    switch {
    case service.IsValidation(err), errors.Is(err, control.ErrUnknownCommand):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrOverlap):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    log.Printf("%s: %v", op, err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": op + " failed"})
}

// httpErrorJSON writes an *echo.HTTPError produced by the scope helpers.
func httpErrorJSON(c echo.Context, herr *echo.HTTPError) error {
    return c.JSON(herr.Code, echo.Map{"error": herr.Message})
}

// parsePositive parses a path or query integer that must be >= 1.
func parsePositive(raw string) (int64, bool) {
    n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
    if err != nil || n < 1 {
        return 0, false
    }
    return n, true
}
