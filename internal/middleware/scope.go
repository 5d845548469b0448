package middleware

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/kiosk-table-reservation/internal/model"
)

// TargetStore resolves the store a request acts on.  Regular staff act on
// their own store; naming another store is forbidden.  The admin tenant must
// name the store explicitly because it owns no tables itself.
//
//  no store context           -> 401
//  raw not a positive integer -> 400
//  raw names a foreign store  -> 403 (non-admin)
//  admin without raw          -> 400
func TargetStore(c echo.Context, raw string) (int64, *echo.HTTPError) {
    caller, ok := CallerStore(c)
    if !ok {
        return 0, echo.NewHTTPError(http.StatusUnauthorized, "no store context")
    }
    raw = strings.TrimSpace(raw)
    if raw == "" {
        if caller == model.AdminStoreID {
            return 0, echo.NewHTTPError(http.StatusBadRequest, "store_id is required for the admin account")
        }
        return caller, nil
    }
    id, err := strconv.ParseInt(raw, 10, 64)
    if err != nil || id <= 0 {
        return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid store_id")
    }
    if caller != model.AdminStoreID && caller != id {
        return 0, echo.NewHTTPError(http.StatusForbidden, "forbidden")
    }
    return id, nil
}

// RequireStore rejects requests that reached a store-scoped group without a
// store context.
func RequireStore() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if _, ok := CallerStore(c); !ok {
                return c.JSON(http.StatusUnauthorized, map[string]string{"error": "no store context"})
            }
            return next(c)
        }
    }
}
