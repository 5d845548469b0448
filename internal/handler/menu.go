package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/kiosk-table-reservation/internal/middleware"
    "github.com/iliyamo/kiosk-table-reservation/internal/model"
)

// MenuLister is satisfied by the MySQL and memory store repositories.
type MenuLister interface {
    ListMenus(ctx context.Context, storeID int64) ([]model.StoreMenu, error)
}

// MenuHandler serves store menus that kiosks use to prefill a reservation.
type MenuHandler struct {
    Menus MenuLister
}

func NewMenuHandler(m MenuLister) *MenuHandler {
    if m == nil {
        panic("nil lister passed to NewMenuHandler")
    }
    return &MenuHandler{Menus: m}
}

// List handles GET /v1/stores/:id/menus.
func (h *MenuHandler) List(c echo.Context) error {
    storeID, herr := middleware.TargetStore(c, c.Param("id"))
    if herr != nil {
        return httpErrorJSON(c, herr)
    }
    menus, err := h.Menus.ListMenus(c.Request().Context(), storeID)
    if err != nil {
        return errorJSON(c, "list menus", err)
    }
    return c.JSON(http.StatusOK, menus)
}
