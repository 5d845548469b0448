package handler

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/kiosk-table-reservation/internal/middleware"
    "github.com/iliyamo/kiosk-table-reservation/internal/service"
)

// history bounds used by List; they cover any realistic start date
const (
    historyFrom = "1900-01-01"
    historyTo   = "2100-01-01"
)

// ReservationHandler exposes the reservation engine to kiosks and staff.
type ReservationHandler struct {
    Svc *service.ReservationService
}

// NewReservationHandler panics if svc is nil.
func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
    if svc == nil {
        panic("nil service passed to NewReservationHandler")
    }
    return &ReservationHandler{Svc: svc}
}

// List handles GET /v1/reservations and returns every reservation of the
// target store, most recent start first.
func (h *ReservationHandler) List(c echo.Context) error {
    storeID, herr := middleware.TargetStore(c, c.QueryParam("store_id"))
    if herr != nil {
        return httpErrorJSON(c, herr)
    }
    rows, err := h.Svc.ListByRange(c.Request().Context(), storeID, historyFrom, historyTo)
    if err != nil {
        return errorJSON(c, "list reservations", err)
    }
    return c.JSON(http.StatusOK, rows)
}

// Add handles POST /v1/reservations.  store_id defaults to the caller's
// store; an overlapping interval on the same table yields 409.
func (h *ReservationHandler) Add(c echo.Context) error {
    var in service.AddInput
    if err := c.Bind(&in); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    raw := ""
    if in.StoreID != 0 {
        raw = strconv.FormatInt(in.StoreID, 10)
    }
    storeID, herr := middleware.TargetStore(c, raw)
    if herr != nil {
        return httpErrorJSON(c, herr)
    }
    in.StoreID = storeID

    id, err := h.Svc.Add(c.Request().Context(), in)
    if err != nil {
        return errorJSON(c, "add reservation", err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Range handles GET /v1/reservations/range?start=YYYY-MM-DD&end=YYYY-MM-DD.
// The admin account must add store_id.
func (h *ReservationHandler) Range(c echo.Context) error {
    start := strings.TrimSpace(c.QueryParam("start"))
    end := strings.TrimSpace(c.QueryParam("end"))
    if start == "" || end == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "start and end are required"})
    }
    storeID, herr := middleware.TargetStore(c, c.QueryParam("store_id"))
    if herr != nil {
        return httpErrorJSON(c, herr)
    }
    rows, err := h.Svc.ListByRange(c.Request().Context(), storeID, start, end)
    if err != nil {
        return errorJSON(c, "list reservations", err)
    }
    return c.JSON(http.StatusOK, rows)
}

// Delete handles DELETE /v1/reservations/:id.  Deleting an id that does
// not exist still answers 204.
func (h *ReservationHandler) Delete(c echo.Context) error {
    id, ok := parsePositive(c.Param("id"))
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
        return errorJSON(c, "delete reservation", err)
    }
    return c.NoContent(http.StatusNoContent)
}
