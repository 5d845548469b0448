package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/kiosk-table-reservation/internal/middleware"
    "github.com/iliyamo/kiosk-table-reservation/internal/service"
)

// TableHandler reports live table occupancy.
type TableHandler struct {
    Svc *service.ReservationService
}

func NewTableHandler(svc *service.ReservationService) *TableHandler {
    if svc == nil {
        panic("nil service passed to NewTableHandler")
    }
    return &TableHandler{Svc: svc}
}

type tablesResp struct {
    // Active maps table number to whole remaining minutes.
    Active map[int]int   `json:"active"`
    Board  service.Board `json:"board"`
}

// Tables handles GET /v1/tables[?store_id=].
func (h *TableHandler) Tables(c echo.Context) error {
    storeID, herr := middleware.TargetStore(c, c.QueryParam("store_id"))
    if herr != nil {
        return httpErrorJSON(c, herr)
    }
    board, err := h.Svc.TableBoard(c.Request().Context(), storeID)
    if err != nil {
        return errorJSON(c, "table board", err)
    }
    active := make(map[int]int)
    for _, t := range board.Tables {
        if t.Active {
            active[t.TableNum] = t.RemainingMinutes
        }
    }
    return c.JSON(http.StatusOK, tablesResp{Active: active, Board: board})
}
