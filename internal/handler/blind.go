package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/kiosk-table-reservation/internal/control"
    "github.com/iliyamo/kiosk-table-reservation/internal/middleware"
)

// CommandSender is satisfied by *control.Dispatcher.
type CommandSender interface {
    SendCommand(ctx context.Context, storeID int64, tableNum int, cmd control.Command) (control.Outcome, error)
}

// BlindHandler drives table blinds through connected devices.
type BlindHandler struct {
    Sender CommandSender
}

func NewBlindHandler(s CommandSender) *BlindHandler {
    if s == nil {
        panic("nil sender passed to NewBlindHandler")
    }
    return &BlindHandler{Sender: s}
}

// Command handles POST /v1/blind/:store_id/:table_num/:command.  A table
// without a connected device answers 200 with outcome no_channel; a failed
// write to a connected device answers 502.
func (h *BlindHandler) Command(c echo.Context) error {
    storeID, herr := middleware.TargetStore(c, c.Param("store_id"))
    if herr != nil {
        return httpErrorJSON(c, herr)
    }
    table, ok := parsePositive(c.Param("table_num"))
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table_num"})
    }
    cmd, err := control.ParseCommand(c.Param("command"))
    if err != nil {
        return errorJSON(c, "blind command", err)
    }

    outcome, err := h.Sender.SendCommand(c.Request().Context(), storeID, int(table), cmd)
    if err != nil {
        c.Logger().Warnf("blind: %v", err)
        return c.JSON(http.StatusBadGateway, echo.Map{"error": "device write failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"outcome": outcome})
}
