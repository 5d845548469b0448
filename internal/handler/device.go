package handler

import (
    "context"
    "errors"
    "log"
    "net/http"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/gorilla/websocket"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/kiosk-table-reservation/internal/registry"
)

// devices never send more than a short status line
const deviceReadLimit = 512

// ChannelRegistry is the write side of the registry used by device sessions.
type ChannelRegistry interface {
    Register(storeID int64, tableNum int, ch registry.Channel) registry.Lease
    Deregister(lease registry.Lease) bool
}

// DeviceHandler upgrades table devices to websockets and keeps them
// registered for as long as the connection lives.
type DeviceHandler struct {
    Registry     ChannelRegistry
    WriteTimeout time.Duration
    Upgrader     websocket.Upgrader

    mu    sync.Mutex
    conns map[*websocket.Conn]struct{}
}

func NewDeviceHandler(reg ChannelRegistry, writeTimeout time.Duration) *DeviceHandler {
    if reg == nil {
        panic("nil registry passed to NewDeviceHandler")
    }
    if writeTimeout <= 0 {
        writeTimeout = 5 * time.Second
    }
    return &DeviceHandler{
        Registry:     reg,
        WriteTimeout: writeTimeout,
        Upgrader: websocket.Upgrader{
            ReadBufferSize:  1024,
            WriteBufferSize: 1024,
            // devices are not browsers and send no meaningful Origin
            CheckOrigin: func(*http.Request) bool { return true },
        },
        conns: map[*websocket.Conn]struct{}{},
    }
}

// Connect handles GET /ws/:store_id/:table_num.  The connection registers as
// the table's channel, replacing any earlier one, and deregisters on close.
// Text frames from the device are read and discarded.
func (h *DeviceHandler) Connect(c echo.Context) error {
    storeID, ok := parsePositive(c.Param("store_id"))
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store_id"})
    }
    table, ok := parsePositive(c.Param("table_num"))
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table_num"})
    }

    conn, err := h.Upgrader.Upgrade(c.Response(), c.Request(), nil)
    if err != nil {
        // Upgrade already wrote the error response.
        log.Printf("device: upgrade store=%d table=%d failed: %v", storeID, table, err)
        return nil
    }
    connID := uuid.NewString()
    h.track(conn)
    defer h.untrack(conn)

    ch := &wsChannel{conn: conn, timeout: h.WriteTimeout}
    lease := h.Registry.Register(storeID, int(table), ch)
    log.Printf("device: connected conn=%s store=%d table=%d remote=%s", connID, storeID, table, c.RealIP())

    conn.SetReadLimit(deviceReadLimit)
    for {
        if _, _, err := conn.ReadMessage(); err != nil {
            if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
                log.Printf("device: read conn=%s: %v", connID, err)
            }
            break
        }
    }

    replaced := !h.Registry.Deregister(lease)
    ch.close()
    log.Printf("device: disconnected conn=%s store=%d table=%d replaced=%t", connID, storeID, table, replaced)
    return nil
}

// CloseAll closes every live device connection.  Hijacked connections are
// not closed by http.Server.Shutdown, so it is registered with
// RegisterOnShutdown.
func (h *DeviceHandler) CloseAll() {
    h.mu.Lock()
    conns := make([]*websocket.Conn, 0, len(h.conns))
    for conn := range h.conns {
        conns = append(conns, conn)
    }
    h.mu.Unlock()
    for _, conn := range conns {
        msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown")
        _ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
        _ = conn.Close()
    }
}

func (h *DeviceHandler) track(conn *websocket.Conn) {
    h.mu.Lock()
    h.conns[conn] = struct{}{}
    h.mu.Unlock()
}

func (h *DeviceHandler) untrack(conn *websocket.Conn) {
    h.mu.Lock()
    delete(h.conns, conn)
    h.mu.Unlock()
}

var errChannelClosed = errors.New("device channel closed")

// wsChannel adapts a websocket connection to registry.Channel.  gorilla
// allows one concurrent writer, so writes are serialized.
type wsChannel struct {
    conn    *websocket.Conn
    timeout time.Duration

    mu     sync.Mutex
    closed bool
}

// Send writes msg as one text frame.  The write deadline is the earlier of
// the context deadline and now+timeout.
func (w *wsChannel) Send(ctx context.Context, msg string) error {
    if err := ctx.Err(); err != nil {
        return err
    }
    w.mu.Lock()
    defer w.mu.Unlock()
    if w.closed {
        return errChannelClosed
    }
    deadline := time.Now().Add(w.timeout)
    if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
        deadline = d
    }
    if err := w.conn.SetWriteDeadline(deadline); err != nil {
        return err
    }
    return w.conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

func (w *wsChannel) close() {
    w.mu.Lock()
    w.closed = true
    w.mu.Unlock()
    _ = w.conn.Close()
}
