package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/kiosk-table-reservation/internal/clock"
	"github.com/iliyamo/kiosk-table-reservation/internal/config"
	"github.com/iliyamo/kiosk-table-reservation/internal/control"
	"github.com/iliyamo/kiosk-table-reservation/internal/handler"
	"github.com/iliyamo/kiosk-table-reservation/internal/model"
	"github.com/iliyamo/kiosk-table-reservation/internal/registry"
	"github.com/iliyamo/kiosk-table-reservation/internal/repository"
	"github.com/iliyamo/kiosk-table-reservation/internal/service"
	"github.com/iliyamo/kiosk-table-reservation/internal/utils"
)

const testSecret = "test-secret"

type testApp struct {
	e        *echo.Echo
	registry *registry.Registry
	devices  *handler.DeviceHandler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	now := time.Date(2025, 1, 1, 10, 15, 0, 0, time.UTC)
	clk := clock.NewFixed(now)

	stores := repository.NewMemoryStoreRepo()
	stores.PutStore(model.Store{ID: 1, Name: "Gangnam", TableCount: 4})
	stores.PutStore(model.Store{ID: 2, Name: "Hongdae", TableCount: 2})
	stores.AddMenu(model.StoreMenu{StoreID: 1, MenuName: "30 min", Price: 7000, Minutes: 30})

	users := repository.NewMemoryUserRepo()
	if _, err := users.Add("staff", "Kim", "pw", 1, 4); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	reg := registry.New()
	dispatcher := control.NewDispatcher(reg, control.WithClock(clk), control.WithSendTimeout(time.Second))
	svc := service.NewReservationService(repository.NewMemoryReservationRepo(), clk,
		service.WithStoreReader(stores),
		service.WithConnectionStatus(reg),
	)
	devices := handler.NewDeviceHandler(reg, time.Second)

	e := New(Handlers{
		Health:       handler.Health(nil),
		Auth:         handler.NewAuthHandler(config.Config{JWTSecret: testSecret, AccessTTLMin: 5}, users),
		Reservations: handler.NewReservationHandler(svc),
		Tables:       handler.NewTableHandler(svc),
		Menus:        handler.NewMenuHandler(stores),
		Blinds:       handler.NewBlindHandler(dispatcher),
		Devices:      devices,
	}, Options{JWTSecret: testSecret})
	return &testApp{e: e, registry: reg, devices: devices}
}

func token(t *testing.T, storeID int64) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, 1, storeID, 5)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok.Token
}

func (a *testApp) do(t *testing.T, method, target, tok, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

const reservationBody = `{"table_num":3,"phone":"010","menu_name":"30 min","price":7000,` +
	`"start_time":"2025-01-01T10:00:00","end_time":"2025-01-01T10:30:00","auth_no":"A1"}`

func TestHealthAndLogin(t *testing.T) {
	app := newTestApp(t)
	if rec := app.do(t, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec := app.do(t, http.MethodPost, "/v1/auth/login", "", `{"username":"staff","password":"pw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		User   struct{ StoreID int64 `json:"store_id"` } `json:"user"`
		Access struct{ Token string } `json:"access"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.StoreID != 1 || resp.Access.Token == "" {
		t.Fatalf("unexpected login response %s", rec.Body)
	}
	if rec := app.do(t, http.MethodGet, "/v1/tables", resp.Access.Token, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected issued token to work, got %d", rec.Code)
	}

	if rec := app.do(t, http.MethodPost, "/v1/auth/login", "", `{"username":"staff","password":"nope"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestReservationLifecycle(t *testing.T) {
	app := newTestApp(t)
	staff := token(t, 1)

	rec := app.do(t, http.MethodPost, "/v1/reservations", staff, reservationBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var created struct{ ID int64 }
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	if rec := app.do(t, http.MethodPost, "/v1/reservations", staff, reservationBody); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on overlap, got %d", rec.Code)
	}
	bad := strings.Replace(reservationBody, "2025-01-01T10:30:00", "2025-01-01T09:30:00", 1)
	if rec := app.do(t, http.MethodPost, "/v1/reservations", staff, bad); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on reversed interval, got %d", rec.Code)
	}

	rec = app.do(t, http.MethodGet, "/v1/reservations/range?start=2025-01-01&end=2025-01-01", staff, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var rows []model.Reservation
	_ = json.Unmarshal(rec.Body.Bytes(), &rows)
	if len(rows) != 1 || rows[0].ID != created.ID || rows[0].StartTime != "2025-01-01T10:00:00" || rows[0].StoreID != 1 {
		t.Fatalf("unexpected rows %+v", rows)
	}

	rec = app.do(t, http.MethodGet, "/v1/tables", staff, "")
	var tables struct {
		Active map[string]int `json:"active"`
		Board  service.Board  `json:"board"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &tables)
	if tables.Active["3"] != 15 || len(tables.Board.Tables) != 4 {
		t.Fatalf("unexpected tables response %s", rec.Body)
	}

	path := "/v1/reservations/" + strconv.FormatInt(created.ID, 10)
	for i := 0; i < 2; i++ {
		if rec := app.do(t, http.MethodDelete, path, staff, ""); rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204 on delete %d, got %d", i, rec.Code)
		}
	}
	rec = app.do(t, http.MethodGet, "/v1/reservations", staff, "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty history, got %s", rec.Body)
	}
}

func TestStoreScoping(t *testing.T) {
	app := newTestApp(t)
	staff, admin := token(t, 1), token(t, model.AdminStoreID)

	tests := []struct {
		name   string
		method string
		target string
		tok    string
		want   int
	}{
		{"no token", http.MethodGet, "/v1/tables", "", http.StatusUnauthorized},
		{"foreign store", http.MethodGet, "/v1/tables?store_id=2", staff, http.StatusForbidden},
		{"foreign blind", http.MethodPost, "/v1/blind/2/1/open", staff, http.StatusForbidden},
		{"admin range without store", http.MethodGet, "/v1/reservations/range?start=2025-01-01&end=2025-01-02", admin, http.StatusBadRequest},
		{"admin range with store", http.MethodGet, "/v1/reservations/range?start=2025-01-01&end=2025-01-02&store_id=2", admin, http.StatusOK},
		{"bad range date", http.MethodGet, "/v1/reservations/range?start=2025-1-1&end=2025-01-02", staff, http.StatusBadRequest},
		{"unknown store board", http.MethodGet, "/v1/tables?store_id=9", admin, http.StatusBadRequest},
		{"menus", http.MethodGet, "/v1/stores/1/menus", staff, http.StatusOK},
		{"unknown command", http.MethodPost, "/v1/blind/1/1/toggle", staff, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if rec := app.do(t, tc.method, tc.target, tc.tok, ""); rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body)
			}
		})
	}
}

func TestBlindWithoutDevice(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodPost, "/v1/blind/1/2/close", token(t, 1), "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"no_channel"`) {
		t.Fatalf("expected no_channel outcome, got %d %s", rec.Code, rec.Body)
	}
}

func TestDeviceReceivesBlindCommand(t *testing.T) {
	app := newTestApp(t)
	srv := httptest.NewServer(app.e)
	defer srv.Close()
	defer app.devices.CloseAll()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/1/3"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitFor(t, func() bool { _, ok := app.registry.Lookup(1, 3); return ok })

	rec := app.do(t, http.MethodPost, "/v1/blind/1/3/open", token(t, 1), "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"delivered"`) {
		t.Fatalf("expected delivered outcome, got %d %s", rec.Code, rec.Body)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != "open" {
		t.Fatalf("expected open, got %q", msg)
	}

	rec = app.do(t, http.MethodGet, "/v1/tables", token(t, 1), "")
	if !strings.Contains(rec.Body.String(), `"table_num":3,"active":false,"remaining_minutes":0,"device_connected":true`) {
		t.Fatalf("expected table 3 connected, got %s", rec.Body)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	waitFor(t, func() bool { return app.registry.Len() == 0 })
}

func TestDeviceRejectsBadPath(t *testing.T) {
	app := newTestApp(t)
	if rec := app.do(t, http.MethodGet, "/ws/0/3", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for !cond() {
		select {
		case <-ctx.Done():
			t.Fatalf("condition not met in time")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
