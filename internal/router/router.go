package router // package router defines how HTTP routes are registered for the API

import (
	"expvar"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/kiosk-table-reservation/internal/config"
	"github.com/iliyamo/kiosk-table-reservation/internal/handler"
	"github.com/iliyamo/kiosk-table-reservation/internal/middleware"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Health       echo.HandlerFunc
	Auth         *handler.AuthHandler
	Reservations *handler.ReservationHandler
	Tables       *handler.TableHandler
	Menus        *handler.MenuHandler
	Blinds       *handler.BlindHandler
	Devices      *handler.DeviceHandler
}

// Options carries the middleware settings.  A nil Redis client disables
// rate limiting and the menu cache.
type Options struct {
	JWTSecret       string
	Redis           *redis.Client
	APIRateLimit    config.RateLimitConfig
	DeviceRateLimit config.RateLimitConfig
	MenuCache       config.CacheConfig
}

// New builds the Echo instance with every route registered.
func New(h Handlers, opt Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(requestLogger())

	RegisterRoutes(e, h, opt)
	return e
}

// RegisterRoutes registers all routes on e.
//
//	GET    /healthz
//	GET    /metrics
//	POST   /v1/auth/login
//	GET    /v1/reservations
//	POST   /v1/reservations
//	GET    /v1/reservations/range
//	DELETE /v1/reservations/:id
//	GET    /v1/tables
//	GET    /v1/stores/:id/menus
//	POST   /v1/blind/:store_id/:table_num/:command
//	GET    /ws/:store_id/:table_num
func RegisterRoutes(e *echo.Echo, h Handlers, opt Options) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(expvar.Handler()))

	e.POST("/v1/auth/login", h.Auth.Login)

	// Store-scoped API: every handler resolves its target store from the
	// token and the optional store_id.
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(opt.JWTSecret))
	v1.Use(middleware.RequireStore())
	v1.Use(middleware.NewTokenBucket(opt.APIRateLimit, opt.Redis))

	v1.GET("/reservations", h.Reservations.List)
	v1.POST("/reservations", h.Reservations.Add)
	v1.GET("/reservations/range", h.Reservations.Range)
	v1.DELETE("/reservations/:id", h.Reservations.Delete)
	v1.GET("/tables", h.Tables.Tables)
	v1.GET("/stores/:id/menus", h.Menus.List, middleware.NewMenuCache(opt.MenuCache, opt.Redis))
	v1.POST("/blind/:store_id/:table_num/:command", h.Blinds.Command)

	// Devices authenticate by network placement, not tokens.
	e.GET("/ws/:store_id/:table_num", h.Devices.Connect, middleware.NewTokenBucket(opt.DeviceRateLimit, opt.Redis))
}
