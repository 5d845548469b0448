package main // Entry point package

import (
	"context"
	"database/sql"
	"expvar"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/iliyamo/kiosk-table-reservation/internal/clock"
	"github.com/iliyamo/kiosk-table-reservation/internal/config"
	"github.com/iliyamo/kiosk-table-reservation/internal/control"
	"github.com/iliyamo/kiosk-table-reservation/internal/database"
	"github.com/iliyamo/kiosk-table-reservation/internal/handler"
	"github.com/iliyamo/kiosk-table-reservation/internal/model"
	"github.com/iliyamo/kiosk-table-reservation/internal/queue"
	"github.com/iliyamo/kiosk-table-reservation/internal/registry"
	"github.com/iliyamo/kiosk-table-reservation/internal/repository"
	"github.com/iliyamo/kiosk-table-reservation/internal/router"
	"github.com/iliyamo/kiosk-table-reservation/internal/service"
	"github.com/iliyamo/kiosk-table-reservation/internal/telemetry"
)

const serviceName = "kiosk-table-reservation"

// eventSink receives both reservation and blind command events.
type eventSink interface {
	service.EventPublisher
	control.Auditor
}

// storage groups the driver-specific repositories.
type storage struct {
	db           *sql.DB
	reservations service.ReservationStore
	stores       interface {
		service.StoreReader
		handler.MenuLister
	}
	users interface {
		handler.UserFinder
		EnsureAdmin(ctx context.Context, username, name, password string, cost int) error
	}
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("dotenv: %v", err)
	}
	cfg := config.Load()

	shutdownTelemetry := telemetry.Setup(serviceName, cfg.OTLPEndpoint, cfg.Env)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := openStorage(ctx, cfg)
	if st.db != nil {
		defer st.db.Close()
	}
	if cfg.AdminPassword != "" {
		if err := st.users.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminName, cfg.AdminPassword, cfg.BcryptCost); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
	} else {
		log.Printf("ADMIN_PASSWORD not set; admin account not seeded")
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}

	var events eventSink = service.NopPublisher{}
	if cfg.EventsEnabled {
		pub := service.NewPublisher(cfg.AMQPURL)
		defer pub.Close()
		events = pub
		go func() {
			if err := queue.StartAuditConsumer(ctx, cfg.AMQPURL, cfg.AuditLogDir); err != nil && ctx.Err() == nil {
				log.Printf("audit-consumer: %v", err)
			}
		}()
	}

	clk := clock.NewLocal(cfg.LocalOffset)
	reg := registry.New()
	expvar.Publish("devices_connected", expvar.Func(func() any { return reg.Len() }))

	dispatcher := control.NewDispatcher(reg,
		control.WithAuditor(events),
		control.WithClock(clk),
		control.WithSendTimeout(cfg.DeviceWriteTimeout),
	)
	svc := service.NewReservationService(st.reservations, clk,
		service.WithStoreReader(st.stores),
		service.WithConnectionStatus(reg),
		service.WithPublisher(events),
	)
	devices := handler.NewDeviceHandler(reg, cfg.DeviceWriteTimeout)

	var pinger handler.Pinger
	if st.db != nil {
		pinger = st.db
	}
	e := router.New(router.Handlers{
		Health:       handler.Health(pinger),
		Auth:         handler.NewAuthHandler(cfg, st.users),
		Reservations: handler.NewReservationHandler(svc),
		Tables:       handler.NewTableHandler(svc),
		Menus:        handler.NewMenuHandler(st.stores),
		Blinds:       handler.NewBlindHandler(dispatcher),
		Devices:      devices,
	}, router.Options{
		JWTSecret:       cfg.JWTSecret,
		Redis:           rdb,
		APIRateLimit:    config.LoadRateLimitConfig(),
		DeviceRateLimit: config.LoadDeviceRateLimitConfig(),
		MenuCache:       config.LoadCacheConfig(),
	})

	// Websocket upgrades go straight to Echo; the otelhttp wrapper does not
	// expose the connection for hijacking.
	traced := otelhttp.NewHandler(e, serviceName)
	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/ws/") {
			e.ServeHTTP(w, r)
			return
		}
		traced.ServeHTTP(w, r)
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	server.RegisterOnShutdown(devices.CloseAll)

	go func() {
		log.Printf("listening on %s (env=%s, storage=%s, local_offset=%s)", server.Addr, cfg.Env, cfg.StorageDriver, cfg.LocalOffset)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func openStorage(ctx context.Context, cfg config.Config) storage {
	if cfg.StorageDriver == config.DriverMemory {
		stores := repository.NewMemoryStoreRepo()
		// memory mode serves a single demo store
		stores.PutStore(model.Store{ID: 1, Name: "Demo store", TableCount: model.DefaultTableCount})
		stores.AddMenu(model.StoreMenu{StoreID: 1, MenuName: "30 min", Price: 7000, Minutes: 30})
		stores.AddMenu(model.StoreMenu{StoreID: 1, MenuName: "1 hour", Price: 12000, Minutes: 60})
		log.Printf("storage: memory driver, data is lost on restart")
		return storage{
			reservations: repository.NewMemoryReservationRepo(),
			stores:       stores,
			users:        repository.NewMemoryUserRepo(),
		}
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	return storage{
		db:           db,
		reservations: repository.NewReservationRepo(db),
		stores:       repository.NewStoreRepo(db),
		users:        repository.NewUserRepo(db),
	}
}
