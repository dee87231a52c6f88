package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/events"
	httpapi "github.com/aussiebroadwan/docket/internal/groups/http"
	"github.com/aussiebroadwan/docket/internal/groups/service"
	"github.com/aussiebroadwan/docket/internal/groups/store"
	"github.com/aussiebroadwan/docket/internal/groups/store/drivers/mongodb"
	"github.com/aussiebroadwan/docket/internal/groups/store/drivers/sqlite"
	"github.com/aussiebroadwan/docket/pkg/httpx"
	"github.com/aussiebroadwan/docket/pkg/jwtx"
	"github.com/aussiebroadwan/docket/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the groups service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	verifier   jwtx.Verifier
	redis      *redis.Client // Optional: only when EVENTS_REDIS_ADDR is set
	redisSink  *events.RedisSink
	dispatcher *events.Dispatcher

	// Services
	groupService        *service.GroupService
	membershipService   *service.MembershipService
	inviteService       *service.InviteService
	activityService     *service.ActivityService
	contentService      *service.ContentService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "groups-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	httpx.LoadRateLimitsFromEnv()

	verifier, err := jwtx.NewHS256([]byte(cfg.JWTSecret), cfg.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	app.verifier = verifier

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initEvents(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("groups service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store", app.cfg.StoreDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown stops accepting requests, drains in-flight events and closes
// the stores.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down groups service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", slogx.Err(err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slogx.Err(err))
		}
	}

	app.housekeepingService.Stop()

	// Sinks write to the database, so they finish before it closes.
	app.dispatcher.Wait()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", slogx.Err(err))
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", slogx.Err(err))
		return err
	}

	app.logger.Info("groups service stopped")
	return nil
}

// initDatabase opens the configured store driver and applies its migrations.
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.StoreDriver {
	case DriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err = mongodb.NewStore(ctx, app.cfg.MongoURI, app.cfg.MongoDatabase)
	default:
		db, err = sqlite.NewStore(app.cfg.DatabaseFile)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.StoreDriver)
	return nil
}

// initEvents builds the dispatcher. The activity log sink is always on; the
// Redis stream sink is added when an address is configured.
func (app *Application) initEvents() error {
	sinks := []events.Sink{&events.ActivitySink{Store: app.db}}

	if app.cfg.EventsRedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: app.cfg.EventsRedisAddr})
		app.redisSink = events.NewRedisSink(app.redis, app.cfg.EventsRedisStream)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.redisSink.Ping(ctx); err != nil {
			_ = app.redis.Close()
			return fmt.Errorf("failed to connect to event stream: %w", err)
		}

		sinks = append(sinks, app.redisSink)
		app.logger.Info("redis event stream enabled", "stream", app.cfg.EventsRedisStream)
	}

	app.dispatcher = events.NewDispatcher(app.logger, app.cfg.EventsTimeout, sinks...)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	// Validate already accepted the policy.
	policy, _ := service.ParseInvitePolicy(app.cfg.InvitePolicy)

	app.groupService = &service.GroupService{Store: app.db, Events: app.dispatcher}
	app.membershipService = &service.MembershipService{Store: app.db, Events: app.dispatcher}
	app.inviteService = &service.InviteService{
		Store:   app.db,
		Events:  app.dispatcher,
		TTL:     app.cfg.InviteTTL,
		MaxUses: app.cfg.InviteMaxUses,
		Policy:  policy,
	}
	app.activityService = &service.ActivityService{Store: app.db}
	app.contentService = &service.ContentService{Store: app.db, Events: app.dispatcher}
	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.ActivityRetention,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.verifier, BuildVersion, app.db, app.logger)

	router.GroupService = app.groupService
	router.MembershipService = app.membershipService
	router.InviteService = app.inviteService
	router.ActivityService = app.activityService
	router.ContentService = app.contentService
	router.UserService = app.userService
	if app.redisSink != nil {
		router.Events = app.redisSink
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
