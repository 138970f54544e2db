package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/pawhaven/bookingsync/internal/api"
	"github.com/pawhaven/bookingsync/internal/fanout"
	"github.com/pawhaven/bookingsync/internal/mirror"
	"github.com/pawhaven/bookingsync/internal/ports"
	"github.com/pawhaven/bookingsync/internal/service"
	"github.com/pawhaven/bookingsync/internal/sweeper"
	"github.com/pawhaven/bookingsync/internal/utils"
	"github.com/pawhaven/bookingsync/pkg/config"
	"github.com/pawhaven/bookingsync/pkg/health"
	"github.com/pawhaven/bookingsync/pkg/petapi"
)

const version = "1.0.0"

type App struct {
	config  *config.Config
	log     *slog.Logger
	server  *http.Server
	rdb     *redis.Client
	mirror  *mirror.Mirror
	service ports.BookingService
	sweeper *sweeper.Sweeper
}

func NewApp(cfg *config.Config, log *slog.Logger) *App {
	return &App{
		config: cfg,
		log:    log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.setupMirror(ctx); err != nil {
		return fmt.Errorf("mirror setup failed: %w", err)
	}

	a.setupServices()
	a.setupServer()
	return nil
}

func (a *App) setupMirror(ctx context.Context) error {
	var store mirror.Store
	switch a.config.Mirror.Backend {
	case config.MirrorBackendRedis:
		rdb, err := mirror.NewRedisClient(ctx, mirror.RedisConfig{
			Addr:     a.config.Mirror.RedisAddr,
			Password: a.config.Mirror.RedisPassword,
			DB:       a.config.Mirror.RedisDB,
		})
		if err != nil {
			return err
		}
		a.rdb = rdb
		store = mirror.NewRedisStore(rdb, a.config.Mirror.Key)
	default:
		store = mirror.NewFileStore(a.config.Mirror.FilePath)
	}

	a.mirror = mirror.New(store, a.log)
	loaded := a.mirror.Load(ctx)
	a.log.Info("booking mirror loaded", "backend", a.config.Mirror.Backend, "count", len(loaded))
	return nil
}

func (a *App) setupServices() {
	apiClient := petapi.NewClient(
		petapi.WithBaseURL(a.config.API.BaseURL),
		petapi.WithToken(a.config.API.Token),
		petapi.WithHTTPClient(&http.Client{Timeout: a.config.API.Timeout}),
	)
	hub := fanout.New(a.log)

	a.service = service.NewBookingService(apiClient, a.mirror, hub, service.WithLogger(a.log))
	a.sweeper = sweeper.New(a.service, a.config.Sweep.Interval, a.log)
}

func (a *App) setupServer() {
	router := http.NewServeMux()
	const versionPrefix = "/v1"

	router.HandleFunc(versionPrefix+"/health", health.HealthGet(version, a.mirror.Len))
	router.Handle("/metrics", promhttp.Handler())

	router.HandleFunc(versionPrefix+"/bookings",
		utils.AllowedMethods(api.BookingsHandler(a.service), "GET", "POST"))
	router.HandleFunc(versionPrefix+"/bookings/",
		utils.AllowedMethods(api.BookingActionHandler(a.service), "POST"))
	router.HandleFunc(versionPrefix+"/sweep",
		utils.AllowedMethods(api.SweepHandler(a.service), "POST"))
	router.HandleFunc(versionPrefix+"/refresh",
		utils.AllowedMethods(api.RefreshHandler(a.service), "POST"))
	router.HandleFunc(versionPrefix+"/earnings",
		utils.AllowedMethods(api.EarningsHandler(a.service), "GET"))

	a.server = &http.Server{
		Addr:         a.config.Server.Address,
		Handler:      router,
		WriteTimeout: a.config.Server.WriteTimeout,
		ReadTimeout:  a.config.Server.ReadTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErrors := make(chan error, 1)

	go func() {
		a.log.Info("starting server", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	if a.config.Sweep.Enabled {
		go a.sweeper.Run(ctx)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-shutdown:
		a.log.Info("starting graceful shutdown")
		return a.Shutdown()
	case <-ctx.Done():
		return a.Shutdown()
	}
}

func (a *App) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if a.rdb != nil {
		a.rdb.Close()
	}

	return nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	app := NewApp(cfg, logger)
	if err := app.Initialize(ctx); err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("application error", "error", err)
		os.Exit(1)
	}
}
