// Package main is the entry point for the agenda service. It wires all
// dependencies using samber/do v2, starts the HTTP server, and handles
// graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	adapthttp "github.com/jlundqvist/agenda/internal/adapters/http"
	"github.com/jlundqvist/agenda/internal/adapters/http/handlers"
	"github.com/jlundqvist/agenda/internal/adapters/http/middleware"
	"github.com/jlundqvist/agenda/internal/adapters/storage/memory"
	"github.com/jlundqvist/agenda/internal/adapters/storage/postgres"
	"github.com/jlundqvist/agenda/internal/adapters/storage/sqlite"
	"github.com/jlundqvist/agenda/internal/app"
	"github.com/jlundqvist/agenda/internal/platform/clock"
	"github.com/jlundqvist/agenda/internal/platform/config"
	"github.com/jlundqvist/agenda/internal/platform/health"
	"github.com/jlundqvist/agenda/internal/platform/logging"
	"github.com/jlundqvist/agenda/internal/platform/telemetry"
	"github.com/jlundqvist/agenda/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	serverShutdownTimeout = 15 * time.Second
	otelShutdownTimeout   = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("AGENDA_PROFILE")
	if profile == "" {
		return errors.New("AGENDA_PROFILE environment variable is required (e.g. local, dev, prod)")
	}

	// Bootstrap: config, logger, telemetry.
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx := context.Background()
	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	// Storage is opened before the DI graph so that a bad driver config fails
	// fast, and closed last on the way out.
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.close()

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)
	do.ProvideValue(injector, store)

	registerDependencies(injector, cfg, logger)

	// Resolve the server (eagerly wires the full graph).
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	// Register health checkers after the graph is wired.
	registry := do.MustInvoke[ports.HealthRegistry](injector)
	registry.Register(store.checker)

	// Start server in background.
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for shutdown signal or server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	// Graceful shutdown: drain HTTP requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Wait for Start() goroutine to return.
	<-serverErr

	// Flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer otelCancel()

	if err := otel.Shutdown(otelCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

// storage bundles the repository views of whichever driver the config selects.
type storage struct {
	tasks   ports.TaskRepository
	events  ports.EventRepository
	tx      ports.Transactor
	checker ports.HealthChecker
	close   func()
}

// openStorage opens the configured storage driver and returns its repository
// views. The returned tx spans both repositories and backs the dashboard's
// snapshot reads.
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return &storage{
			tasks:   store.Tasks(),
			events:  store.Events(),
			tx:      store,
			checker: store,
			close:   func() { _ = store.Close() },
		}, nil

	case config.DriverPostgres:
		store, err := postgres.Open(ctx, cfg.Storage.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		return &storage{
			tasks:   store.Tasks(),
			events:  store.Events(),
			tx:      store,
			checker: store,
			close:   store.Close,
		}, nil

	case config.DriverMemory:
		store := memory.New()
		return &storage{
			tasks:   store.Tasks(),
			events:  store.Events(),
			tx:      store,
			checker: store,
			close:   func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
	}, nil
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	do.ProvideValue[clock.Clock](injector, clock.System{})

	do.Provide(injector, func(i do.Injector) (ports.TaskService, error) {
		store := do.MustInvoke[*storage](i)
		clk := do.MustInvoke[clock.Clock](i)
		return app.NewTaskService(store.tasks, clk, logger, cfg.API.MaxPageSize), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.EventService, error) {
		store := do.MustInvoke[*storage](i)
		clk := do.MustInvoke[clock.Clock](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return app.NewEventService(store.events, clk, logger, metrics, cfg.API.MaxPageSize), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.DashboardService, error) {
		store := do.MustInvoke[*storage](i)
		clk := do.MustInvoke[clock.Clock](i)
		return app.NewDashboardService(store.tasks, store.events, store.tx, clk, logger), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.TaskHandler, error) {
		svc := do.MustInvoke[ports.TaskService](i)
		return handlers.NewTaskHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.EventHandler, error) {
		svc := do.MustInvoke[ports.EventService](i)
		return handlers.NewEventHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.DashboardHandler, error) {
		svc := do.MustInvoke[ports.DashboardService](i)
		return handlers.NewDashboardHandler(svc), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		registry := do.MustInvoke[ports.HealthRegistry](i)
		return handlers.NewHealthHandler(registry), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		taskH := do.MustInvoke[*handlers.TaskHandler](i)
		eventH := do.MustInvoke[*handlers.EventHandler](i)
		dashH := do.MustInvoke[*handlers.DashboardHandler](i)
		healthH := do.MustInvoke[*handlers.HealthHandler](i)
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return adapthttp.NewRouter(taskH, eventH, dashH, healthH,
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
			middleware.Timeout(cfg.Server.RequestTimeout),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})
}
