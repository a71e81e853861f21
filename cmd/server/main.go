package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/hiroki-koketsu/go-otel-todo/internal/config"
	"github.com/hiroki-koketsu/go-otel-todo/internal/handler"
	"github.com/hiroki-koketsu/go-otel-todo/internal/model"
	"github.com/hiroki-koketsu/go-otel-todo/internal/repository"
	"github.com/hiroki-koketsu/go-otel-todo/internal/telemetry"
	"github.com/hiroki-koketsu/go-otel-todo/internal/view"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Create a basic logger for startup (before OTel is initialized)
	startupLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	startupLogger.Info("starting application",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	ctx := context.Background()

	// Initialize OpenTelemetry tracer provider
	tp, err := telemetry.InitTracerProvider(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		startupLogger.Error("failed to initialize tracer provider", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize OpenTelemetry meter provider
	mp, err := telemetry.InitMeterProvider(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		startupLogger.Error("failed to initialize meter provider", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize task repository
	var opts []repository.Option
	if cfg.SeedData {
		opts = append(opts, repository.WithSeed(model.SeedTasks(time.Now())...))
	}
	taskRepo := repository.NewTaskRepository(opts...)

	// Initialize OpenTelemetry logger provider (after other providers for log-trace correlation)
	lp, logger, err := telemetry.InitLoggerProvider(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		startupLogger.Error("failed to initialize logger provider", slog.Any("error", err))
		os.Exit(1)
	}

	// Create metrics instruments
	meter := otel.Meter(cfg.ServiceName)
	metrics, err := telemetry.NewMetrics(meter, taskRepo.Count)
	if err != nil {
		logger.Error("failed to create metrics", slog.Any("error", err))
		os.Exit(1)
	}

	views, err := view.NewRenderer()
	if err != nil {
		logger.Error("failed to load templates", slog.Any("error", err))
		os.Exit(1)
	}

	r := handler.NewRouter(taskRepo, views, logger, metrics)

	// Wrap router with OpenTelemetry HTTP instrumentation
	otelHandler := otelhttp.NewHandler(r, "http-server",
		otelhttp.WithFilter(func(r *http.Request) bool {
			// Skip tracing for health checks
			return r.URL.Path != "/health"
		}),
	)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      otelHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Block until SIGINT/SIGTERM, then run every shutdown operation
	// within the configured timeout.
	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			logger.Info("shutting down server...")
			return server.Shutdown(ctx)
		},
		"tracer-provider": func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
		"meter-provider": func(ctx context.Context) error {
			return mp.Shutdown(ctx)
		},
		"logger-provider": func(ctx context.Context) error {
			return lp.Shutdown(ctx)
		},
	})

	exitCode := <-wait
	startupLogger.Info("server stopped", slog.Int("exit_code", exitCode))
	os.Exit(exitCode)
}
