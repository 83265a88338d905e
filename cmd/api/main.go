package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"userapi/docs"
	"userapi/internal/config"
	handlers "userapi/internal/http/handler"
	"userapi/internal/http/middleware"
	"userapi/internal/interactor"
	"userapi/internal/logger"
	"userapi/internal/otel"
	"userapi/internal/storage"
)

// @title User API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	appLog := logger.Stdout(cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, appLog)
	if err != nil {
		fatal(appLog, "failed to initialize tracing", logger.Err(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			appLog.Error("tracer shutdown failed", logger.Err(err))
		}
	}()

	store, err := defaultOpener.open(ctx, cfg, appLog)
	if err != nil {
		fatal(appLog, "failed to open user store", logger.Err(err), slog.String("store_driver", cfg.StoreDriver))
	}
	defer store.close()

	// Object storage is optional; without it the export endpoint answers 503.
	var objStore storage.Storage
	if cfg.MinIO.Enabled() {
		objStore, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			fatal(appLog, "failed to initialize object storage", logger.Err(err))
		}
	}

	userSvc := interactor.NewUserInteractor(store.users)
	exportSvc := interactor.NewUserExporter(userSvc, objStore, cfg.ExportURLExpiry)

	metrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		fatal(appLog, "failed to register metrics", logger.Err(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(appLog))
	app.Use(metrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, store.pinger, userSvc, exportSvc)

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			appLog.Error("server shutdown failed", logger.Err(err))
		}
	}()

	addr := ":" + cfg.Port
	appLog.Info("server starting",
		slog.String("addr", addr),
		slog.String("store_driver", cfg.StoreDriver),
		slog.Bool("export", objStore != nil),
	)

	if err := app.Listen(addr); err != nil {
		fatal(appLog, "failed to start server", logger.Err(err))
	}
	appLog.Info("server stopped")
}

func fatal(log *slog.Logger, msg string, attrs ...any) {
	log.Error(msg, attrs...)
	os.Exit(1)
}
