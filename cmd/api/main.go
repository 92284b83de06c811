package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docrepo/docs"
	"docrepo/internal/config"
	handlers "docrepo/internal/http/handler"
	"docrepo/internal/http/middleware"
	"docrepo/internal/logger"
	appotel "docrepo/internal/otel"
	"docrepo/internal/repository"
	"docrepo/internal/repository/memory"
	"docrepo/internal/service"
	"docrepo/internal/storage"
)

const shutdownTimeout = 5 * time.Second

// @title Document Repository API
// @version 1.0
// @description Upload, review and download PDF and Word documents.
// @BasePath /
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:          "docrepo",
		Short:        "Document repository API server",
		Long:         `Serves the document repository REST API: uploads, review workflow and downloads.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	cmd.Flags().StringVar(&cfg.Storage.Dir, "documents-dir", cfg.Storage.Dir, "directory for uploaded files (filesystem driver)")
	cmd.Flags().StringVar(&cfg.Storage.Driver, "storage-driver", cfg.Storage.Driver, "blob storage backend: filesystem or minio")

	return cmd
}

func run(ctx context.Context, cfg *config.AppConfig) error {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.UTC
	}

	log, err := logger.New(cfg.Environment, cfg.LogLevel, loc)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := appotel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error("tracing shutdown failed", zap.Error(err))
		}
	}()

	// Blob storage: local directory by default, MinIO when configured.
	objStore, err := storage.New(cfg.Storage, cfg.MinIO, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	docRepo := memory.NewDocumentMemory(memory.SeedDocuments())
	docSvc := service.NewDocumentService(objStore, docRepo, log)

	reg, promMiddleware, err := newMetrics(docRepo)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             handlers.BodyLimit,
		DisableStartupMessage: cfg.Environment == "production",
	})

	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics"
	})))
	app.Use(promMiddleware.Handler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOrigins, ","),
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, docSvc)

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

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()

	log.Info("server started",
		zap.String("addr", addr),
		zap.String("host", cfg.AppHost),
		zap.String("environment", cfg.Environment),
		zap.String("storage", objStore.Location()),
	)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	log.Info("server stopped")
	return nil
}

// newMetrics builds the Prometheus registry with runtime collectors, the HTTP request metrics
// and a gauge reporting how many documents the repository holds.
func newMetrics(repo repository.DocumentRepository) (*prometheus.Registry, *middleware.PrometheusMiddleware, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "documents_stored",
			Help: "Number of document records currently held.",
		}, func() float64 {
			n, err := repo.Count(context.Background())
			if err != nil {
				return 0
			}
			return float64(n)
		}),
	)

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, nil, err
	}
	return reg, promMiddleware, nil
}
