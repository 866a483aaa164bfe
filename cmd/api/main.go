package main

import (
	"context"
	"log"
	"log/slog"
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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fileforge/docs"
	"fileforge/internal/config"
	"fileforge/internal/database"
	"fileforge/internal/database/migration"
	"fileforge/internal/extract"
	handlers "fileforge/internal/http/handler"
	"fileforge/internal/http/middleware"
	"fileforge/internal/logging"
	"fileforge/internal/mail"
	"fileforge/internal/otel"
	"fileforge/internal/queue"
	"fileforge/internal/repository/postgres"
	"fileforge/internal/resilience"
	"fileforge/internal/service"
	"fileforge/internal/storage"
)

// @title FileForge API
// @version 1.0
// @BasePath /
func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("fileforge-api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// The queue is optional: without NATS the API still converts inline.
	var publisher service.JobPublisher
	asyncEnabled := false
	if cfg.NATS.URL != "" {
		q, err := queue.NewWithOptions(cfg.NATS.URL, cfg.NATS.Subject, queue.Options{
			Executor: resilience.NewExecutor(resilience.DefaultConfig()),
		})
		if err != nil {
			slog.Warn("nats_unavailable_sync_only", "error", err)
		} else {
			defer q.Close()
			publisher = q
			asyncEnabled = true
		}
	}

	docRepo := postgres.NewDocumentPostgres(db)
	chunkRepo := postgres.NewChunkPostgres(db)
	keyRepo := postgres.NewAPIKeyPostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	sessionRepo := postgres.NewSessionPostgres(db)

	registry := extract.NewRegistry()

	docSvc := service.NewDocumentService(objStore, docRepo, chunkRepo)
	convertSvc := service.NewConvertService(objStore, docRepo, chunkRepo, registry, publisher, cfg.Convert.MaxFileSize)
	keySvc := service.NewAPIKeyService(keyRepo)
	authSvc := service.NewAuthService(userRepo, sessionRepo, mail.NewLogMailer(), cfg.Auth.BcryptCost)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Convert.MaxFileSize) + 1024*1024,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:                db,
		Auth:              authSvc,
		APIKeys:           keySvc,
		Documents:         docSvc,
		Convert:           convertSvc,
		SessionCookieName: cfg.Auth.SessionCookieName,
		AsyncEnabled:      asyncEnabled,
	})

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

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			slog.Error("shutdown_error", "error", err)
		}
	}()

	addr := ":" + cfg.Port
	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
