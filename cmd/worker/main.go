package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"fileforge/internal/config"
	"fileforge/internal/database"
	"fileforge/internal/database/migration"
	"fileforge/internal/extract"
	"fileforge/internal/logging"
	"fileforge/internal/queue"
	"fileforge/internal/repository/postgres"
	"fileforge/internal/resilience"
	"fileforge/internal/service"
	"fileforge/internal/storage"
)

// The worker consumes conversion jobs from NATS and runs the same pipeline
// the API uses for sync conversion. Multiple workers share the queue group,
// so scaling out is just starting more processes.
func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("fileforge-worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	q, err := queue.NewWithOptions(cfg.NATS.URL, cfg.NATS.Subject, queue.Options{
		Executor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	defer q.Close()

	convertSvc := service.NewConvertService(
		objStore,
		postgres.NewDocumentPostgres(db),
		postgres.NewChunkPostgres(db),
		extract.NewRegistry(),
		nil,
		cfg.Convert.MaxFileSize,
	)

	slog.Info("worker_started", "subject", cfg.NATS.Subject)
	if err := q.Subscribe(ctx, func(ctx context.Context, job queue.Job) error {
		doc, err := convertSvc.Process(ctx, job.DocumentID)
		if err != nil {
			return err
		}
		slog.Info("job_done",
			"document_id", doc.ID,
			"status", doc.Status,
			"chunks", doc.TotalChunks,
			"duration_ms", doc.ProcessingDurationMS,
		)
		return nil
	}); err != nil {
		log.Fatalf("worker subscription failed: %v", err)
	}
}
