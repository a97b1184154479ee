package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/finsight-labs/finrag/internal/agents"
	"github.com/finsight-labs/finrag/internal/anonymizer"
	"github.com/finsight-labs/finrag/internal/api/handlers"
	"github.com/finsight-labs/finrag/internal/chunker"
	"github.com/finsight-labs/finrag/internal/config"
	"github.com/finsight-labs/finrag/internal/database"
	"github.com/finsight-labs/finrag/internal/jobs"
	"github.com/finsight-labs/finrag/internal/llm"
	"github.com/finsight-labs/finrag/internal/repository"
	"github.com/finsight-labs/finrag/internal/search"
	"github.com/finsight-labs/finrag/internal/server"
	"github.com/finsight-labs/finrag/internal/service"
	"github.com/finsight-labs/finrag/internal/storage"
	"github.com/finsight-labs/finrag/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the finrag API server and background ingestion worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().String("upload-dir", "uploads", "Local directory for uploaded documents when S3 is not configured")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.HasSentry() {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// 10% sampling outside development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPoolFromURL(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	reportRepo := repository.NewReportRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	auditRepo := repository.NewAuditLogRepository(pool)
	jobRepo := repository.NewIngestJobRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	var s3Client *storage.S3Client
	if cfg.HasS3() {
		s3Client, err = storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
	}

	uploadDir, _ := cmd.Flags().GetString("upload-dir")
	var uploader *storage.Uploader
	var source *storage.Source
	if s3Client != nil {
		uploader = storage.NewUploader(s3Client, cfg.S3Bucket, uploadDir)
		source = storage.NewSource(s3Client)
	} else {
		if err := os.MkdirAll(uploadDir, 0o755); err != nil {
			return fmt.Errorf("failed to create upload dir: %w", err)
		}
		uploader = storage.NewUploader(nil, "", uploadDir)
		source = storage.NewSource(nil)
	}

	provider, err := llm.New(ctx, cfg.LLMConfig())
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}
	log.Printf("LLM provider: %s", provider.Name())

	indexSvc := service.NewIndexService(txRunner, chunkRepo)
	ingestSvc := service.NewIngestServiceWithQueue(
		reportRepo,
		source,
		anonymizer.NewMasker(),
		provider,
		indexSvc,
		jobRepo,
		chunker.Options{ChunkSize: cfg.ChunkSize, Overlap: cfg.ChunkOverlap},
		cfg.EmbedDimension,
	)
	reportSvc := service.NewReportService(reportRepo, chunkRepo)

	orchestrator := agents.NewOrchestrator(
		agents.NewRouter(),
		agents.NewDocumentAgent(provider),
		agents.NewMetricsAgent(provider),
		agents.NewTrendAgent(provider),
	)
	engine := search.NewEngine(chunkRepo)
	querySvc := service.NewQueryService(provider, engine, orchestrator, auditRepo, cfg.ChatModel)

	ingestProcessor := jobs.NewIngestWorker(jobRepo, ingestSvc)
	worker := jobs.NewWorker(ingestProcessor, time.Duration(cfg.WorkerPollSeconds)*time.Second)
	go worker.Start(ctx)
	log.Println("ingest worker started")

	router := server.NewRouter(server.RouterConfig{
		ReportHandler: handlers.NewReportHandler(reportSvc, ingestSvc, uploader),
		QueryHandler:  handlers.NewQueryHandler(querySvc),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	worker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	// golang-migrate drives a database/sql connection, not the pgx pool
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
