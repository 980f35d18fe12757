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

	"github.com/sanikajhanwar/rag-based-financial-agent/internal/api/handlers"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/config"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/database"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/edgar"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/jobs"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/openai"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/repository"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/server"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/service"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/storage"
	"github.com/sanikajhanwar/rag-based-financial-agent/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the analysis API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8000", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("no-worker", false, "Disable the background ingest job worker")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8000" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{DSN: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	chunkRepo := repository.NewChunkRepository(pool)
	filingRepo := repository.NewFilingRepository(pool)
	ingestJobRepo := repository.NewIngestJobRepository(pool)

	aiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
	})
	edgarClient := edgar.NewClient(cfg.EdgarUserAgent)

	var archiver service.FilingArchiver
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
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
		log.Printf("S3 bucket '%s' ready, filings will be archived", cfg.S3Bucket)
		archiver = s3Client
	}

	pipeline := service.NewPipelineWithTimeout(
		service.NewDecomposer(aiClient),
		service.NewRetriever(aiClient, chunkRepo),
		service.NewSynthesizer(aiClient),
		cfg.ExternalCallTimeout,
	)

	ingestSvc := service.NewIngestServiceWithConfig(
		edgarClient, aiClient, chunkRepo, filingRepo, archiver, service.DefaultIngestConfig(),
	)

	var ingestWorker *jobs.Worker
	noWorker, _ := cmd.Flags().GetBool("no-worker")
	if !noWorker {
		processor := jobs.NewIngestWorker(ingestJobRepo, ingestSvc)
		ingestWorker = jobs.NewWorker(processor, 10*time.Second)
		go ingestWorker.Start(ctx)
	}

	router := server.NewRouter(server.RouterConfig{
		AnalyzeHandler: handlers.NewAnalyzeHandler(pipeline, handlers.AnalyzeDefaults{
			Model:       cfg.DefaultModel,
			SearchDepth: cfg.DefaultSearchDepth,
			Creativity:  cfg.DefaultCreativity,
		}),
		IngestHandler:  handlers.NewIngestHandler(ingestSvc),
		FilingsHandler: handlers.NewFilingsHandler(filingRepo),
		AllowedOrigins: cfg.CORSOrigins,
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

	if ingestWorker != nil {
		ingestWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
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

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	version, dirty, err := m.Version()
	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	}

	if upErr == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
