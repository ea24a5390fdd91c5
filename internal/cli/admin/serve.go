package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pxtester/showcase/internal/api/handlers"
	"github.com/pxtester/showcase/internal/config"
	"github.com/pxtester/showcase/internal/database"
	"github.com/pxtester/showcase/internal/jobs"
	"github.com/pxtester/showcase/internal/logging"
	"github.com/pxtester/showcase/internal/repository"
	"github.com/pxtester/showcase/internal/server"
	"github.com/pxtester/showcase/internal/service"
	"github.com/pxtester/showcase/internal/session"
	"github.com/pxtester/showcase/internal/storage"
	"github.com/pxtester/showcase/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the showcase API server and the background embedding worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(cfg.Debug)

	if cfg.SentryDSN != "" {
		// 10% of traces in production, all of them elsewhere
		sampleRate := 1.0
		if cfg.Environment == "production" {
			sampleRate = 0.1
		}
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		}, logging.Component(logger, "telemetry"))
		if err != nil {
			logger.Warn().Err(err).Msg("telemetry init failed, continuing without tracing")
		} else {
			defer shutdownTelemetry()
		}
	}

	if portFlag, _ := cmd.Flags().GetString("port"); cmd.Flags().Changed("port") {
		cfg.Port = portFlag
	}

	pool, err := getDBPool(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); !noMigrate {
		if err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsSource, logging.Component(logger, "migrate")); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	siteRepo := repository.NewSiteRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	jobRepo := repository.NewEmbeddingJobRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	vectors, err := newVectorIndex(ctx, cfg, pool)
	if err != nil {
		return err
	}
	logger.Info().Str("backend", cfg.VectorBackend).Msg("vector index ready")

	embedder, err := newEmbedder(cfg, logging.Component(logger, "embedder"))
	if err != nil {
		return fmt.Errorf("failed to create embedding client: %w", err)
	}

	sessions, err := session.Open(cfg.SessionDir, logging.Component(logger, "sessions"))
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer sessions.Close()

	var storageClient service.StorageClientInterface
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:          cfg.S3Endpoint,
			Region:            cfg.S3Region,
			AccessKeyID:       cfg.S3AccessKey,
			SecretAccessKey:   cfg.S3SecretKey,
			Bucket:            cfg.S3Bucket,
			UsePathStyle:      true,
			DownloadURLExpiry: cfg.S3URLExpiry,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		logger.Info().Str("bucket", cfg.S3Bucket).Msg("S3 bucket ready")
		storageClient = &S3StorageAdapter{client: s3Client}
	} else {
		logger.Warn().Msg("S3 not configured; image uploads disabled")
	}

	var embeddingWorker *jobs.Worker
	if cfg.HasEmbeddings() {
		embeddingSvc := service.NewEmbeddingService(embedder, vectors, siteRepo, logging.Component(logger, "embedding"))
		processor, err := jobs.NewEmbeddingWorker(jobRepo, embeddingSvc, cfg.WorkerConcurrency, logging.Component(logger, "embedding_worker"))
		if err != nil {
			return err
		}
		defer processor.Close()
		embeddingWorker = jobs.NewWorker(processor, cfg.WorkerPollInterval, logging.Component(logger, "worker"))
		go embeddingWorker.Start(ctx)
	}

	siteSvc := service.NewSiteService(siteRepo, txRunner, vectors, logging.Component(logger, "sites"))
	searchSvc := service.NewSearchServiceWithConfig(siteRepo, vectors, embedder, searchConfig(cfg), logging.Component(logger, "search"))

	router := server.NewRouter(server.RouterConfig{
		Logger:          logging.Component(logger, "http"),
		Sessions:        sessions,
		AllowedOrigins:  cfg.CORSOrigins(),
		SearchHandler:   handlers.NewSearchHandler(searchSvc, logging.Component(logger, "search")),
		SiteHandler:     handlers.NewSiteHandler(siteSvc),
		AdminHandler:    handlers.NewAdminHandler(siteSvc),
		CategoryHandler: handlers.NewCategoryHandler(service.NewCategoryService(categoryRepo)),
		ImageHandler:    handlers.NewImageHandler(service.NewImageService(storageClient)),
		AuthHandler:     handlers.NewAuthHandler(sessions, logging.Component(logger, "auth")),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Info().Msg("shutting down")

	if embeddingWorker != nil {
		embeddingWorker.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("server exited")
	return nil
}

// S3StorageAdapter exposes the S3 client as the image service's blob store.
type S3StorageAdapter struct {
	client *storage.S3Client
}

func (a *S3StorageAdapter) PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	return a.client.PutObject(ctx, key, contentType, body, size)
}

func (a *S3StorageAdapter) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	return a.client.GenerateDownloadURL(ctx, key)
}

func (a *S3StorageAdapter) HeadObject(ctx context.Context, key string) error {
	return a.client.HeadObject(ctx, key)
}
