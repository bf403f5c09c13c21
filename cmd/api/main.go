//	@title			File Gateway API
//	@version		1.0
//	@description	Streams file uploads and downloads between HTTP clients and object storage.
//
//	@host		localhost:8080
//	@BasePath	/

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/radif/filegate/internal/config"
	"github.com/radif/filegate/internal/db"
	"github.com/radif/filegate/internal/files"
	"github.com/radif/filegate/internal/journal"
	"github.com/radif/filegate/internal/logging"
	appMiddleware "github.com/radif/filegate/internal/middleware"
	"github.com/radif/filegate/internal/storage"

	_ "github.com/radif/filegate/docs/swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	store, err := newStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}
	if err := store.EnsureNamespace(ctx); err != nil {
		// Not fatal: every upload retries it, so the gateway recovers once the
		// provider is reachable.
		logger.Error(ctx, "storage namespace not ready", "driver", cfg.StorageDriver, "bucket", cfg.StorageBucket, "error", err)
	}

	var events journal.Journal = journal.Nop{}
	if cfg.JournalEnabled() {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer pool.Close()

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		events = journal.NewRepository(pool)
	}

	// Wire dependencies: storage → service → handler
	filesSvc := files.NewService(store, events, logger)
	filesHandler := files.NewHandler(filesSvc, logger, cfg.MaxUploadBytes)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "Content-Length", files.BatchHeader},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI, available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	filesHandler.Mount(r, appMiddleware.Compress(5))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info(ctx, "server listening", "port", cfg.Port, "env", cfg.AppEnv, "driver", cfg.StorageDriver, "journal", cfg.JournalEnabled())
		logger.Info(ctx, "swagger UI", "url", fmt.Sprintf("http://localhost:%s/swagger/", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	logger.Info(ctx, "shutting down gracefully", "timeout", cfg.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "forced shutdown", "error", err)
		return
	}

	logger.Info(ctx, "server stopped")
}

// newStorage builds the backend named by STORAGE_DRIVER.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case storage.DriverMinio:
		return storage.NewMinioStorage(storage.MinioConfig{
			Endpoint:  cfg.StorageEndpoint,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Bucket:    cfg.StorageBucket,
			Region:    cfg.StorageRegion,
			UseSSL:    cfg.StorageUseSSL,
			PartSize:  uint64(cfg.S3PartSizeMB) << 20,
		})
	case storage.DriverS3:
		s3Cfg := storage.S3Config{
			Bucket:       cfg.StorageBucket,
			Region:       cfg.StorageRegion,
			Endpoint:     cfg.S3Endpoint,
			AccessKey:    cfg.StorageAccessKey,
			SecretKey:    cfg.StorageSecretKey,
			UsePathStyle: cfg.S3UsePathStyle,
			PartSizeMB:   cfg.S3PartSizeMB,
			Concurrency:  cfg.S3Concurrency,
		}
		return storage.NewS3Storage(ctx, s3Cfg)
	case storage.DriverLocal:
		return storage.NewLocalStorage(cfg.StorageRoot, cfg.StorageBucket), nil
	case storage.DriverMemory:
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
