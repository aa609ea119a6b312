package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/chamada-api/internal/handler"
	"github.com/noah-isme/chamada-api/internal/repository"
	"github.com/noah-isme/chamada-api/internal/repository/memory"
	"github.com/noah-isme/chamada-api/internal/router"
	"github.com/noah-isme/chamada-api/internal/service"
	"github.com/noah-isme/chamada-api/pkg/cache"
	"github.com/noah-isme/chamada-api/pkg/config"
	"github.com/noah-isme/chamada-api/pkg/database"
	"github.com/noah-isme/chamada-api/pkg/jobs"
	"github.com/noah-isme/chamada-api/pkg/logger"
	"github.com/noah-isme/chamada-api/pkg/storage"
)

// @title Sistema de Chamada API
// @version 1.0.0
// @description Attendance tracking backend: users, units, courses, classes, students, attendance, reports and backups.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	metrics := service.NewMetricsService()

	opts := router.Options{Config: cfg, Logger: logr, Metrics: metrics}
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logr.Warn("using in-memory storage; data is lost on restart")
		opts.Stores = router.MemoryStores(memory.New())
	default:
		db, err := openDatabase(ctx, cfg, logr)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.Stores = router.PostgresStores(db)
		opts.DB = handler.Pinger(db)
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, falling back to in-process cache", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
		opts.Cache = repository.NewRedisCacheRepository(redisClient)
	} else {
		opts.Cache = repository.NewMemoryCacheRepository(cfg.Dashboard.CacheTTL)
	}

	app := router.New(opts)

	if cfg.SeedSampleData {
		seeded, err := app.Seed.Run(ctx)
		if err != nil {
			return fmt.Errorf("seed sample data: %w", err)
		}
		logr.Info("sample data", zap.Bool("seeded", seeded))
	}

	if cfg.Backup.ArchiveEnabled {
		queue, err := startBackupArchive(ctx, cfg, logr, app.Backup, metrics)
		if err != nil {
			return err
		}
		defer queue.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.Engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openDatabase(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*sqlx.DB, error) {
	db, err := database.NewPostgres(ctx, cfg.Database, logr)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, cfg.Database.Name, logr); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}
	return db, nil
}

// startBackupArchive wires the archive queue and sweeps files whose download
// links can no longer be valid.
func startBackupArchive(ctx context.Context, cfg *config.Config, logr *zap.Logger, backups *service.BackupService, metrics *service.MetricsService) (*jobs.Queue, error) {
	files, err := storage.NewLocalStorage(cfg.Backup.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("backup storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Backup.SignedURLSecret, cfg.Backup.SignedURLTTL)

	queue := jobs.NewQueue("backup-archive", backups.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Backup.Workers,
		MaxRetries: cfg.Backup.Retries,
		Logger:     logr,
	})
	queue.Start(ctx)
	backups.EnableArchive(files, signer, queue, metrics)

	go func() {
		ticker := time.NewTicker(cfg.Backup.SignedURLTTL)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := files.CleanupOlderThan(cfg.Backup.SignedURLTTL)
				if err != nil {
					logr.Warn("backup cleanup failed", zap.Error(err))
					continue
				}
				if len(removed) > 0 {
					logr.Info("expired backups removed", zap.Int("count", len(removed)))
				}
			}
		}
	}()

	return queue, nil
}
