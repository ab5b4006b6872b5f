// Package main provides the entry point for the video analysis API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/demusis/analise-conteudo-video/internal/capture"
	"github.com/demusis/analise-conteudo-video/internal/category"
	"github.com/demusis/analise-conteudo-video/internal/config"
	"github.com/demusis/analise-conteudo-video/internal/export"
	"github.com/demusis/analise-conteudo-video/internal/gallery"
	"github.com/demusis/analise-conteudo-video/internal/server"
	"github.com/demusis/analise-conteudo-video/internal/storage"
	"github.com/demusis/analise-conteudo-video/internal/tracing"
	"github.com/demusis/analise-conteudo-video/internal/video"
	"github.com/demusis/analise-conteudo-video/internal/videodec"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create structured logger
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting video analysis API",
		slog.Int("port", cfg.Port),
		slog.String("log_format", cfg.LogFormat),
		slog.String("log_level", cfg.LogLevel),
		slog.String("data_dir", cfg.DataDir),
		slog.Duration("capture_timeout", cfg.CaptureTimeout),
		slog.Bool("s3_enabled", cfg.S3Enabled()),
		slog.Bool("database_enabled", cfg.DatabaseEnabled()),
	)

	ctx := context.Background()

	// Initialize tracing when an OTLP collector is configured
	if cfg.TracingEnabled() {
		tp, err := tracing.InitTracer(ctx, cfg.OTLPEndpoint)
		if err != nil {
			return fmt.Errorf("initialize tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("tracer shutdown failed", slog.String("error", err.Error()))
			}
		}()
		logger.Info("tracing enabled", slog.String("endpoint", cfg.OTLPEndpoint))
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(os.TempDir(), "video-annotator")
	}

	// Initialize storage
	var files storage.Storage
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(dataDir, s3Cfg)
		if err != nil {
			return fmt.Errorf("create S3 storage: %w", err)
		}
		files = s3Store
		logger.Info("S3 archive storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
	} else {
		localStore, err := storage.NewLocalStorage(dataDir)
		if err != nil {
			return fmt.Errorf("create local storage: %w", err)
		}
		files = localStore
		logger.Info("local storage configured",
			slog.String("data_dir", dataDir),
		)
	}

	// Initialize the category taxonomy
	categories, err := category.NewStore(filepath.Join(dataDir, "categories.json"))
	if err != nil {
		return fmt.Errorf("open category store: %w", err)
	}

	// Initialize the frame repository
	var repo gallery.Repository
	if cfg.DatabaseEnabled() {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()
		pgRepo := gallery.NewPostgresRepository(pool)
		if err := pgRepo.InitSchema(ctx); err != nil {
			return fmt.Errorf("init frame schema: %w", err)
		}
		repo = pgRepo
		logger.Info("postgres frame repository configured")
	} else {
		repo = gallery.NewMemoryRepository()
	}

	// Initialize the exact-frame locator over the ffmpeg toolchain
	prober := videodec.NewProber(cfg.FFprobePath)
	decoder := capture.FFmpegDecoder{Dec: videodec.NewDecoder(cfg.FFmpegPath)}
	locator := capture.NewLocator(prober, decoder, logger)

	// Initialize the gallery and export services
	videos := video.NewStore()
	frames := gallery.NewService(repo, videos, categories, locator, files, logger)
	frames.SetCaptureTimeout(cfg.CaptureTimeout)
	exports := export.NewService(frames, videos, categories, files, logger)

	// Initialize HTTP handlers and router
	handlers := server.NewHandlers(
		videos,
		frames,
		categories,
		exports,
		files,
		prober,
		logger,
		server.WithUploadLimit(cfg.MaxUploadBytes()),
		server.WithDefaultFrameRate(cfg.DefaultFrameRate),
	)
	router := server.NewRouter(handlers, logger, server.DefaultConfig())

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Allow for large uploads and exports
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			slog.String("addr", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server failed: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-shutdownCh:
		logger.Info("received shutdown signal",
			slog.String("signal", sig.String()),
		)
	case err := <-errCh:
		return err
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
