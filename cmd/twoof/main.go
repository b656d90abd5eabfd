package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dukerupert/twoof/internal/auth"
	"github.com/dukerupert/twoof/internal/blob"
	"github.com/dukerupert/twoof/internal/config"
	"github.com/dukerupert/twoof/internal/database"
	"github.com/dukerupert/twoof/internal/logging"
	"github.com/dukerupert/twoof/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("TWOOF_CONFIG"), "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "twoof: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Join(cfg.DataDir, "photos"), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}

	db, err := database.OpenWithRetry(ctx, cfg.DBPath, cfg.DBRetries, logger.With("component", "database"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	blobs, err := openBlobStore(cfg)
	if err != nil {
		return err
	}
	verifier, err := newVerifier(cfg)
	if err != nil {
		return err
	}

	srv := server.New(db, blobs, verifier, cfg, logger)

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("twoof listening", "addr", cfg.Addr(), "blob_backend", cfg.BlobBackend, "timezone", cfg.Location().String())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openBlobStore(cfg *config.Config) (blob.Store, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendS3:
		s, err := blob.NewS3Store(blob.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Prefix:    cfg.S3Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 blob store: %w", err)
		}
		return s, nil
	default:
		s, err := blob.NewFSStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("fs blob store: %w", err)
		}
		return s, nil
	}
}

// newVerifier prefers the remote identity service; a local JWT secret is
// the fallback for single-binary deployments.
func newVerifier(cfg *config.Config) (auth.Verifier, error) {
	if cfg.AuthURL != "" {
		slog.Info("verifying users against identity service", "auth_url", cfg.AuthURL)
		return auth.NewRemoteVerifier(cfg.AuthURL), nil
	}
	v, err := auth.NewJWTVerifier(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	return v, nil
}
