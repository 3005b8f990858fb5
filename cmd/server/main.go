package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/csvclassify/internal/classifier"
	"github.com/JonMunkholm/csvclassify/internal/config"
	"github.com/JonMunkholm/csvclassify/internal/core"
	"github.com/JonMunkholm/csvclassify/internal/logging"
	"github.com/JonMunkholm/csvclassify/internal/session"
	"github.com/JonMunkholm/csvclassify/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	client := classifier.New(cfg.Classifier.BaseURL,
		classifier.WithTimeout(cfg.Classifier.Timeout),
		classifier.WithEvaluatePath(cfg.Classifier.EvaluatePath),
	)
	store := session.NewStore(cfg.Session.TTL)
	service := core.NewService(client, store, core.Options{
		MaxFileSize:   cfg.Upload.MaxFileSize,
		MaxConcurrent: cfg.Classifier.MaxConcurrent,
		MaxWait:       cfg.Classifier.MaxWait,
		ExportMode:    cfg.ExportMode(),
	})

	server := web.NewServer(service, cfg)

	// Background session expiry
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartSessionJanitor(jobCtx, cfg.Session.SweepInterval)

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight classifications finish so their sessions get results.
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for classifications to complete", "active", status.Active)
			if err := service.Drain(shutdownCtx); err != nil {
				slog.Warn("classifications did not complete in time", "error", err)
			} else {
				slog.Info("all classifications completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr(), "classifier", client.BaseURL())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-shutdownDone
	slog.Info("server stopped")
}
