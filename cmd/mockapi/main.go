// Command mockapi serves a stand-in classification service for local
// development.
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

	"github.com/JonMunkholm/csvclassify/internal/config"
	"github.com/JonMunkholm/csvclassify/internal/logging"
	"github.com/JonMunkholm/csvclassify/internal/mockapi"
)

func main() {
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	mock := mockapi.New(mockapi.Config{
		LabelColumn: cfg.Mock.LabelColumn,
		Seed:        cfg.Mock.Seed,
	})
	srv := &http.Server{
		Addr:        cfg.Mock.Addr(),
		Handler:     mock.Routes(),
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("mock classifier starting", "addr", srv.Addr, "label_column", cfg.Mock.LabelColumn)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("mock classifier failed", "error", err)
		os.Exit(1)
	}
}
