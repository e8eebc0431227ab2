package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/app"
	"github.com/riskibarqy/ultimate-scores/internal/config"
	"github.com/riskibarqy/ultimate-scores/internal/observability"
	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, drainLogs, err := observability.InitBetterStackLogger(cfg, logging.NewJSON(cfg.LogLevel))
	if err != nil {
		panic(err)
	}
	logging.SetDefault(logger)

	if code := run(cfg, logger); code != 0 {
		_ = drainLogs(context.Background())
		os.Exit(code)
	}
	_ = drainLogs(context.Background())
}

func run(cfg config.Config, logger *logging.Logger) int {
	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("uptrace shutdown failed", "error", err)
		}
	}()

	profiling, err := observability.StartProfiling(cfg, logger)
	if err != nil {
		logger.Error("start profiling", "error", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := profiling.Stop(ctx); err != nil {
			logger.Error("profiling shutdown failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, closeRepos, err := app.NewHTTPServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}
	defer func() {
		if err := closeRepos(); err != nil {
			logger.Error("close repositories", "error", err)
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr, "service", cfg.ServiceName, "version", cfg.ServiceVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("http server failed", "error", err)
			return 1
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return 1
	}

	logger.Info("http server stopped")
	return 0
}
