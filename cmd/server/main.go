package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fundamentals-agent/internal/app"
	"fundamentals-agent/internal/logger"
	"fundamentals-agent/internal/server"
	"fundamentals-agent/internal/trace"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := app.Init(os.Stdout); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	if err := run(); err != nil {
		logger.ErrorWithErr(context.Background(), "Server exited with error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig(ctx, app.ConfigPath())
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}

	srv := server.New(a.Agent, server.Config{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	})

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start()
	}()

	select {
	case err := <-errc:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info(context.Background(), "Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(shutdownCtx, "Graceful shutdown failed", err)
	}
	a.Close(shutdownCtx)

	if err := trace.Shutdown(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "Failed to flush traces", "error", err)
	}
	return nil
}
