// main.go - devconnect API server
package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"devconnect/internal"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	app, err := internal.NewApp()
	if err != nil {
		return err
	}

	if err := app.DBManager.MigrateDatabase(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := app.StartAsync(); err != nil {
		return err
	}
	app.Logger.Info("devconnect started",
		slog.String("environment", app.Config.Environment),
		slog.String("port", app.Config.AppPort))

	<-ctx.Done()
	app.Logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("Shutdown failed", slog.Any("error", err))
		return err
	}
	app.Logger.Info("Server shutdown complete")
	return nil
}
