package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"

	"fulfillment/cmd"
	httpin "fulfillment/internal/adapters/in/http"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	configs, err := cmd.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	app, err := cmd.NewCompositionRoot(configs, logger)
	if err != nil {
		log.Fatalf("Error building application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, app, configs, logger); err != nil {
		log.Fatalf("Service stopped with error: %v", err)
	}
}

func run(ctx context.Context, app *cmd.CompositionRoot, configs cmd.Config, logger *slog.Logger) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go app.Hub().Run(hubCtx)

	if err := app.UpdateQueue().Start(context.Background()); err != nil {
		return err
	}

	jobManager := app.CreateJobManager()
	jobManager.CatalogRefresh().Run(ctx)
	if err := jobManager.StartAll(); err != nil {
		return err
	}

	e := httpin.NewEcho(logger)
	app.CreateHTTPServer().Register(e)

	serverErr := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "HTTP server listening", "port", configs.HTTPPort)
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.InfoContext(ctx, "Shutting down")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var shutdownErrs []error
	if err := e.Shutdown(shutdownCtx); err != nil {
		shutdownErrs = append(shutdownErrs, fmt.Errorf("http server: %w", err))
	}
	jobManager.StopAll()
	if err := app.UpdateQueue().Shutdown(shutdownCtx); err != nil {
		shutdownErrs = append(shutdownErrs, fmt.Errorf("update queue: %w", err))
	}
	stopHub()
	return errors.Join(shutdownErrs...)
}
