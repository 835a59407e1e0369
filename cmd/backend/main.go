package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"docshare/internal/db"
	"docshare/internal/server"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := server.LoadConfig()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	dbConn, err := server.OpenDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	defer func() { _ = dbConn.Close() }()

	logger.Info("running migrations")
	if err := db.RunMigrations(dbConn); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	logger.Info("migrations complete")

	srv, err := server.New(cfg, dbConn, logger)
	if err != nil {
		logger.Fatal("server init failed", zap.Error(err))
	}

	// Start the HTTP server in a background goroutine so we can listen
	// for OS signals while it runs.
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting",
			zap.String("addr", cfg.Addr),
			zap.String("version", cfg.Version),
		)
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Block until either a shutdown signal is received or the server
	// encounters an error.
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		// Give the server 5 seconds to finish in-flight requests.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Fatal("shutdown error", zap.Error(err))
		}
		logger.Info("shutdown complete")
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}
}
