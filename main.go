// Package main is the entry point for the school finance service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.com/adigun/schoolfin/internal/config"
	"gitlab.com/adigun/schoolfin/internal/database"
	"gitlab.com/adigun/schoolfin/internal/httpapi"
	"gitlab.com/adigun/schoolfin/internal/logger"
	"gitlab.com/adigun/schoolfin/internal/render"
	"gitlab.com/adigun/schoolfin/internal/service"
	"gitlab.com/adigun/schoolfin/internal/storage"
	"gitlab.com/adigun/schoolfin/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("schoolfin %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Setup(cfg.LogLevel, cfg.LogJSON)

	if cfg.TracingEnabled {
		shutdown, err := telemetry.Setup(ctx, telemetry.Config{
			ServiceName:  "schoolfin",
			OTLPEndpoint: cfg.OTLPEndpoint,
		})
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize telemetry")
		}
		defer func() {
			flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer flushCancel()
			if err := shutdown(flushCtx); err != nil {
				logger.Log.Error().Err(err).Msg("Failed to flush telemetry")
			}
		}()
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	if cfg.SeedDemoData {
		if err := database.SeedSchools(ctx, pool); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to seed schools")
		}
	}

	logger.Log.Info().Msg("Database initialized successfully")

	// Development collaborators; deployments swap in the cloud object
	// store and the document-generation service.
	receipts, err := storage.NewLocalReceiptStore("data/receipts")
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize receipt store")
	}
	renderer := render.NewTextRenderer()

	expenses := service.NewExpenseService(pool, renderer, cfg.DefaultCurrency)
	payments := service.NewPaymentService(pool, receipts, cfg.DeleteReplacedReceipts)

	server := httpapi.NewServer(expenses, payments)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info().Msg("Shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Echo().Shutdown(shutdownCtx); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to shut down HTTP server")
		}
		cancel()
	}()

	logger.Log.Info().Str("addr", cfg.HTTPAddr).Msg("Starting HTTP server")
	if err := server.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatal().Err(err).Msg("HTTP server stopped")
	}
}
