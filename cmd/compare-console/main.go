package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maltedev/product-compare/internal/backend"
	"github.com/maltedev/product-compare/internal/catalog"
	"github.com/maltedev/product-compare/internal/compare"
	"github.com/maltedev/product-compare/internal/config"
	"github.com/maltedev/product-compare/internal/console"
	"github.com/maltedev/product-compare/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	momo, pchome, err := catalog.LoadPair(cfg.Console.MomoFile, cfg.Console.PchomeFile)
	if err != nil {
		logger.Error("failed to load catalogs", "error", err)
		os.Exit(1)
	}
	logger.Info("catalogs loaded", "momo", len(momo), "pchome", len(pchome))

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger)

	srv, err := console.NewServer(compare.NewState(momo, pchome), client, logger)
	if err != nil {
		logger.Error("failed to build console", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Console.Port,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down console...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("console shutdown failed", "error", err)
		}
	}()

	logger.Info("console starting", "port", cfg.Console.Port, "backend", cfg.Backend.BaseURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("console failed", "error", err)
		os.Exit(1)
	}

	logger.Info("console stopped")
}
