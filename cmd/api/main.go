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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akramsystems/llm-n-class-classifier/internal/adapter/client"
	"github.com/akramsystems/llm-n-class-classifier/internal/adapter/http/router"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/prompt"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/service"
	"github.com/akramsystems/llm-n-class-classifier/internal/infrastructure/config"
	"github.com/akramsystems/llm-n-class-classifier/internal/infrastructure/logger"
	"github.com/akramsystems/llm-n-class-classifier/internal/infrastructure/metrics"
	"github.com/akramsystems/llm-n-class-classifier/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize completion client. Without an API key the server still
	// starts so /health and /ready can report it.
	var completion service.CompletionClient
	completion, err = client.NewCompletionClient(&cfg.LLM)
	switch {
	case errors.Is(err, client.ErrMissingAPIKey):
		log.Warn("No API key configured, classification is unavailable", zap.String("provider", cfg.LLM.Provider))
		completion = nil
	case err != nil:
		return fmt.Errorf("failed to create completion client: %w", err)
	default:
		log.Info("Completion client ready",
			zap.String("provider", completion.Provider()),
			zap.String("model", completion.Model()),
		)
	}

	m := metrics.New(nil)
	classifyUC := usecase.NewClassificationUsecase(completion, prompt.NewBuilder(log), m, log)

	// Setup router
	r := router.Setup(router.Dependencies{
		ClassifyUC:  classifyUC,
		Client:      completion,
		Metrics:     m,
		Logger:      log,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	// Create HTTP server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Starting server", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}
