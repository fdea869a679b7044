package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hqminh/image-resize-worker/internal/config"
	"github.com/hqminh/image-resize-worker/internal/fetch"
	"github.com/hqminh/image-resize-worker/internal/worker"
	"github.com/hqminh/image-resize-worker/internal/worker/storage"
	"github.com/hqminh/image-resize-worker/shared/logger"
	"github.com/hqminh/image-resize-worker/shared/sqs"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("WORKER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/worker-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger := logger.New(&logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.EnableCaller,
		TimeFormat: time.RFC3339,
	})

	appLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize SQS client; an unreachable queue is fatal at startup
	queueClient, err := sqs.NewClient(ctx, &sqs.Config{
		QueueURL:           cfg.Queue.QueueURL,
		DeadLetterQueueURL: cfg.Queue.DeadLetterQueueURL,
		MaxMessages:        int32(cfg.Queue.MaxMessages),
		WaitTime:           cfg.Queue.WaitTime,
		VisibilityTimeout:  cfg.Queue.VisibilityTimeout,
	}, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize SQS client: %w", err)
	}

	// Initialize image store; creates originals/ and resized/
	store, err := storage.NewStore(cfg.Storage.Root, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize image store: %w", err)
	}

	fetcher := fetch.New(&fetch.Config{
		Timeout:  cfg.Fetch.Timeout,
		MaxBytes: cfg.Fetch.MaxBytes,
	}, appLogger.Logger)

	// Create worker instance
	workerInstance := worker.NewWorker(&worker.Config{
		Logger:         appLogger.Logger,
		Queue:          queueClient,
		Fetcher:        fetcher,
		Store:          store,
		Concurrency:    cfg.Worker.Concurrency,
		AttemptTimeout: cfg.Worker.AttemptTimeout,
		MaxEdge:        cfg.Image.MaxEdge,
		MaxReceives:    cfg.Queue.MaxReceiveCount,
	})

	// Start worker in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := workerInstance.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	appLogger.Info("Worker service started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Received signal, shutting down gracefully",
			slog.String("signal", sig.String()),
		)
	case err := <-errChan:
		appLogger.Error("Worker error",
			slog.Any("error", err),
		)
		return err
	}

	// Cancel context to stop the poller and worker pool
	cancel()

	// Give worker time to drain in-flight attempts
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		workerInstance.Stop()
		close(done)
	}()

	select {
	case <-done:
		appLogger.Info("Worker stopped gracefully")
	case <-shutdownCtx.Done():
		appLogger.Warn("Worker shutdown timeout exceeded, forcing exit")
	}

	appLogger.Info("Worker service shutdown complete")
	return nil
}
