package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hqminh/image-resize-worker/internal/fetch"
	"github.com/hqminh/image-resize-worker/internal/worker/domain"
	"github.com/hqminh/image-resize-worker/internal/worker/storage"
)

// Queue is the queue-service surface the worker consumes. shared/sqs
// implements it; tests substitute a fake.
type Queue interface {
	Receive(ctx context.Context) ([]domain.Message, error)
	Delete(ctx context.Context, receiptHandle string) error
	PublishToDeadLetter(ctx context.Context, body []byte) error
}

// Config holds worker configuration
type Config struct {
	Logger         *slog.Logger
	Queue          Queue
	Fetcher        *fetch.Fetcher
	Store          *storage.Store
	Concurrency    int
	AttemptTimeout time.Duration
	MaxEdge        int
	MaxReceives    int
}

// Worker pulls message batches from the queue and drives each message
// through the resize pipeline on a bounded pool of goroutines.
type Worker struct {
	logger         *slog.Logger
	queue          Queue
	fetcher        *fetch.Fetcher
	store          *storage.Store
	policy         Policy
	concurrency    int
	attemptTimeout time.Duration
	maxEdge        int
	workerID       string
	jobsChan       chan domain.Message
	stopChan       chan struct{}
	wg             sync.WaitGroup
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Worker{
		logger:         cfg.Logger,
		queue:          cfg.Queue,
		fetcher:        cfg.Fetcher,
		store:          cfg.Store,
		policy:         NewPolicy(cfg.MaxReceives),
		concurrency:    concurrency,
		attemptTimeout: cfg.AttemptTimeout,
		maxEdge:        cfg.MaxEdge,
		workerID:       uuid.NewString(),
		jobsChan:       make(chan domain.Message),
		stopChan:       make(chan struct{}),
	}
}

// Start spawns the worker pool and runs the receive loop until the
// context is canceled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("attempt_timeout", w.attemptTimeout),
	)

	w.spawnWorkerPool(ctx)
	w.pollLoop(ctx)

	return nil
}

// Stop gracefully stops the worker, waiting for in-flight attempts.
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
