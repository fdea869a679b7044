package worker

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hqminh/image-resize-worker/internal/resize"
	"github.com/hqminh/image-resize-worker/internal/worker/domain"
	"github.com/hqminh/image-resize-worker/internal/worker/storage"
)

// handleMessage runs one processing attempt and applies the resulting
// queue action. Every failure is absorbed here; nothing escapes to
// affect other messages in the batch.
func (w *Worker) handleMessage(ctx context.Context, msg domain.Message) {
	attemptCtx := ctx
	if w.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, w.attemptTimeout)
		defer cancel()
	}

	err := w.processAttempt(attemptCtx, msg)
	if err == nil {
		if delErr := w.queue.Delete(ctx, msg.ReceiptHandle); delErr != nil {
			// The message will be redelivered and reprocessed; writes are
			// idempotent overwrites, so this only costs a wasted attempt.
			w.logger.Error("Failed to delete processed message",
				slog.String("message_id", msg.MessageID),
				slog.String("error", delErr.Error()),
			)
			return
		}
		w.logger.Info("Message processed",
			slog.String("message_id", msg.MessageID),
			slog.String("outcome", string(domain.OutcomeSucceeded)),
		)
		return
	}

	w.logger.Error("Attempt failed",
		slog.String("message_id", msg.MessageID),
		slog.Int("receive_count", msg.ReceiveCount),
		slog.Bool("transient", isTransient(err)),
		slog.String("error", err.Error()),
	)

	switch w.policy.Decide(msg.ReceiveCount) {
	case DecisionDeadLetter:
		w.deadLetter(ctx, msg)
	default:
		// No queue action: the visibility timeout expires and the queue
		// redelivers with an incremented receive count.
		w.logger.Warn("Message left for redelivery",
			slog.String("message_id", msg.MessageID),
			slog.String("outcome", string(domain.OutcomeRetry)),
			slog.Int("receive_count", msg.ReceiveCount),
			slog.Int("max_receives", w.policy.MaxReceives),
		)
	}
}

// processAttempt drives one message through the pipeline:
// parse, fetch, save original, resize, save resized. The first failing
// step aborts the attempt; the whole attempt is redone on redelivery.
func (w *Worker) processAttempt(ctx context.Context, msg domain.Message) error {
	job, err := domain.ParseJob(msg.Body)
	if err != nil {
		return err
	}

	data, err := w.fetcher.Fetch(ctx, job.ImageURL)
	if err != nil {
		return err
	}

	// Extension comes from the decoded bytes, never from the URL.
	format, ext, err := resize.Detect(data)
	if err != nil {
		return err
	}

	originalPath, err := w.store.Save(job.ID, storage.VariantOriginal, data, ext)
	if err != nil {
		return err
	}

	resized, err := resize.Thumbnail(data, w.maxEdge)
	if err != nil {
		return err
	}

	resizedPath, err := w.store.Save(job.ID, storage.VariantResized, resized, ext)
	if err != nil {
		return err
	}

	w.logger.Info("Image processed",
		slog.String("job_id", job.ID),
		slog.String("format", format),
		slog.String("original_path", originalPath),
		slog.String("resized_path", resizedPath),
	)

	return nil
}

// deadLetter publishes the original body verbatim to the dead-letter
// queue and deletes the source message. If the publish fails the delete
// is skipped, so the pair behaves as one logical step: the message
// stays on the source queue and the whole move is retried on the next
// delivery.
func (w *Worker) deadLetter(ctx context.Context, msg domain.Message) {
	if err := w.queue.PublishToDeadLetter(ctx, msg.Body); err != nil {
		w.logger.Error("Failed to publish to dead-letter queue, message left on source queue",
			slog.String("message_id", msg.MessageID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := w.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
		// Redelivery will publish to the DLQ again; acceptable duplicate
		// under at-least-once semantics.
		w.logger.Error("Failed to delete dead-lettered message",
			slog.String("message_id", msg.MessageID),
			slog.String("error", err.Error()),
		)
		return
	}

	w.logger.Error("Message failed more than allowed receives, moved to dead-letter queue",
		slog.String("message_id", msg.MessageID),
		slog.String("outcome", string(domain.OutcomeDeadLetter)),
		slog.Int("receive_count", msg.ReceiveCount),
		slog.Int("max_receives", w.policy.MaxReceives),
	)
}

// isTransient reports whether err is worth classifying as transient for
// logging. The retry decision itself is uniform and count-based.
func isTransient(err error) bool {
	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Transient
	}
	var storeErr *domain.StoreError
	return errors.As(err, &storeErr)
}
