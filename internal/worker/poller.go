package worker

import (
	"context"
	"log/slog"
	"time"
)

// receiveBackoff is how long the poll loop sleeps after a receive error
// before trying again.
const receiveBackoff = 5 * time.Second

// pollLoop long-polls the queue and dispatches received messages to the
// worker pool. Receive errors are logged and retried; they never stop
// the loop.
func (w *Worker) pollLoop(ctx context.Context) {
	w.logger.Info("Message poller started",
		slog.String("worker_id", w.workerID),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message poller stopped - context canceled")
			return
		default:
		}

		messages, err := w.queue.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("Message poller stopped - context canceled")
				return
			}
			w.logger.Error("Failed to receive messages",
				slog.String("error", err.Error()),
			)
			select {
			case <-time.After(receiveBackoff):
			case <-ctx.Done():
				return
			}
			continue
		}

		if len(messages) == 0 {
			w.logger.Debug("No messages received, waiting for messages")
			continue
		}

		w.logger.Debug("Received message batch",
			slog.Int("count", len(messages)),
		)

		for _, msg := range messages {
			select {
			case w.jobsChan <- msg:
			case <-ctx.Done():
				// Undelivered messages become visible again after the
				// visibility timeout; nothing to undo here.
				w.logger.Info("Message poller stopped while dispatching")
				return
			}
		}
	}
}
