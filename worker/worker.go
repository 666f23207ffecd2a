package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rishiakkala/queuectl/joblog"
	"github.com/rishiakkala/queuectl/queue"
)

// Worker is a purely sequential polling loop: claim one job, execute it,
// record the outcome, repeat. Workers coordinate only through the shared
// store; there is no worker-to-worker signaling.
type Worker struct {
	id           string
	store        *queue.Store
	pollInterval time.Duration
	log          *zap.SugaredLogger
}

// New creates a worker. id only needs to be unique enough for log correlation.
func New(id string, store *queue.Store, pollInterval time.Duration, logger *zap.SugaredLogger) *Worker {
	return &Worker{
		id:           id,
		store:        store,
		pollInterval: pollInterval,
		log:          logger.Named("worker").With("worker_id", id),
	}
}

// Run executes the worker loop until ctx is cancelled.
//
// The active_workers registration is matched by a deferred deregistration so
// the pair holds on every exit path, including signal-triggered shutdown.
// A cancelled context stops the claiming of new jobs; a job already claimed
// still runs to completion or failure (see process).
func (w *Worker) Run(ctx context.Context) error {
	if err := w.store.RegisterWorker(); err != nil {
		return err
	}
	defer func() {
		if err := w.store.DeregisterWorker(); err != nil {
			w.log.Errorw("Failed to deregister worker", "error", err)
		}
		w.log.Infow("Worker stopped")
	}()

	w.log.Infow("Worker started", "poll_interval", w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		job, err := w.store.Claim()
		if err != nil {
			// Store error: abandon this iteration and retry on the next poll
			w.log.Errorw("Failed to claim job", "error", err)
			w.idle(ctx)
			continue
		}

		if job == nil {
			w.idle(ctx)
			continue
		}

		w.process(job)
	}
}

// idle sleeps for the poll interval, waking early on shutdown
func (w *Worker) idle(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.pollInterval):
	}
}

// process executes one claimed job and persists the classified outcome.
//
// Execution deliberately uses context.Background(): once claimed, a job runs
// to completion or failure even during graceful shutdown. Its own timeout
// still bounds the wall time. No outcome here may terminate the worker.
func (w *Worker) process(job *queue.Job) {
	w.log.Infow("Processing job", "job_id", job.ID, "attempts", job.Attempts, "priority", job.Priority)

	result := Execute(context.Background(), job.Command, job.TimeoutDuration())

	stderr := result.Stderr
	if result.TimedOut {
		marker := fmt.Sprintf("TIMEOUT after %ds", job.Timeout)
		if stderr != "" {
			stderr = strings.TrimRight(stderr, "\n") + "\n" + marker
		} else {
			stderr = marker
		}
	}

	if err := joblog.Write(w.store.LogDir(), job.ID, result.ExitCode, result.Stdout, stderr); err != nil {
		w.log.Warnw("Failed to write job log", "job_id", job.ID, "error", err)
	}

	if result.Succeeded() {
		if err := w.store.MarkCompleted(job.ID, result.Elapsed); err != nil {
			w.log.Errorw("Failed to mark job completed", "job_id", job.ID, "error", err)
			return
		}
		w.log.Infow("Job completed",
			"job_id", job.ID,
			"elapsed", result.Elapsed.Round(time.Millisecond),
		)
		return
	}

	reason := result.FailureReason(job.Timeout)
	outcome, err := w.store.MarkFailed(job, reason)
	if err != nil {
		w.log.Errorw("Failed to record job failure", "job_id", job.ID, "error", err)
		return
	}

	if outcome.Dead {
		w.log.Warnw("Job moved to dead letter queue",
			"job_id", job.ID,
			"attempts", outcome.Attempts,
			"reason", reason,
		)
	} else {
		w.log.Infow("Job scheduled for retry",
			"job_id", job.ID,
			"attempt", outcome.Attempts,
			"max_retries", job.MaxRetries,
			"retry_in", outcome.Delay,
			"reason", reason,
		)
	}
}
