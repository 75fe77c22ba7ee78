package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ramyatawia/docflow-orchestrator/internal/metrics"
)

// ErrJobTimeout is wrapped into the terminal error message when an
// attempt exceeds the overall per-job timeout.
var ErrJobTimeout = errors.New("job timed out")

// Runner executes one job to completion (or failure). It is the
// Workflow Engine's entry point as seen by the worker; the job
// package does not know about workflow internals.
type Runner interface {
	Run(ctx context.Context, j *Job, tracker *Tracker) (Result, error)
}

// WorkerConfig tunes retry/backoff behavior.
type WorkerConfig struct {
	MaxAttempts             int
	ProgressUpdateInterval  time.Duration
	DequeueTimeout          time.Duration
}

// DefaultWorkerConfig matches the recognized-options defaults.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		MaxAttempts:            3,
		ProgressUpdateInterval: 2 * time.Second,
		DequeueTimeout:         time.Second,
	}
}

// Worker dequeues submitted jobs and dispatches them to a Runner. The
// design supports N >= 1 identical workers; correctness does not
// depend on N=1.
type Worker struct {
	store   *Store
	runner  Runner
	cfg     WorkerConfig
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewWorker constructs a Worker bound to store and runner.
func NewWorker(store *Store, runner Runner, cfg WorkerConfig, log *slog.Logger) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.ProgressUpdateInterval <= 0 {
		cfg.ProgressUpdateInterval = 2 * time.Second
	}
	if cfg.DequeueTimeout <= 0 {
		cfg.DequeueTimeout = time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Worker{store: store, runner: runner, cfg: cfg, log: log}
}

// SetMetrics attaches m so job completions and queue depth are
// recorded. Nil-safe to call with nil, and safe to leave unset: a
// Worker with no metrics attached records nothing.
func (w *Worker) SetMetrics(m *metrics.Metrics) {
	w.metrics = m
}

// Run loops until ctx is cancelled, dequeuing and processing jobs.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if w.metrics != nil {
			w.metrics.SetQueueDepth(len(w.store.Queue()))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case id, ok := <-w.store.Queue():
			if !ok {
				return nil
			}
			w.processJob(ctx, id)
		case <-time.After(w.cfg.DequeueTimeout):
			// idle timeout, loop
		}
	}
}

func (w *Worker) processJob(ctx context.Context, id string) {
	j, ok := w.store.Get(id)
	if !ok {
		return
	}
	if w.store.IsCancelled(id) {
		return
	}

	if err := w.store.UpdateProgress(id, 0, Processing); err != nil {
		w.log.Error("update progress failed", "job_id", id, "error", err)
		return
	}

	timeoutSeconds := j.EstimatedDurationS + 60
	overallTimeout := time.Duration(timeoutSeconds) * time.Second
	tracker := NewTracker(w.store, id, w.cfg.ProgressUpdateInterval)
	processingStart := time.Now()

	var lastErr error
	for attempt := 0; attempt < w.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt)) * time.Second)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, overallTimeout)
		result, err := w.runner.Run(attemptCtx, j, tracker)
		cancel()

		if err == nil {
			if w.store.IsCancelled(id) {
				return
			}
			result = validateResult(result)
			if setErr := w.store.SetResult(id, result); setErr != nil {
				w.log.Error("set result failed", "job_id", id, "error", setErr)
			}
			w.recordCompletion(j.JobType, Completed, processingStart)
			return
		}

		lastErr = err
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			if attempt == w.cfg.MaxAttempts-1 {
				_ = w.store.SetError(id, fmt.Sprintf("Job timed out after %d seconds (max retries exceeded)", timeoutSeconds))
				w.recordCompletion(j.JobType, Failed, processingStart)
				return
			}
			continue
		}
		if attempt == w.cfg.MaxAttempts-1 {
			_ = w.store.SetError(id, fmt.Sprintf("Job failed after %d retries: %s", w.cfg.MaxAttempts, lastErr))
			w.recordCompletion(j.JobType, Failed, processingStart)
			return
		}
	}
}

// recordCompletion is a no-op when no metrics are attached.
func (w *Worker) recordCompletion(jobType string, status Status, start time.Time) {
	if w.metrics == nil {
		return
	}
	w.metrics.RecordJobCompleted(jobType, string(status), time.Since(start))
}

// validateResult applies the empty-response fault policy: a
// trivially-short assembled response does not fail the job, it is
// replaced with a canned apology and flagged unsuccessful.
func validateResult(r Result) Result {
	if len(strings.TrimSpace(r.Content)) >= 5 {
		return r
	}
	return Result{
		Content: apologyText,
		Success: false,
	}
}

const apologyText = "I apologize, but I'm having trouble processing your request right now. Please try again."
