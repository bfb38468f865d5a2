package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"buddy-backends/internal/app"
	"buddy-backends/internal/httputil"
	"buddy-backends/internal/queue"
	"buddy-backends/internal/store"
)

func main() {
	deps, err := app.BuildWorker()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("summary worker starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeSummarize, func(ctx context.Context, task queue.Task) error {
			return handleSummarize(ctx, deps, task)
		})
	})

	g.Go(func() error {
		return httputil.ServeHealth(ctx, deps.Log, deps.Config.HealthPort, "worker")
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("summary worker stopped", "err", err)
	}
}

// handleSummarize records the outcome on the job. Returning an error makes the queue
// retry the task, so only transient failures are returned.
func handleSummarize(ctx context.Context, deps app.WorkerDeps, task queue.Task) error {
	var payload queue.SummarizePayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		deps.Log.Error("dropping malformed summarize task", "task_id", task.ID, "err", err)
		return nil
	}
	log := deps.Log.With("job_id", payload.JobID, "file_name", payload.FileName, "attempt", task.Attempts+1)

	summary, err := deps.Docs.Summarize(ctx, payload.FileURL, payload.FileName)
	if err != nil {
		log.Warn("summary failed", "err", err)
		if uerr := deps.Store.UpdateSummaryJob(ctx, payload.JobID, store.StatusFailed, "", err.Error()); uerr != nil {
			return fmt.Errorf("mark job %s failed: %w", payload.JobID, uerr)
		}
		return nil
	}

	if err := deps.Store.UpdateSummaryJob(ctx, payload.JobID, store.StatusReady, summary, ""); err != nil {
		return fmt.Errorf("save summary for job %s: %w", payload.JobID, err)
	}
	log.Info("summary ready")
	return nil
}
