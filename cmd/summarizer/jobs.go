package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"buddy-backends/internal/app"
	"buddy-backends/internal/httputil"
	"buddy-backends/internal/queue"
	"buddy-backends/internal/store"
)

const (
	enqueueAttempts = 3
	enqueueBackoff  = 200 * time.Millisecond
)

type jobResponse struct {
	JobID    string `json:"job_id"`
	FileName string `json:"file_name,omitempty"`
	Status   string `json:"status"`
	Summary  string `json:"summary,omitempty"`
	Error    string `json:"error,omitempty"`
}

func createJobHandler(deps app.SummarizerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Store == nil || deps.Queue == nil {
			httputil.Fail(deps.Log, w, "async summaries not configured", nil, http.StatusServiceUnavailable)
			return
		}

		var req summaryRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		ctx := r.Context()
		job, err := deps.Store.CreateSummaryJob(ctx, req.FileURL, req.FileName)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to create summary job", err, http.StatusInternalServerError)
			return
		}

		payload, err := json.Marshal(queue.SummarizePayload{JobID: job.ID, FileURL: job.FileURL, FileName: job.FileName})
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to encode task", err, http.StatusInternalServerError)
			return
		}
		task := queue.Task{ID: uuid.New(), Type: queue.TaskTypeSummarize, Payload: payload}
		if err := queue.EnqueueWithRetry(ctx, deps.Queue, task, enqueueAttempts, enqueueBackoff); err != nil {
			if uerr := deps.Store.UpdateSummaryJob(ctx, job.ID, store.StatusFailed, "", "enqueue failed"); uerr != nil {
				deps.Log.Error("failed to mark job failed", "job_id", job.ID, "err", uerr)
			}
			httputil.Fail(deps.Log, w, "failed to enqueue summary job", err, http.StatusInternalServerError)
			return
		}

		deps.Log.Info("summary job queued", "job_id", job.ID, "file_name", job.FileName)
		httputil.WriteJSON(w, http.StatusAccepted, jobResponse{
			JobID:    job.ID.String(),
			FileName: job.FileName,
			Status:   string(job.Status),
		})
	}
}

func getJobHandler(deps app.SummarizerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Store == nil {
			httputil.Fail(deps.Log, w, "async summaries not configured", nil, http.StatusServiceUnavailable)
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid job id", err, http.StatusBadRequest)
			return
		}

		job, err := deps.Store.GetSummaryJob(r.Context(), id)
		if errors.Is(err, store.ErrJobNotFound) {
			httputil.Fail(deps.Log, w, "summary job not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load summary job", err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, jobResponse{
			JobID:    job.ID.String(),
			FileName: job.FileName,
			Status:   string(job.Status),
			Summary:  job.Summary,
			Error:    job.Error,
		})
	}
}
