package main

import (
	"errors"
	"net/http"
	"strings"

	"buddy-backends/internal/app"
	"buddy-backends/internal/docqa"
	"buddy-backends/internal/httputil"
)

type summaryRequest struct {
	FileURL  string `json:"file_url" validate:"required"`
	FileName string `json:"file_name" validate:"required"`
}

type chatRequest struct {
	FileURL  string `json:"file_url" validate:"required"`
	FileName string `json:"file_name" validate:"required"`
	Question string `json:"question" validate:"required"`
}

type invalidateRequest struct {
	FileURL string `json:"file_url" validate:"required"`
}

func summaryHandler(deps app.SummarizerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req summaryRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.Fail(deps.Log, w, "File URL and name are required", err, http.StatusBadRequest)
			return
		}

		summary, err := deps.Docs.Summarize(r.Context(), req.FileURL, req.FileName)
		if err != nil {
			documentFailure(deps, w, err)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"summary":   summary,
			"file_name": req.FileName,
			"status":    "success",
		})
	}
}

func chatHandler(deps app.SummarizerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := httputil.DecodeJSON(r, &req); err != nil || strings.TrimSpace(req.Question) == "" {
			httputil.Fail(deps.Log, w, "File URL, name, and question are required", err, http.StatusBadRequest)
			return
		}

		answer, err := deps.Docs.Ask(r.Context(), req.FileURL, req.FileName, req.Question)
		if err != nil {
			documentFailure(deps, w, err)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"response":  answer,
			"file_name": req.FileName,
			"question":  req.Question,
			"status":    "success",
		})
	}
}

func invalidateHandler(deps app.SummarizerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req invalidateRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		if err := deps.Docs.Invalidate(r.Context(), req.FileURL); err != nil {
			httputil.Fail(deps.Log, w, "failed to invalidate cache", err, http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// documentFailure maps extraction problems to 400 and everything else to 500.
func documentFailure(deps app.SummarizerDeps, w http.ResponseWriter, err error) {
	if errors.Is(err, docqa.ErrExtraction) {
		httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
		return
	}
	httputil.Fail(deps.Log, w, "Internal server error", err, http.StatusInternalServerError)
}
