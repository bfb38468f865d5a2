package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"buddy-backends/internal/app"
	"buddy-backends/internal/httputil"
	"buddy-backends/internal/matching"
	"buddy-backends/internal/sentiment"
)

type sentimentRequest struct {
	Texts []string `json:"texts"`
}

type matchRequest struct {
	ProjectDescription string `json:"projectDescription"`
}

func sentimentHandler(deps app.SummarizerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sentimentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if len(req.Texts) == 0 {
			httputil.WriteJSON(w, http.StatusOK, []sentiment.Result{})
			return
		}

		results, err := deps.Sentiment.AnalyzeBatch(r.Context(), req.Texts)
		if err != nil {
			httputil.Fail(deps.Log, w, "sentiment analysis cancelled", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, results)
	}
}

func matchSkillsHandler(deps app.SummarizerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req matchRequest
		// An unreadable body is treated like a missing description.
		_ = json.NewDecoder(r.Body).Decode(&req)

		res, err := deps.Matcher.MatchSkills(r.Context(), req.ProjectDescription)
		switch {
		case err == nil:
			httputil.WriteJSON(w, http.StatusOK, res)
		case errors.Is(err, matching.ErrEmptyDescription):
			httputil.Fail(deps.Log, w, "projectDescription required", err, http.StatusBadRequest)
		case errors.Is(err, matching.ErrNoDirectory):
			httputil.Fail(deps.Log, w, "user directory not initialized", err, http.StatusInternalServerError)
		case errors.Is(err, matching.ErrLoadUsers):
			httputil.Fail(deps.Log, w, "Failed to load users", err, http.StatusInternalServerError)
		default:
			httputil.Fail(deps.Log, w, "Failed to process skill matching", err, http.StatusInternalServerError)
		}
	}
}
