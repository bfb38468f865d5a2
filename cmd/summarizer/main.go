package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"buddy-backends/internal/app"
	"buddy-backends/internal/httputil"
)

func main() {
	deps, err := app.BuildSummarizer()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("summarizer listening", "addr", addr,
		"async_jobs", deps.Store != nil && deps.Queue != nil)
	if err := http.ListenAndServe(addr, routes(deps)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		deps.Log.Error("server failed", "err", err)
	}
}

func routes(deps app.SummarizerDeps) chi.Router {
	r := httputil.NewRouter(deps.Log)

	r.Post("/summary", summaryHandler(deps))
	r.Post("/chat", chatHandler(deps))
	r.Post("/api/analyze-sentiment", sentimentHandler(deps))
	r.Post("/api/match-skills", matchSkillsHandler(deps))
	r.Post("/api/summaries", createJobHandler(deps))
	r.Get("/api/summaries/{id}", getJobHandler(deps))
	r.Post("/api/cache/invalidate", invalidateHandler(deps))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"message": "summarizer is running",
		})
	})
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	return r
}
