package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"buddy-backends/internal/app"
	"buddy-backends/internal/assistant"
	"buddy-backends/internal/httputil"
)

const (
	msgMissingQuestion = "Missing 'question' field"
	msgAskFailed       = "Sorry, I encountered an error processing your request. Please try again."
)

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Response string `json:"response"`
}

func main() {
	deps, err := app.BuildAvatar()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("avatar listening", "addr", addr)
	if err := http.ListenAndServe(addr, routes(deps)); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func routes(deps app.AvatarDeps) chi.Router {
	r := httputil.NewRouter(deps.Log)
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Buddy assistant is running."))
	})
	r.Post("/ask", askHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	return r
}

func askHandler(deps app.AvatarDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Question) == "" {
			httputil.Fail(deps.Log, w, msgMissingQuestion, err, http.StatusBadRequest)
			return
		}

		answer, err := deps.Assistant.Ask(r.Context(), req.Question)
		if errors.Is(err, assistant.ErrEmptyQuestion) {
			httputil.Fail(deps.Log, w, msgMissingQuestion, err, http.StatusBadRequest)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, msgAskFailed, err, http.StatusInternalServerError)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, askResponse{Response: answer})
	}
}
