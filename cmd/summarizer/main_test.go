package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"buddy-backends/internal/app"
	"buddy-backends/internal/cache"
	"buddy-backends/internal/docqa"
	"buddy-backends/internal/extract"
	"buddy-backends/internal/llm"
	"buddy-backends/internal/matching"
	"buddy-backends/internal/queue"
	"buddy-backends/internal/sentiment"
	"buddy-backends/internal/store"
)

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(_ context.Context, _, _ string) (string, error) {
	return s.text, s.err
}

type testEnv struct {
	llm   *llm.MockClient
	store *store.MockStore
	queue *queue.MockQueue
	cache *cache.MockCache
}

func newTestDeps(ex docqa.Extractor, withBackends bool) (app.SummarizerDeps, *testEnv) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		llm:   new(llm.MockClient),
		store: new(store.MockStore),
		queue: new(queue.MockQueue),
		cache: new(cache.MockCache),
	}
	deps := app.SummarizerDeps{
		Log:       log,
		Docs:      docqa.New(ex, env.llm, env.cache, time.Hour, log),
		Sentiment: sentiment.New(env.llm, log, 2),
		Matcher:   matching.New(nil, env.llm, log),
	}
	if withBackends {
		deps.Store = env.store
		deps.Queue = env.queue
		deps.Matcher = matching.New(env.store, env.llm, log)
	}
	return deps, env
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestSummaryHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		extractor  stubExtractor
		setup      func(*testEnv)
		wantStatus int
		check      func(*testing.T, map[string]any)
	}{
		{
			name:      "success",
			body:      `{"file_url": "https://files/a.txt", "file_name": "a.txt"}`,
			extractor: stubExtractor{text: "Quarterly plan for the helpdesk."},
			setup: func(e *testEnv) {
				e.cache.On("GetAnswer", mock.Anything, mock.Anything).Return(nil, nil)
				e.cache.On("SetAnswer", mock.Anything, mock.Anything, mock.Anything, time.Hour).Return(nil)
				e.llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("A helpdesk plan.", nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "A helpdesk plan.", body["summary"])
				assert.Equal(t, "a.txt", body["file_name"])
				assert.Equal(t, "success", body["status"])
			},
		},
		{
			name:       "missing file name",
			body:       `{"file_url": "https://files/a.txt"}`,
			setup:      func(e *testEnv) {},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "File URL and name are required", body["error"])
			},
		},
		{
			name:      "unsupported type",
			body:      `{"file_url": "https://files/a.xls", "file_name": "a.xls"}`,
			extractor: stubExtractor{err: extract.ErrUnsupportedType},
			setup: func(e *testEnv) {
				e.cache.On("GetAnswer", mock.Anything, mock.Anything).Return(nil, nil)
			},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Contains(t, body["error"], "unsupported file type")
			},
		},
		{
			name:      "llm failure",
			body:      `{"file_url": "https://files/a.txt", "file_name": "a.txt"}`,
			extractor: stubExtractor{text: "text"},
			setup: func(e *testEnv) {
				e.cache.On("GetAnswer", mock.Anything, mock.Anything).Return(nil, nil)
				e.llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("502"))
			},
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Internal server error", body["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, env := newTestDeps(tt.extractor, false)
			tt.setup(env)

			rec, body := do(t, routes(deps), http.MethodPost, "/summary", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			tt.check(t, body)
		})
	}
}

func TestChatHandler(t *testing.T) {
	t.Run("not found answer is normalized", func(t *testing.T) {
		deps, env := newTestDeps(stubExtractor{text: "Only the budget is listed."}, false)
		env.cache.On("GetAnswer", mock.Anything, mock.Anything).Return(nil, nil)
		env.cache.On("SetAnswer", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		env.llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return("I looked. Cannot be found in the document.", nil)

		rec, body := do(t, routes(deps), http.MethodPost, "/chat",
			`{"file_url": "https://files/a.txt", "file_name": "a.txt", "question": "Who owns it?"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, docqa.NotFound, body["response"])
		assert.Equal(t, "Who owns it?", body["question"])
		assert.Equal(t, "success", body["status"])
	})

	t.Run("missing question", func(t *testing.T) {
		deps, _ := newTestDeps(stubExtractor{}, false)

		rec, body := do(t, routes(deps), http.MethodPost, "/chat",
			`{"file_url": "https://files/a.txt", "file_name": "a.txt"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "File URL, name, and question are required", body["error"])
	})
}

func TestSentimentHandler(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		deps, env := newTestDeps(stubExtractor{}, false)

		rec, _ := do(t, routes(deps), http.MethodPost, "/api/analyze-sentiment", `{"texts": []}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
		env.llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("scores in order", func(t *testing.T) {
		deps, env := newTestDeps(stubExtractor{}, false)
		env.llm.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []llm.Message) bool {
			return strings.Contains(msgs[0].Content, "thanks a lot")
		}), mock.Anything).Return(`{"score": 0.8, "label": "positive"}`, nil)
		env.llm.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []llm.Message) bool {
			return strings.Contains(msgs[0].Content, "still broken")
		}), mock.Anything).Return("```json\n{\"score\": -2, \"label\": \"negative\"}\n```", nil)

		rec, _ := do(t, routes(deps), http.MethodPost, "/api/analyze-sentiment",
			`{"texts": ["thanks a lot", "still broken"]}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[{"score": 0.8, "label": "positive"}, {"score": -1, "label": "negative"}]`, rec.Body.String())
	})
}

func TestMatchSkillsHandler(t *testing.T) {
	t.Run("blank description", func(t *testing.T) {
		deps, _ := newTestDeps(stubExtractor{}, true)
		rec, body := do(t, routes(deps), http.MethodPost, "/api/match-skills", `{"projectDescription": " "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "projectDescription required", body["error"])
	})

	t.Run("no directory", func(t *testing.T) {
		deps, _ := newTestDeps(stubExtractor{}, false)
		rec, body := do(t, routes(deps), http.MethodPost, "/api/match-skills", `{"projectDescription": "React portal"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "user directory not initialized", body["error"])
	})

	t.Run("no users", func(t *testing.T) {
		deps, env := newTestDeps(stubExtractor{}, true)
		env.store.On("ListUsers", mock.Anything).Return([]store.User{}, nil)
		rec, _ := do(t, routes(deps), http.MethodPost, "/api/match-skills", `{"projectDescription": "React portal"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"matches": []}`, rec.Body.String())
	})

	t.Run("matches", func(t *testing.T) {
		deps, env := newTestDeps(stubExtractor{}, true)
		env.store.On("ListUsers", mock.Anything).Return([]store.User{{Email: "dev@example.com", Skills: []string{"React"}}}, nil)
		env.llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).
			Return(`{"matches": [{"email": "dev@example.com", "score": 0.75, "reason": "React"}]}`, nil)
		rec, _ := do(t, routes(deps), http.MethodPost, "/api/match-skills", `{"projectDescription": "React portal"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"matches": [{"email": "dev@example.com", "score": 0.75, "reason": "React"}]}`, rec.Body.String())
	})

	t.Run("unparseable reply", func(t *testing.T) {
		deps, env := newTestDeps(stubExtractor{}, true)
		env.store.On("ListUsers", mock.Anything).Return([]store.User{{Email: "dev@example.com"}}, nil)
		env.llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("dev is great", nil)
		rec, body := do(t, routes(deps), http.MethodPost, "/api/match-skills", `{"projectDescription": "React portal"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to process skill matching", body["error"])
	})
}

func TestSummaryJobs(t *testing.T) {
	jobID := uuid.New()

	t.Run("create queues task", func(t *testing.T) {
		deps, env := newTestDeps(stubExtractor{}, true)
		env.store.On("CreateSummaryJob", mock.Anything, "https://files/a.pdf", "a.pdf").
			Return(store.SummaryJob{ID: jobID, FileURL: "https://files/a.pdf", FileName: "a.pdf", Status: store.StatusProcessing}, nil)
		env.queue.On("Enqueue", mock.Anything, mock.MatchedBy(func(task queue.Task) bool {
			var p queue.SummarizePayload
			return task.Type == queue.TaskTypeSummarize &&
				json.Unmarshal(task.Payload, &p) == nil && p.JobID == jobID && p.FileName == "a.pdf"
		})).Return(nil).Once()

		rec, body := do(t, routes(deps), http.MethodPost, "/api/summaries",
			`{"file_url": "https://files/a.pdf", "file_name": "a.pdf"}`)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, jobID.String(), body["job_id"])
		assert.Equal(t, "processing", body["status"])
		env.queue.AssertExpectations(t)
	})

	t.Run("enqueue failure marks job failed", func(t *testing.T) {
		deps, env := newTestDeps(stubExtractor{}, true)
		env.store.On("CreateSummaryJob", mock.Anything, mock.Anything, mock.Anything).
			Return(store.SummaryJob{ID: jobID, Status: store.StatusProcessing}, nil)
		env.queue.On("Enqueue", mock.Anything, mock.Anything).Return(errors.New("nats down"))
		env.store.On("UpdateSummaryJob", mock.Anything, jobID, store.StatusFailed, "", "enqueue failed").Return(nil).Once()

		rec, _ := do(t, routes(deps), http.MethodPost, "/api/summaries",
			`{"file_url": "https://files/a.pdf", "file_name": "a.pdf"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		env.store.AssertExpectations(t)
	})

	t.Run("not configured", func(t *testing.T) {
		deps, _ := newTestDeps(stubExtractor{}, false)
		rec, _ := do(t, routes(deps), http.MethodPost, "/api/summaries",
			`{"file_url": "https://files/a.pdf", "file_name": "a.pdf"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("get ready job", func(t *testing.T) {
		deps, env := newTestDeps(stubExtractor{}, true)
		env.store.On("GetSummaryJob", mock.Anything, jobID).
			Return(store.SummaryJob{ID: jobID, FileName: "a.pdf", Status: store.StatusReady, Summary: "Short."}, nil)

		rec, body := do(t, routes(deps), http.MethodGet, "/api/summaries/"+jobID.String(), "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", body["status"])
		assert.Equal(t, "Short.", body["summary"])
	})

	t.Run("get unknown job", func(t *testing.T) {
		deps, env := newTestDeps(stubExtractor{}, true)
		env.store.On("GetSummaryJob", mock.Anything, jobID).Return(store.SummaryJob{}, store.ErrJobNotFound)

		rec, _ := do(t, routes(deps), http.MethodGet, "/api/summaries/"+jobID.String(), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("get invalid id", func(t *testing.T) {
		deps, _ := newTestDeps(stubExtractor{}, true)
		rec, _ := do(t, routes(deps), http.MethodGet, "/api/summaries/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestInvalidateAndHealth(t *testing.T) {
	deps, env := newTestDeps(stubExtractor{}, false)
	env.cache.On("InvalidateDocument", mock.Anything, "https://files/a.pdf").Return(nil).Once()
	h := routes(deps)

	rec, _ := do(t, h, http.MethodPost, "/api/cache/invalidate", `{"file_url": "https://files/a.pdf"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	env.cache.AssertExpectations(t)

	rec, body := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "summarizer is running", body["message"])
}
