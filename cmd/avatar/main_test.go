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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"buddy-backends/internal/app"
	"buddy-backends/internal/assistant"
	"buddy-backends/internal/llm"
	"buddy-backends/internal/retrieval"
)

type stubRetriever struct {
	text string
	err  error
}

func (s stubRetriever) Retrieve(_ context.Context, _ string, _ int) (string, error) {
	return s.text, s.err
}

func newTestDeps(r assistant.Retriever, client llm.Client) app.AvatarDeps {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return app.AvatarDeps{
		Log:       log,
		Assistant: assistant.New(r, client, log, 2),
	}
}

func TestAskHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		retriever  stubRetriever
		setup      func(*llm.MockClient)
		wantStatus int
		wantBody   map[string]string
	}{
		{
			name:      "answers with retrieved context",
			body:      `{"question": "How do I join a Teams meeting?"}`,
			retriever: stubRetriever{text: "Teams meetings are joined from the calendar."},
			setup: func(c *llm.MockClient) {
				c.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []llm.Message) bool {
					return strings.Contains(msgs[0].Content, "Teams meetings are joined from the calendar.") &&
						msgs[1].Content == "How do I join a Teams meeting?"
				}), mock.Anything).Return("Open the calendar and click Join.", nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"response": "Open the calendar and click Join."},
		},
		{
			name:      "retrieval failure still answers",
			body:      `{"question": "Hello?"}`,
			retriever: stubRetriever{err: &retrieval.EmbeddingError{Source: retrieval.QuerySource, Err: errors.New("timeout")}},
			setup: func(c *llm.MockClient) {
				c.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("Hi there.", nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"response": "Hi there."},
		},
		{
			name:       "missing question",
			body:       `{}`,
			setup:      func(c *llm.MockClient) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]string{"error": msgMissingQuestion},
		},
		{
			name:       "blank question",
			body:       `{"question": "   "}`,
			setup:      func(c *llm.MockClient) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]string{"error": msgMissingQuestion},
		},
		{
			name:       "invalid json",
			body:       `{not json`,
			setup:      func(c *llm.MockClient) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]string{"error": msgMissingQuestion},
		},
		{
			name: "llm failure",
			body: `{"question": "Hello?"}`,
			setup: func(c *llm.MockClient) {
				c.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("quota exceeded")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]string{"error": msgAskFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(llm.MockClient)
			tt.setup(client)

			req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			routes(newTestDeps(tt.retriever, client)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantBody, got)
			client.AssertExpectations(t)
		})
	}
}

func TestRootAndHealth(t *testing.T) {
	h := routes(newTestDeps(stubRetriever{}, new(llm.MockClient)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Buddy assistant is running.", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
