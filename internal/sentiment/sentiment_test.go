package sentiment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"buddy-backends/internal/llm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    Result
		wantErr bool
	}{
		{"plain", `{"score": 0.8, "label": "positive"}`, Result{0.8, LabelPositive}, false},
		{"fenced", "```json\n{\"score\": -0.4, \"label\": \"negative\"}\n```", Result{-0.4, LabelNegative}, false},
		{"clamped high", `{"score": 3, "label": "positive"}`, Result{1, LabelPositive}, false},
		{"clamped low", `{"score": -7.5, "label": "negative"}`, Result{-1, LabelNegative}, false},
		{"unknown label", `{"score": 0.2, "label": "ecstatic"}`, Result{0.2, LabelNeutral}, false},
		{"missing fields", `{}`, Neutral, false},
		{"not json", "I think it is positive", Neutral, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.reply)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnalyzeBatchKeepsOrder(t *testing.T) {
	client := new(llm.MockClient)
	reply := func(fragment, out string) {
		client.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []llm.Message) bool {
			return len(msgs) == 1 && strings.Contains(msgs[0].Content, fragment)
		}), llm.Options{MaxTokens: 80, TopP: 1.0}).Return(out, nil)
	}
	reply("great job", `{"score": 0.9, "label": "positive"}`)
	reply("server is down", `{"score": -0.7, "label": "negative"}`)
	reply("meeting at 3", "not json at all")
	client.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []llm.Message) bool {
		return strings.Contains(msgs[0].Content, "timeout please")
	}), mock.Anything).Return("", errors.New("upstream timeout"))

	a := New(client, testLogger(), 2)
	got, err := a.AnalyzeBatch(context.Background(), []string{"great job", "server is down", "meeting at 3", "timeout please"})

	require.NoError(t, err)
	assert.Equal(t, []Result{
		{0.9, LabelPositive},
		{-0.7, LabelNegative},
		Neutral,
		Neutral,
	}, got)
}

func TestAnalyzeBatchEmpty(t *testing.T) {
	client := new(llm.MockClient)
	a := New(client, testLogger(), 0)

	got, err := a.AnalyzeBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
	client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyzeQuotesMessage(t *testing.T) {
	client := new(llm.MockClient)
	client.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []llm.Message) bool {
		return strings.Contains(msgs[0].Content, `Message: "say \"hi\""`)
	}), mock.Anything).Return(`{"score": 0.1, "label": "neutral"}`, nil)

	got := New(client, testLogger(), 1).Analyze(context.Background(), `say "hi"`)

	assert.Equal(t, Result{0.1, LabelNeutral}, got)
	client.AssertExpectations(t)
}
