// Package assistant answers free-form questions, grounding the prompt with documents
// retrieved from the reference index.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"buddy-backends/internal/llm"
)

// Retriever returns a context block for a query. *retrieval.Index implements it.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) (string, error)
}

// ErrEmptyQuestion is returned for blank questions.
var ErrEmptyQuestion = errors.New("question is required")

const (
	defaultTopK      = 2
	replyTemperature = 0.7
	replyMaxTokens   = 150
)

// Service combines retrieval and text generation.
type Service struct {
	retriever Retriever
	llm       llm.Client
	log       *slog.Logger
	topK      int
}

// New builds a Service. topK below 1 falls back to 2.
func New(retriever Retriever, client llm.Client, log *slog.Logger, topK int) *Service {
	if topK < 1 {
		topK = defaultTopK
	}
	return &Service{retriever: retriever, llm: client, log: log, topK: topK}
}

// Ask answers question. A retrieval failure is logged and the question is answered
// without reference context; only generation failures are returned.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	contextText, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		s.log.Warn("retrieval failed, answering without context", "err", err)
		contextText = ""
	}

	messages := []llm.Message{
		llm.System(systemMessage(contextText)),
		llm.User(question),
	}
	answer, err := s.llm.Complete(ctx, messages, llm.Options{
		Temperature: replyTemperature,
		MaxTokens:   replyMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
