// Package docqa summarizes documents and answers questions strictly from their content.
package docqa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"buddy-backends/internal/cache"
	"buddy-backends/internal/llm"
)

// NotFound is the only reply allowed when a document does not contain the answer.
const NotFound = "Cannot be found in the document."

const (
	summaryLimit  = 10000
	summarySuffix = "... [text truncated]"
	chatLimit     = 8000
	chatSuffix    = "... [text truncated for processing]"

	kindSummary = "summary"
	kindChat    = "chat"
)

// ErrExtraction marks failures to fetch or read the source document.
var ErrExtraction = errors.New("document extraction failed")

// Extractor turns a document URL into text. *extract.Extractor implements it.
type Extractor interface {
	Extract(ctx context.Context, url, fileName string) (string, error)
}

type Service struct {
	extractor Extractor
	llm       llm.Client
	cache     cache.Cache
	ttl       time.Duration
	log       *slog.Logger
}

// New builds a Service. A nil cache disables answer caching.
func New(extractor Extractor, client llm.Client, c cache.Cache, ttl time.Duration, log *slog.Logger) *Service {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Service{extractor: extractor, llm: client, cache: c, ttl: ttl, log: log}
}

// Summarize returns a two to three sentence summary of the document.
func (s *Service) Summarize(ctx context.Context, fileURL, fileName string) (string, error) {
	key := cache.GenerateCacheKey(kindSummary, fileURL, fileName, "")
	if answer := s.cached(ctx, key); answer != "" {
		return answer, nil
	}

	text, err := s.extract(ctx, fileURL, fileName)
	if err != nil {
		return "", err
	}
	text = truncate(text, summaryLimit, summarySuffix)

	messages := []llm.Message{
		llm.System(summarySystemPrompt),
		llm.User(fmt.Sprintf(summaryUserPrompt, fileName, text)),
	}
	reply, err := s.llm.Complete(ctx, messages, llm.Options{MaxTokens: 200, Temperature: 0.2, TopP: 1.0})
	if err != nil {
		return "", fmt.Errorf("summarize %s: %w", fileName, err)
	}

	answer := normalize(reply)
	s.store(ctx, key, fileName, answer)
	return answer, nil
}

// Ask answers question in one or two sentences using only the document.
func (s *Service) Ask(ctx context.Context, fileURL, fileName, question string) (string, error) {
	key := cache.GenerateCacheKey(kindChat, fileURL, fileName, question)
	if answer := s.cached(ctx, key); answer != "" {
		return answer, nil
	}

	text, err := s.extract(ctx, fileURL, fileName)
	if err != nil {
		return "", err
	}
	text = truncate(text, chatLimit, chatSuffix)

	messages := []llm.Message{
		llm.System(chatSystemPrompt),
		llm.User(fmt.Sprintf(chatUserPrompt, fileName, text, question)),
	}
	reply, err := s.llm.Complete(ctx, messages, llm.Options{MaxTokens: 200, Temperature: 0, TopP: 1.0})
	if err != nil {
		return "", fmt.Errorf("answer question on %s: %w", fileName, err)
	}

	answer := normalize(reply)
	s.store(ctx, key, fileName, answer)
	return answer, nil
}

// Invalidate drops every cached answer for fileURL.
func (s *Service) Invalidate(ctx context.Context, fileURL string) error {
	return s.cache.InvalidateDocument(ctx, fileURL)
}

func (s *Service) extract(ctx context.Context, fileURL, fileName string) (string, error) {
	text, err := s.extractor.Extract(ctx, fileURL, fileName)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return text, nil
}

func (s *Service) cached(ctx context.Context, key string) string {
	answer, err := s.cache.GetAnswer(ctx, key)
	if err != nil {
		s.log.Warn("answer cache read failed", "err", err)
		return ""
	}
	if answer == nil {
		return ""
	}
	s.log.Debug("answer cache hit", "file_name", answer.FileName)
	return answer.Text
}

func (s *Service) store(ctx context.Context, key, fileName, text string) {
	if text == "" {
		return
	}
	entry := &cache.Answer{Text: text, FileName: fileName, CreatedAt: time.Now().UTC()}
	if err := s.cache.SetAnswer(ctx, key, entry, s.ttl); err != nil {
		s.log.Warn("answer cache write failed", "err", err)
	}
}

// truncate caps text at limit characters and appends suffix when it had to cut.
func truncate(text string, limit int, suffix string) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + suffix
}

func normalize(reply string) string {
	if strings.Contains(reply, NotFound) {
		return NotFound
	}
	return strings.TrimSpace(reply)
}
