// Package sentiment scores short messages with the LLM.
package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"buddy-backends/internal/llm"
)

const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"

	defaultConcurrency = 4
)

// Result is the sentiment of one message. Score is in [-1, 1].
type Result struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

// Neutral is reported whenever a message cannot be scored.
var Neutral = Result{Score: 0, Label: LabelNeutral}

const promptTemplate = `Analyze the sentiment of this message. Return ONLY valid JSON like:
{ "score": <number from -1.0 to 1.0>, "label": "positive" | "neutral" | "negative" }
Message: %s
Return only the JSON object (no explanation).`

type Analyzer struct {
	llm         llm.Client
	log         *slog.Logger
	concurrency int
}

// New builds an Analyzer running at most concurrency LLM calls at once (4 when below 1).
func New(client llm.Client, log *slog.Logger, concurrency int) *Analyzer {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Analyzer{llm: client, log: log, concurrency: concurrency}
}

// Analyze scores a single message. Failures degrade to Neutral.
func (a *Analyzer) Analyze(ctx context.Context, text string) Result {
	quoted, _ := json.Marshal(text)
	reply, err := a.llm.Complete(ctx, []llm.Message{llm.User(fmt.Sprintf(promptTemplate, quoted))},
		llm.Options{MaxTokens: 80, Temperature: 0, TopP: 1.0})
	if err != nil {
		a.log.Warn("sentiment request failed", "err", err)
		return Neutral
	}
	res, err := Parse(reply)
	if err != nil {
		a.log.Warn("sentiment parse failed", "err", err, "reply", reply)
		return Neutral
	}
	return res
}

// AnalyzeBatch scores texts concurrently and returns results in input order.
// Only cancellation of ctx is reported as an error.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, texts []string) ([]Result, error) {
	results := make([]Result, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, text := range texts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.Analyze(gctx, text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Parse reads an LLM reply, tolerating markdown code fences. The score is clamped
// to [-1, 1] and unknown labels become neutral.
func Parse(reply string) (Result, error) {
	clean := strings.ReplaceAll(reply, "```json", "")
	clean = strings.TrimSpace(strings.ReplaceAll(clean, "```", ""))

	var raw struct {
		Score *float64 `json:"score"`
		Label *string  `json:"label"`
	}
	if err := json.Unmarshal([]byte(clean), &raw); err != nil {
		return Neutral, fmt.Errorf("decode sentiment: %w", err)
	}

	res := Neutral
	if raw.Score != nil {
		res.Score = max(-1.0, min(1.0, *raw.Score))
	}
	if raw.Label != nil {
		switch *raw.Label {
		case LabelPositive, LabelNeutral, LabelNegative:
			res.Label = *raw.Label
		}
	}
	return res, nil
}
