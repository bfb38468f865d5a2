package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIEmbedder calls OpenAI's embeddings API. With Azure request options the model
// is the deployment name.
type OpenAIEmbedder struct {
	model   openai.EmbeddingModel
	client  *openai.Client
	timeout time.Duration
}

const defaultEmbeddingTimeout = 30 * time.Second

// NewOpenAIEmbedder creates a new OpenAI embedder.
func NewOpenAIEmbedder(apiKey string, model openai.EmbeddingModel) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	return NewEmbedderWithOptions(model, option.WithAPIKey(apiKey))
}

// NewEmbedderWithOptions builds an embedder from raw request options, e.g. the
// azure.WithEndpoint/azure.WithAPIKey pair or a test base URL.
func NewEmbedderWithOptions(model openai.EmbeddingModel, opts ...option.RequestOption) (*OpenAIEmbedder, error) {
	if model == "" {
		model = openai.EmbeddingModelTextEmbeddingAda002
	}
	cli := openai.NewClient(opts...)
	return &OpenAIEmbedder{
		model:   model,
		client:  &cli,
		timeout: defaultEmbeddingTimeout,
	}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	if e == nil || e.client == nil {
		return nil, fmt.Errorf("nil openai embedder")
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings: no data returned")
	}
	// Convert []float64 to []float32
	embedding := resp.Data[0].Embedding
	vec := make(Vector, len(embedding))
	for i, v := range embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
