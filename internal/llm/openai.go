package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient calls the OpenAI Chat Completions API. With Azure request options the
// model is the deployment name.
type OpenAIClient struct {
	model   openai.ChatModel
	client  *openai.Client
	timeout time.Duration
}

const defaultChatTimeout = 60 * time.Second

// ErrNoChoices is returned when the provider answers without any content.
var ErrNoChoices = errors.New("openai: no choices returned")

// NewOpenAIClient builds a client with defaults against api.openai.com.
func NewOpenAIClient(apiKey string, model openai.ChatModel) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	return NewClientWithOptions(model, option.WithAPIKey(apiKey))
}

// NewClientWithOptions builds a client from raw request options (Azure endpoint, test server).
func NewClientWithOptions(model openai.ChatModel, opts ...option.RequestOption) (*OpenAIClient, error) {
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	cli := openai.NewClient(opts...)
	return &OpenAIClient{
		model:   model,
		client:  &cli,
		timeout: defaultChatTimeout,
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("at least one message required")
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    buildMessages(messages),
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.TopP > 0 {
		params.TopP = openai.Float(opts.TopP)
	}
	resp, err := c.client.Chat.Completions.New(reqCtx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(m.Content),
					},
				},
			})
		case RoleAssistant:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.String(m.Content),
					},
				},
			})
		default:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(m.Content),
					},
				},
			})
		}
	}
	return out
}
