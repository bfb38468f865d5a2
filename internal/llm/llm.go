package llm

import "context"

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    Role
	Content string
}

// Options tunes a single completion. Zero MaxTokens and TopP leave the provider defaults.
type Options struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Client is a minimal LLM interface to allow pluggable providers.
type Client interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

// System and User build single messages.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message   { return Message{Role: RoleUser, Content: content} }
