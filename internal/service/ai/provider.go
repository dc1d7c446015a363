package ai

import "context"

// Backend identifies which chat-completion provider served a request.
type Backend string

const (
	BackendOpenAI    Backend = "openai"
	BackendAnthropic Backend = "anthropic"
)

// Provider is the abstraction over a chat-completion backend.
// A prompt is sent as a single user-role message; the raw generated
// text comes back unmodified.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Backend() Backend
}

// Reply is the orchestrator's answer to a lesson or chat prompt:
// sanitized text tagged with the backend that produced it.
type Reply struct {
	Content string  `json:"content"`
	Source  Backend `json:"source"`
}
