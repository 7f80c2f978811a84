package domain

import "context"

// Message roles for completion requests.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged turn in a completion request.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest is a provider-agnostic text completion request.
// Model and Temperature override the provider defaults when non-zero.
type CompletionRequest struct {
	System      string
	Messages    []Message
	Model       string
	Temperature float32
	MaxTokens   int
}

// CompletionResponse holds the raw model reply plus provider metadata.
type CompletionResponse struct {
	Content      string
	Model        string
	PromptTokens int
	TotalTokens  int
}

// Completer invokes a text completion provider. One request, one attempt;
// retry policy and timeouts belong to the implementation.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// HealthChecker is implemented by providers that can verify availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
