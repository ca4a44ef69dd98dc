package ports

import "context"

// Message is one chat turn sent to the completion provider.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest holds everything a single provider call needs.
type CompletionRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// JSONMode asks the provider for a strict JSON object response.
	JSONMode bool
}

// Completer returns the text of the first completion choice.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
