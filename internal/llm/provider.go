// Package llm analyzes market questions with a large-language-model provider
// and turns the free-text answer into a probability/confidence prediction.
// Provider failures never propagate as errors into the trading pipeline; they
// degrade to an unavailable prediction with zero confidence.
package llm

import "context"

// Provider is the uniform single-turn completion interface every LLM backend
// implements. The analyzer builds the prompt and parses the response, so a
// provider only has to move text.
type Provider interface {
	// Name returns the provider identifier, e.g. "openai".
	Name() string
	// Complete sends a single-turn prompt and returns the raw text response.
	Complete(ctx context.Context, prompt string) (string, error)
}

const systemPrompt = "You are an expert prediction market analyst. Always respond with valid JSON."
