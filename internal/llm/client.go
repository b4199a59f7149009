package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Common errors
var (
	ErrEmptyPrompt       = errors.New("prompt cannot be empty")
	ErrProviderFailed    = errors.New("completion provider failed")
	ErrUnknownProvider   = errors.New("unknown completion provider")
	ErrNoProviderEnabled = errors.New("no completion provider configured")
	ErrEmptyCompletion   = errors.New("provider returned no completion")
)

// CompletionClient turns a prompt into generated text. Implementations own
// transport and auth; callers own prompt construction and concurrency.
type CompletionClient interface {
	// Complete sends one completion request and returns the generated text.
	Complete(ctx context.Context, systemPrompt, userPrompt, model string, maxTokens int) (string, error)

	// Provider returns the provider name.
	Provider() string

	// Model returns the default model used when a request names none.
	Model() string

	// Close releases any resources held by the client.
	Close() error
}

// ComputeHash identifies a completion request for caching. The system
// prompt, user prompt and model all participate so a model switch never
// serves stale text.
func ComputeHash(systemPrompt, userPrompt, model string) string {
	h := sha256.New()
	h.Write([]byte(systemPrompt))
	h.Write([]byte{0})
	h.Write([]byte(userPrompt))
	h.Write([]byte{0})
	h.Write([]byte(model))
	return hex.EncodeToString(h.Sum(nil))
}

// validatePrompt rejects requests with nothing to complete.
func validatePrompt(userPrompt string) error {
	if userPrompt == "" {
		return ErrEmptyPrompt
	}
	return nil
}
