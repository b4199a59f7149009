package llm

import (
	"fmt"
	"os"
	"strings"
)

// Config holds completion client configuration
type Config struct {
	Provider  string
	APIKey    string
	CacheSize int
}

// NewFromEnv creates a completion client based on environment variables.
// Priority:
//  1. REPODOC_LLM_PROVIDER (openai, anthropic)
//  2. Check for API keys: ANTHROPIC_API_KEY, OPENAI_API_KEY
func NewFromEnv() (CompletionClient, error) {
	provider := os.Getenv(EnvProvider)
	anthropicKey := os.Getenv(EnvAnthropicAPIKey)
	openaiKey := os.Getenv(EnvOpenAIAPIKey)

	cache := NewCache(DefaultCacheSize)

	if provider != "" {
		provider = strings.ToLower(provider)
		switch provider {
		case ProviderOpenAI:
			return NewOpenAIProvider(openaiKey, cache)
		case ProviderAnthropic:
			return NewAnthropicProvider(anthropicKey, cache)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
		}
	}

	// Auto-detect based on available API keys
	if anthropicKey != "" {
		return NewAnthropicProvider(anthropicKey, cache)
	}
	if openaiKey != "" {
		return NewOpenAIProvider(openaiKey, cache)
	}

	return nil, fmt.Errorf("%w: set %s or %s", ErrNoProviderEnabled, EnvAnthropicAPIKey, EnvOpenAIAPIKey)
}

// New creates a completion client with explicit configuration.
func New(cfg Config) (CompletionClient, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cache)
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cache)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

// DetectProvider returns the provider that NewFromEnv would choose with
// the current environment, or "" when none is configured.
func DetectProvider() string {
	if provider := os.Getenv(EnvProvider); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv(EnvAnthropicAPIKey) != "" {
		return ProviderAnthropic
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	return ""
}
