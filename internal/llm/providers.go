package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Provider configuration
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	// Default models
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-sonnet-4-5"

	// API endpoints
	openAIEndpoint    = "https://api.openai.com/v1/chat/completions"
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"

	// Environment variables
	EnvProvider        = "REPODOC_LLM_PROVIDER"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"

	// Retry configuration
	maxRetries        = 3
	initialBackoffMs  = 100
	maxBackoffMs      = 5000
	backoffMultiplier = 2.0

	// HTTP timeout per request; batch-level pacing is the dispatcher's job
	requestTimeout = 120 * time.Second
)

// OpenAIProvider implements CompletionClient using the OpenAI
// chat-completions API.
type OpenAIProvider struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	cache      *Cache
}

// NewOpenAIProvider creates a new OpenAI completion client.
func NewOpenAIProvider(apiKey string, cache *Cache) (*OpenAIProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvOpenAIAPIKey)
	}

	return &OpenAIProvider{
		apiKey:   apiKey,
		model:    DefaultOpenAIModel,
		endpoint: openAIEndpoint,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		cache: cache,
	}, nil
}

func (o *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userPrompt, model string, maxTokens int) (string, error) {
	if err := validatePrompt(userPrompt); err != nil {
		return "", err
	}

	if model == "" {
		model = o.model
	}

	hash := ComputeHash(systemPrompt, userPrompt, model)
	if o.cache != nil {
		if text, ok := o.cache.Get(hash); ok {
			return text, nil
		}
	}

	config := DefaultRetryConfig()
	text, err := retryWithBackoff(ctx, config, func() (string, error) {
		return o.callAPI(ctx, systemPrompt, userPrompt, model, maxTokens)
	})
	if err != nil {
		return "", fmt.Errorf("%w after %d attempts: %v", ErrProviderFailed, config.MaxRetries, err)
	}

	if o.cache != nil {
		o.cache.Set(hash, text)
	}

	return text, nil
}

func (o *OpenAIProvider) callAPI(ctx context.Context, systemPrompt, userPrompt, model string, maxTokens int) (string, error) {
	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	messages := make([]message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, message{Role: "user", Content: userPrompt})

	reqBody := map[string]interface{}{
		"model":    model,
		"messages": messages,
	}
	if maxTokens > 0 {
		reqBody["max_completion_tokens"] = maxTokens
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(apiResp.Choices) == 0 || apiResp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}

	return apiResp.Choices[0].Message.Content, nil
}

func (o *OpenAIProvider) Provider() string {
	return ProviderOpenAI
}

func (o *OpenAIProvider) Model() string {
	return o.model
}

func (o *OpenAIProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

// AnthropicProvider implements CompletionClient using the Anthropic
// messages API.
type AnthropicProvider struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	cache      *Cache
}

// NewAnthropicProvider creates a new Anthropic completion client.
func NewAnthropicProvider(apiKey string, cache *Cache) (*AnthropicProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvAnthropicAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvAnthropicAPIKey)
	}

	return &AnthropicProvider{
		apiKey:   apiKey,
		model:    DefaultAnthropicModel,
		endpoint: anthropicEndpoint,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		cache: cache,
	}, nil
}

func (a *AnthropicProvider) Complete(ctx context.Context, systemPrompt, userPrompt, model string, maxTokens int) (string, error) {
	if err := validatePrompt(userPrompt); err != nil {
		return "", err
	}

	if model == "" {
		model = a.model
	}
	if maxTokens <= 0 {
		// The messages API requires an explicit limit.
		maxTokens = 4096
	}

	hash := ComputeHash(systemPrompt, userPrompt, model)
	if a.cache != nil {
		if text, ok := a.cache.Get(hash); ok {
			return text, nil
		}
	}

	config := DefaultRetryConfig()
	text, err := retryWithBackoff(ctx, config, func() (string, error) {
		return a.callAPI(ctx, systemPrompt, userPrompt, model, maxTokens)
	})
	if err != nil {
		return "", fmt.Errorf("%w after %d attempts: %v", ErrProviderFailed, config.MaxRetries, err)
	}

	if a.cache != nil {
		a.cache.Set(hash, text)
	}

	return text, nil
}

func (a *AnthropicProvider) callAPI(ctx context.Context, systemPrompt, userPrompt, model string, maxTokens int) (string, error) {
	reqBody := map[string]interface{}{
		"model":      model,
		"max_tokens": maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": userPrompt},
		},
	}
	if systemPrompt != "" {
		reqBody["system"] = systemPrompt
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	for _, block := range apiResp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}

	return "", ErrEmptyCompletion
}

func (a *AnthropicProvider) Provider() string {
	return ProviderAnthropic
}

func (a *AnthropicProvider) Model() string {
	return a.model
}

func (a *AnthropicProvider) Close() error {
	a.httpClient.CloseIdleConnections()
	return nil
}
