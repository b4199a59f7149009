package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) (*OpenAIProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &OpenAIProvider{
		apiKey:     "test-key",
		model:      DefaultOpenAIModel,
		endpoint:   server.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		cache:      NewCache(10),
	}, server
}

func newTestAnthropic(t *testing.T, handler http.HandlerFunc) (*AnthropicProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &AnthropicProvider{
		apiKey:     "test-key",
		model:      DefaultAnthropicModel,
		endpoint:   server.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		cache:      NewCache(10),
	}, server
}

func TestOpenAIProvider_Complete(t *testing.T) {
	var gotBody map[string]interface{}
	provider, _ := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "generated docs"}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	text, err := provider.Complete(context.Background(), "you are a writer", "document this", "gpt-4o-mini", 512)
	require.NoError(t, err)
	assert.Equal(t, "generated docs", text)

	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	messages, ok := gotBody["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "system", first["role"])
}

func TestOpenAIProvider_EmptyPrompt(t *testing.T) {
	provider, _ := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be sent for an empty prompt")
	})

	_, err := provider.Complete(context.Background(), "", "", "", 0)
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestOpenAIProvider_RetriesThenFails(t *testing.T) {
	callCount := 0
	provider, _ := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		callCount++
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := provider.Complete(context.Background(), "", "prompt", "", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderFailed)
	assert.Equal(t, maxRetries, callCount)
}

func TestOpenAIProvider_CachesCompletions(t *testing.T) {
	callCount := 0
	provider, _ := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		callCount++
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "cached text"}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		text, err := provider.Complete(ctx, "sys", "same prompt", "m", 0)
		require.NoError(t, err)
		assert.Equal(t, "cached text", text)
	}
	assert.Equal(t, 1, callCount, "identical requests should hit the cache")
}

func TestAnthropicProvider_Complete(t *testing.T) {
	var gotBody map[string]interface{}
	provider, _ := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		resp := map[string]interface{}{
			"content": []map[string]string{
				{"type": "text", "text": "narrative output"},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	text, err := provider.Complete(context.Background(), "system prompt", "user prompt", "", 256)
	require.NoError(t, err)
	assert.Equal(t, "narrative output", text)

	assert.Equal(t, DefaultAnthropicModel, gotBody["model"])
	assert.Equal(t, "system prompt", gotBody["system"])
	assert.Equal(t, float64(256), gotBody["max_tokens"])
}

func TestAnthropicProvider_EmptyCompletion(t *testing.T) {
	provider, _ := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"content": []map[string]string{}})
	})

	_, err := provider.Complete(context.Background(), "", "prompt", "", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderFailed)
}

func TestProviderMetadata(t *testing.T) {
	openai, err := NewOpenAIProvider("k", nil)
	require.NoError(t, err)
	defer func() { _ = openai.Close() }()
	assert.Equal(t, ProviderOpenAI, openai.Provider())
	assert.Equal(t, DefaultOpenAIModel, openai.Model())

	anthropic, err := NewAnthropicProvider("k", nil)
	require.NoError(t, err)
	defer func() { _ = anthropic.Close() }()
	assert.Equal(t, ProviderAnthropic, anthropic.Provider())
	assert.Equal(t, DefaultAnthropicModel, anthropic.Model())
}

func TestNewProviders_MissingKey(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "")
	t.Setenv(EnvAnthropicAPIKey, "")

	_, err := NewOpenAIProvider("", nil)
	assert.ErrorIs(t, err, ErrNoProviderEnabled)

	_, err = NewAnthropicProvider("", nil)
	assert.ErrorIs(t, err, ErrNoProviderEnabled)
}
