package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmullins/repodoc/pkg/types"
)

// testTemplate tags every prompt with the chunk ordinal so the mock client
// can tell which chunk it is serving.
const testTemplate = "#{{chunkIndex}}/{{totalChunks}}#\n{{content}}"

// mockClient simulates the completion capability. It records call order
// and concurrency so tests can observe wave behavior.
type mockClient struct {
	mu        sync.Mutex
	calls     int
	active    int
	maxActive int
	starts    []int // 1-based chunk ordinals in request start order
	prompts   []string
	systems   []string

	delays map[int]time.Duration // per-ordinal response delay
	failOn map[int]bool          // per-ordinal simulated failure
}

func (m *mockClient) Complete(ctx context.Context, systemPrompt, userPrompt, model string, maxTokens int) (string, error) {
	var ord int
	_, _ = fmt.Sscanf(userPrompt, "#%d/", &ord)

	m.mu.Lock()
	m.calls++
	m.active++
	if m.active > m.maxActive {
		m.maxActive = m.active
	}
	m.starts = append(m.starts, ord)
	m.prompts = append(m.prompts, userPrompt)
	m.systems = append(m.systems, systemPrompt)
	delay := m.delays[ord]
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.active--
		m.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if m.failOn[ord] {
		return "", errors.New("simulated service failure")
	}
	return fmt.Sprintf("OUT-%d", ord), nil
}

func (m *mockClient) Provider() string { return "mock" }
func (m *mockClient) Model() string    { return "mock-model" }
func (m *mockClient) Close() error     { return nil }

func makeChunks(n int) []types.Chunk {
	chunks := make([]types.Chunk, n)
	for i := range chunks {
		chunks[i] = types.NewChunk(i, fmt.Sprintf("chunk content %d\n", i))
	}
	return chunks
}

func defaultOpts() types.ProcessingOptions {
	opts := types.DefaultProcessingOptions()
	opts.PromptTemplate = testTemplate
	return opts
}

func TestProcessChunks_ValidatesOptions(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*types.ProcessingOptions)
		wantErr error
	}{
		{
			name:    "zero chunk size",
			mutate:  func(o *types.ProcessingOptions) { o.MaxChunkSize = 0 },
			wantErr: types.ErrInvalidChunkSize,
		},
		{
			name:    "negative chunk size",
			mutate:  func(o *types.ProcessingOptions) { o.MaxChunkSize = -1 },
			wantErr: types.ErrInvalidChunkSize,
		},
		{
			name:    "zero concurrency",
			mutate:  func(o *types.ProcessingOptions) { o.Concurrency = 0 },
			wantErr: types.ErrInvalidConcurrency,
		},
		{
			name:    "empty template",
			mutate:  func(o *types.ProcessingOptions) { o.PromptTemplate = "  " },
			wantErr: types.ErrEmptyTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{}
			opts := defaultOpts()
			tt.mutate(&opts)

			_, err := ProcessChunks(context.Background(), makeChunks(3), client, opts)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, client.calls, "misconfiguration must fail before any dispatch")
		})
	}
}

func TestProcess_SingleChunkVerbatim(t *testing.T) {
	client := &mockClient{}
	opts := defaultOpts()

	result, err := Process(context.Background(), "short corpus", client, opts)
	require.NoError(t, err)

	// No separator, no wrapping: the raw completion output.
	assert.Equal(t, "OUT-1", result.CombinedResult)
	require.Len(t, result.ChunkResults, 1)
	assert.True(t, result.ChunkResults[0].Success)
	assert.Equal(t, 1, result.Metrics.TotalChunks)
}

func TestProcess_EmptyContent(t *testing.T) {
	client := &mockClient{}
	opts := defaultOpts()
	progressCalls := 0
	opts.OnProgress = func(completed, total int) { progressCalls++ }

	result, err := Process(context.Background(), "", client, opts)
	require.NoError(t, err)

	assert.Empty(t, result.CombinedResult)
	assert.Empty(t, result.ChunkResults)
	assert.Zero(t, result.Metrics.TotalChunks)
	assert.Zero(t, client.calls)
	assert.Zero(t, progressCalls)
}

func TestProcessChunks_WaveBarrier(t *testing.T) {
	client := &mockClient{
		delays: map[int]time.Duration{
			// First chunk of each wave is the slow one; the wave barrier
			// must still hold the next wave back.
			1: 30 * time.Millisecond,
			3: 30 * time.Millisecond,
			2: 5 * time.Millisecond,
			4: 5 * time.Millisecond,
		},
	}
	opts := defaultOpts()
	opts.Concurrency = 2

	result, err := ProcessChunks(context.Background(), makeChunks(5), client, opts)
	require.NoError(t, err)
	require.Len(t, result.ChunkResults, 5)

	// Waves of [2, 2, 1], in that sequence.
	require.Len(t, client.starts, 5)
	assert.ElementsMatch(t, []int{1, 2}, client.starts[0:2])
	assert.ElementsMatch(t, []int{3, 4}, client.starts[2:4])
	assert.Equal(t, 5, client.starts[4])
	assert.LessOrEqual(t, client.maxActive, 2, "concurrency cap breached")
}

func TestProcessChunks_OrderIndependentIndexing(t *testing.T) {
	client := &mockClient{
		delays: map[int]time.Duration{
			1: 20 * time.Millisecond, // completes after chunk 2 and 3
			2: time.Millisecond,
		},
	}
	opts := defaultOpts()
	opts.Concurrency = 3

	result, err := ProcessChunks(context.Background(), makeChunks(3), client, opts)
	require.NoError(t, err)

	for i, cr := range result.ChunkResults {
		assert.Equal(t, i, cr.Index)
		assert.Equal(t, fmt.Sprintf("OUT-%d", i+1), cr.Output,
			"result slot %d must hold chunk %d's output regardless of completion order", i, i)
	}
}

func TestProcessChunks_ProgressCallback(t *testing.T) {
	client := &mockClient{}
	opts := defaultOpts()
	opts.Concurrency = 2

	var mu sync.Mutex
	var observed []int
	opts.OnProgress = func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 5, total)
		observed = append(observed, completed)
	}

	_, err := ProcessChunks(context.Background(), makeChunks(5), client, opts)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, observed,
		"progress must fire once per chunk, strictly increasing and gap-free")
}

func TestProcessChunks_FailureIsolation(t *testing.T) {
	client := &mockClient{failOn: map[int]bool{2: true}}
	opts := defaultOpts()
	opts.Concurrency = 3

	result, err := ProcessChunks(context.Background(), makeChunks(3), client, opts)
	require.NoError(t, err, "per-chunk failure must not surface as a batch error")

	require.Len(t, result.ChunkResults, 3)
	assert.True(t, result.ChunkResults[0].Success)
	assert.False(t, result.ChunkResults[1].Success)
	assert.Contains(t, result.ChunkResults[1].Error, "simulated service failure")
	assert.True(t, result.ChunkResults[2].Success)

	// Neighbors survive and the failed span is visibly marked in place.
	assert.Contains(t, result.CombinedResult, "OUT-1")
	assert.Contains(t, result.CombinedResult, "OUT-3")
	assert.Contains(t, result.CombinedResult, "[PROCESSING FAILED for section 2")

	assert.Equal(t, []int{1}, result.FailedChunks())
}

func TestProcessChunks_AllChunksFail(t *testing.T) {
	client := &mockClient{failOn: map[int]bool{1: true, 2: true}}
	opts := defaultOpts()

	result, err := ProcessChunks(context.Background(), makeChunks(2), client, opts)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Metrics.TotalChunks)
	assert.Zero(t, result.Metrics.TotalOutputChars)
	for _, cr := range result.ChunkResults {
		assert.False(t, cr.Success)
	}
}

func TestProcessChunks_RequestTimeout(t *testing.T) {
	client := &mockClient{
		delays: map[int]time.Duration{1: 200 * time.Millisecond},
	}
	opts := defaultOpts()
	opts.RequestTimeout = 10 * time.Millisecond

	result, err := ProcessChunks(context.Background(), makeChunks(2), client, opts)
	require.NoError(t, err)

	assert.False(t, result.ChunkResults[0].Success)
	assert.Contains(t, result.ChunkResults[0].Error, "deadline")
	assert.True(t, result.ChunkResults[1].Success, "a timed-out chunk must not poison its wave")
}

func TestProcessChunks_Metrics(t *testing.T) {
	client := &mockClient{}
	opts := defaultOpts()

	chunks := []types.Chunk{
		types.NewChunk(0, strings.Repeat("a", 10)),
		types.NewChunk(1, strings.Repeat("b", 7)),
	}

	result, err := ProcessChunks(context.Background(), chunks, client, opts)
	require.NoError(t, err)

	m := result.Metrics
	assert.Equal(t, 2, m.TotalChunks)
	assert.Equal(t, 17, m.TotalInputChars)
	assert.Equal(t, 5, m.EstimatedInputTokens) // ceil(17/4)
	assert.Equal(t, len("OUT-1")+len("OUT-2"), m.TotalOutputChars)
	assert.GreaterOrEqual(t, m.ProcessingTimeMs, int64(0))
}

func TestProcessChunks_PassesOptionsThrough(t *testing.T) {
	client := &mockClient{}
	opts := defaultOpts()
	opts.SystemPrompt = "you are a technical writer"

	_, err := ProcessChunks(context.Background(), makeChunks(1), client, opts)
	require.NoError(t, err)

	require.Len(t, client.systems, 1)
	assert.Equal(t, "you are a technical writer", client.systems[0])
	assert.Contains(t, client.prompts[0], "[CHUNK 1 OF 1", "dispatched content carries the annotation header")
}

func TestBuildPrompt(t *testing.T) {
	chunk := types.NewChunk(1, "the content")
	prompt := buildPrompt(chunk, 4, "part {{chunkIndex}} of {{totalChunks}}:\n{{content}}")

	assert.True(t, strings.HasPrefix(prompt, "part 2 of 4:\n"), "chunk index is 1-based")
	assert.Contains(t, prompt, "the content")
	assert.Contains(t, prompt, "[CHUNK 2 OF 4")
	assert.NotContains(t, prompt, "{{")
}

func TestAggregate(t *testing.T) {
	t.Run("single result verbatim", func(t *testing.T) {
		out := aggregate([]types.ChunkResult{{Index: 0, Output: "only part", Success: true}})
		assert.Equal(t, "only part", out)
	})

	t.Run("multiple results labeled and ordered", func(t *testing.T) {
		out := aggregate([]types.ChunkResult{
			{Index: 0, Output: "first", Success: true},
			{Index: 1, Output: "second", Success: true},
		})
		assert.Equal(t, "--- SECTION 1 OF 2 ---\n\nfirst\n\n--- SECTION 2 OF 2 ---\n\nsecond", out)
	})

	t.Run("single failed result is the bare marker", func(t *testing.T) {
		out := aggregate([]types.ChunkResult{{Index: 0, Error: "boom"}})
		assert.Equal(t, "[PROCESSING FAILED for section 1: boom]", out)
	})
}
