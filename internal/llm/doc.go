// Package llm provides completion clients for documentation generation.
//
// The CompletionClient interface abstracts the external text-completion
// capability; the batch dispatcher depends only on it, which keeps
// transport, auth and provider selection out of the pipeline core.
//
// # Providers
//
//   - OpenAI (chat completions API)
//   - Anthropic (messages API)
//
// Both providers retry transient failures with exponential backoff and
// share an optional LRU cache keyed by the request hash, so regenerating
// documentation for an unchanged corpus avoids repeated API calls.
//
// # Provider Selection
//
// Use NewFromEnv for environment-driven selection:
//
//	client, err := llm.NewFromEnv()
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// REPODOC_LLM_PROVIDER forces a provider; otherwise the first available
// API key (ANTHROPIC_API_KEY, then OPENAI_API_KEY) wins.
package llm
