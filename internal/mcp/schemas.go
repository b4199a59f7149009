package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// generateDocsTool returns the tool definition for generate_docs
func generateDocsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_docs",
		Description: "Generate documentation for a source repository using an LLM",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the repository root",
				},
				"doc_type": map[string]interface{}{
					"type":        "string",
					"description": "Kind of documentation to generate",
					"enum":        []string{"architecture", "user-stories", "narrative", "custom"},
					"default":     "architecture",
				},
				"system_prompt": map[string]interface{}{
					"type":        "string",
					"description": "System prompt (required when doc_type is custom)",
				},
				"prompt_template": map[string]interface{}{
					"type":        "string",
					"description": "User prompt template with {{content}}, {{chunkIndex}}, {{totalChunks}} placeholders (required when doc_type is custom)",
				},
				"model": map[string]interface{}{
					"type":        "string",
					"description": "Completion model identifier (defaults to the provider's default model)",
				},
				"max_chunk_size": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum chunk size in characters",
					"default":     24000,
					"minimum":     1,
				},
				"concurrency": map[string]interface{}{
					"type":        "integer",
					"description": "Number of chunk requests dispatched per wave",
					"default":     3,
					"minimum":     1,
				},
				"max_tokens": map[string]interface{}{
					"type":        "integer",
					"description": "Completion token limit per chunk request",
					"default":     4096,
					"minimum":     1,
				},
				"include_tests": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include test files in the corpus",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// listRunsTool returns the tool definition for list_runs
func listRunsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_runs",
		Description: "List recent documentation generation runs, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of runs to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
		},
	}
}

// getRunTool returns the tool definition for get_run
func getRunTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_run",
		Description: "Get metrics and per-chunk status for a generation run",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run identifier returned by generate_docs",
				},
			},
			Required: []string{"run_id"},
		},
	}
}

// getDocumentTool returns the tool definition for get_document
func getDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_document",
		Description: "Get the generated document for a run",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run identifier returned by generate_docs",
				},
			},
			Required: []string{"run_id"},
		},
	}
}
