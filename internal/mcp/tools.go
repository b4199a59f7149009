package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kmullins/repodoc/internal/docgen"
	"github.com/kmullins/repodoc/internal/extractor"
	"github.com/kmullins/repodoc/internal/storage"
	"github.com/kmullins/repodoc/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams    = -32602 // Invalid method parameters
	ErrorCodeInternalError    = -32603 // Internal JSON-RPC error
	ErrorCodeRunNotFound      = -32001 // Run ID does not exist
	ErrorCodeGenerationFailed = -32002 // Pipeline could not run at all
)

// handleGenerateDocs handles the generate_docs tool invocation
func (s *Server) handleGenerateDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	docType := docgen.DocType(getStringDefault(args, "doc_type", string(docgen.DocTypeArchitecture)))

	opts := docgen.Options{
		DocType: docType,
		Extract: extractor.Options{
			IncludeTests: getBoolDefault(args, "include_tests", false),
		},
		Processing: types.ProcessingOptions{
			MaxChunkSize:   getIntDefault(args, "max_chunk_size", types.DefaultMaxChunkSize),
			Concurrency:    getIntDefault(args, "concurrency", types.DefaultConcurrency),
			MaxTokens:      getIntDefault(args, "max_tokens", types.DefaultMaxTokens),
			Model:          getStringDefault(args, "model", ""),
			SystemPrompt:   getStringDefault(args, "system_prompt", ""),
			PromptTemplate: getStringDefault(args, "prompt_template", ""),
		},
	}

	runResult, err := s.generator.Generate(ctx, path, opts)
	if err != nil {
		code := ErrorCodeGenerationFailed
		if errors.Is(err, docgen.ErrUnknownDocType) || errors.Is(err, docgen.ErrCustomPromptNeeded) ||
			errors.Is(err, types.ErrInvalidChunkSize) || errors.Is(err, types.ErrInvalidConcurrency) {
			code = ErrorCodeInvalidParams
		}
		return nil, newMCPError(code, "documentation generation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"run_id":        runResult.RunID,
		"status":        string(runResult.Run.Status),
		"doc_type":      string(docType),
		"model":         runResult.Run.Model,
		"files":         runResult.Corpus.FileCount,
		"metrics":       runResult.Result.Metrics,
		"failed_chunks": runResult.Result.FailedChunks(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListRuns handles the list_runs tool invocation
func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list runs", map[string]interface{}{
			"error": err.Error(),
		})
	}

	items := make([]interface{}, 0, len(runs))
	for _, run := range runs {
		items = append(items, runSummary(run))
	}
	response := map[string]interface{}{
		"runs":  items,
		"count": len(items),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetRun handles the get_run tool invocation
func (s *Server) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, mcpErr := requireRunID(request)
	if mcpErr != nil {
		return nil, mcpErr
	}

	run, err := s.store.GetRun(ctx, runID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeRunNotFound, "run not found", map[string]interface{}{
			"run_id": runID,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get run", map[string]interface{}{
			"error": err.Error(),
		})
	}

	chunks, err := s.store.GetChunkResults(ctx, runID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get chunk results", map[string]interface{}{
			"error": err.Error(),
		})
	}

	chunkItems := make([]interface{}, 0, len(chunks))
	for _, cr := range chunks {
		item := map[string]interface{}{
			"index":   cr.Index,
			"success": cr.Success,
		}
		if !cr.Success {
			item["error"] = cr.Error
		}
		chunkItems = append(chunkItems, item)
	}

	response := runSummary(run)
	response["chunks"] = chunkItems
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetDocument handles the get_document tool invocation
func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, mcpErr := requireRunID(request)
	if mcpErr != nil {
		return nil, mcpErr
	}

	doc, err := s.store.GetDocument(ctx, runID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeRunNotFound, "run not found", map[string]interface{}{
			"run_id": runID,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get document", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(doc), nil
}

// Helper functions

func requireRunID(request mcp.CallToolRequest) (string, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	runID, ok := args["run_id"].(string)
	if !ok || runID == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "run_id parameter is required", map[string]interface{}{
			"param":  "run_id",
			"reason": "missing or empty",
		})
	}
	return runID, nil
}

func runSummary(run *storage.Run) map[string]interface{} {
	return map[string]interface{}{
		"run_id":     run.ID,
		"root_path":  run.RootPath,
		"doc_type":   run.DocType,
		"model":      run.Model,
		"status":     string(run.Status),
		"metrics":    run.Metrics,
		"created_at": run.CreatedAt.Format(time.RFC3339),
	}
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks if a path exists and is a readable directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()
	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)
