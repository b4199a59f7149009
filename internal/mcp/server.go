package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/kmullins/repodoc/internal/docgen"
	"github.com/kmullins/repodoc/internal/llm"
	"github.com/kmullins/repodoc/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "repodoc"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the run database
	DefaultDBPath = "~/.repodoc"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	store     storage.Store
	client    llm.CompletionClient
	generator *docgen.Generator
}

// NewServer creates a new MCP server instance
func NewServer(ctx context.Context, dbPath string) (*Server, error) {
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".repodoc")
	}

	if err := os.MkdirAll(dbPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dbFile := filepath.Join(dbPath, "repodoc.db")

	store, err := storage.NewSQLiteStore(ctx, dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	client, err := llm.NewFromEnv()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize completion client: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:       mcpServer,
		store:     store,
		client:    client,
		generator: docgen.New(client, store),
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer s.close()
	return server.ServeStdio(s.mcp)
}

func (s *Server) close() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.store != nil {
		_ = s.store.Close()
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(generateDocsTool(), s.handleGenerateDocs)
	s.mcp.AddTool(listRunsTool(), s.handleListRuns)
	s.mcp.AddTool(getRunTool(), s.handleGetRun)
	s.mcp.AddTool(getDocumentTool(), s.handleGetDocument)
}
