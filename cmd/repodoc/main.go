package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kmullins/repodoc/internal/mcp"
	"github.com/kmullins/repodoc/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("RepoDoc MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	// Log to stderr (stdout is reserved for the MCP protocol)
	log.SetOutput(os.Stderr)

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	log.Printf("RepoDoc MCP Server v%s starting...", version)
	log.Printf("Build Mode: %s, Driver: %s", storage.BuildMode, storage.DriverName)

	dbPath := os.Getenv("REPODOC_DB_PATH")
	if dbPath == "" {
		dbPath = mcp.DefaultDBPath
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := mcp.NewServer(ctx, dbPath)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Println("MCP server ready, listening on stdio...")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}

	log.Println("Server stopped")
}
