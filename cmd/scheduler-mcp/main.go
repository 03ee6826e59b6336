// Command scheduler-mcp exposes the scheduler admin API as MCP tools over stdio.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/carokun/sachathescheduler/internal/mcp"
)

const version = "v1.0.0"

func main() {
	// stdout carries the MCP protocol, keep logs on stderr
	log.SetOutput(os.Stderr)

	_ = godotenv.Load()

	apiURL := os.Getenv("SCHEDULER_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3001"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(mcp.NewHandler(mcp.NewClient(apiURL)), version)
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
