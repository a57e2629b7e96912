// Package main implements the software-planning MCP server.
//
// The server exposes planning-session tools (goals, implementation plans,
// todos) over stdio JSON-RPC (Model Context Protocol). Storage mode and
// connection settings come from the environment; see internal/config.
package main

import (
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/erauner/Software-planning-mcp/internal/config"
	"github.com/erauner/Software-planning-mcp/internal/mcpserver"
)

func run() int {
	errLogger := log.New(os.Stderr, "[mcp-server] ", log.LstdFlags)

	cfg, err := config.FromEnv()
	if err != nil {
		errLogger.Printf("Invalid configuration: %v", err)
		return 1
	}

	srv, factory, err := mcpserver.NewServer(cfg)
	if err != nil {
		errLogger.Printf("Failed to create MCP server: %v", err)
		return 1
	}
	defer func() { _ = factory.Close() }()

	if err := server.ServeStdio(srv, server.WithErrorLogger(errLogger)); err != nil {
		errLogger.Printf("Server error: %v", err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(run())
}
