// Package main implements the plan-import helper.
//
// This program reads free-form plan text from stdin, parses it into todos
// (one per content line), and appends them to the planning partition for the
// current project and branch using the same configuration surface as the
// MCP server.
//
// Exit codes:
//   - 0: Success (todos imported, possibly zero for empty input)
//   - 1: Error (invalid configuration, context resolution or storage failure)
//
// Environment variables: the PLANNING_* set read by internal/config, plus:
//   - PLANNING_PROJECT_DIR: Optional. Project directory to import into
//     (default: current working directory).
//   - PLANNING_USER_ID: Required with shared storage backends.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/erauner/Software-planning-mcp/internal/config"
	"github.com/erauner/Software-planning-mcp/internal/storage"
)

// run contains the import logic, returning an exit code. stdin is a
// parameter so tests can drive it without touching process state.
func run(stdin io.Reader) int {
	planText, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing plan: %v\n", err)
		return 1
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing plan: %v\n", err)
		return 1
	}

	factory, err := storage.NewFactory(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing plan: %v\n", err)
		return 1
	}
	defer func() { _ = factory.Close() }()

	ctx := context.Background()
	session, err := factory.ResolveContext(ctx, storage.ResolveArgs{
		UserID:      strings.TrimSpace(os.Getenv("PLANNING_USER_ID")),
		ProjectPath: strings.TrimSpace(os.Getenv("PLANNING_PROJECT_DIR")),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing plan: %v\n", err)
		return 1
	}

	backend, err := factory.BackendFor(ctx, session)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing plan: %v\n", err)
		return 1
	}

	todos, err := backend.SavePlan(ctx, string(planText))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing plan (%d todos added before the failure): %v\n", len(todos), err)
		return 1
	}

	fmt.Printf("Imported %d todo(s) into %s@%s (%s backend)\n",
		len(todos), session.Repository.Repository, session.Repository.Branch, cfg.StorageMode)
	return 0
}

func main() {
	os.Exit(run(os.Stdin))
}
