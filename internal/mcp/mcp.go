// Package mcp provides the agentd MCP server, registering the action tools
// and publishing model instructions.
package mcp

import (
	"context"
	_ "embed"
	"sync"
	"time"

	"github.com/deixis/agentd"
	"github.com/deixis/agentd/internal/actions"
	"github.com/deixis/agentd/internal/config"
	"github.com/deixis/agentd/internal/results"
	"github.com/deixis/agentd/internal/runner"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:embed instructions.md
var Instructions string

// ActionExecutor runs a single action. Implemented by runner.Executor.
type ActionExecutor interface {
	Execute(ctx context.Context, req runner.Request) (runner.Output, error)
}

// handler holds shared dependencies for all tool handlers.
type handler struct {
	exec    ActionExecutor
	catalog *actions.Catalog
	store   results.Store
	timeout time.Duration // default when run_action gives none; zero disables

	// Background actions started with async=true.
	bgCtx context.Context
	bg    *sync.WaitGroup
}

// NewServer creates an MCP server with all agentd tools registered.
func NewServer(cfg *config.Config, e ActionExecutor, catalog *actions.Catalog, store results.Store, opts ...ServerOption) *mcp.Server {
	so := serverOptions{
		bgCtx: context.Background(),
		bg:    &sync.WaitGroup{},
	}
	for _, o := range opts {
		o(&so)
	}

	h := &handler{
		exec:    e,
		catalog: catalog,
		store:   store,
		timeout: cfg.Timeout(),
		bgCtx:   so.bgCtx,
		bg:      so.bg,
	}

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "agentd", Version: agentd.Version}, mcpOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_actions",
		Description: "List the actions installed in the agent's actions directory.",
	}, h.listHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name: "run_action",
		Description: `Run an installed action and return its exit code, standard output and standard error.

The action runs as a child process with the given arguments; input is written to its standard input.
An exit code of -1 means the process was killed, timed out or was cancelled.
With async=true the call returns a transaction id at once; query it with action_status.`,
	}, h.runHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "action_status",
		Description: "Show the status and, once finished, the result of a transaction started by run_action.",
	}, h.statusHandler)

	return s
}

// ServerOption configures the agentd MCP server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	bgCtx context.Context
	bg    *sync.WaitGroup
}

// WithBackground sets the context that async actions run under and the
// WaitGroup they are tracked in, so the caller can cancel them and wait for
// their results to be stored before exiting.
func WithBackground(ctx context.Context, wg *sync.WaitGroup) ServerOption {
	return func(o *serverOptions) {
		o.bgCtx = ctx
		o.bg = wg
	}
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
