// Package router is the protocol-facing façade: it assembles the MCP server
// surface (tools, resources, prompts) from the adapter registry and dispatches
// every invocation through a single instrumented path. The router never
// branches on network identity beyond one registry lookup.
package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jmourad/chainmcp/internal/backend"
	"github.com/jmourad/chainmcp/internal/metrics"
)

// Router resolves invocations against the adapter registry and wraps every
// outcome in a well-formed result envelope. It holds a non-owning reference
// to the registry; invocations are rejected until the registry is frozen.
type Router struct {
	registry *backend.Registry
	sink     *metrics.Sink
	logger   *slog.Logger
}

// New creates a router over a registry and an instrumentation sink.
func New(registry *backend.Registry, sink *metrics.Sink, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		registry: registry,
		sink:     sink,
		logger:   logger.With("component", "router"),
	}
}

// Server builds the MCP server with every tool, resource template, and
// prompt registered. Call after the registry is frozen; the tool set is
// immutable once built.
func (rt *Router) Server(name, version string) *server.MCPServer {
	s := server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)

	for _, network := range rt.registry.Networks() {
		rt.registerNetworkTools(s, network)
		rt.registerNetworkResources(s, network)
	}
	rt.registerGenericTools(s)
	rt.registerPrompts(s)

	return s
}

// operationFunc produces a result envelope. It never reports a fault: any
// failure becomes an error envelope inside the returned result.
type operationFunc func(ctx context.Context, req mcp.CallToolRequest) *mcp.CallToolResult

// dispatch wraps an operation with the shared invocation path: lifecycle
// check, execution, and exactly one counter increment per invocation
// regardless of outcome.
func (rt *Router) dispatch(operation string, network func(mcp.CallToolRequest) string, fn operationFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !rt.registry.Frozen() {
			return mcp.NewToolResultError("server is still initializing"), nil
		}

		start := time.Now()
		res := fn(ctx, req)
		elapsed := time.Since(start)

		net := network(req)
		rt.sink.RecordInvocation(net, operation, elapsed.Seconds(), res.IsError)
		rt.logger.Debug("tool dispatched",
			"invocation_id", uuid.NewString(),
			"network", net,
			"operation", operation,
			"is_error", res.IsError,
			"duration_ms", elapsed.Milliseconds(),
		)
		return res, nil
	}
}

// staticNetwork labels invocations of per-network tools.
func staticNetwork(network string) func(mcp.CallToolRequest) string {
	return func(mcp.CallToolRequest) string { return network }
}

// argNetwork labels invocations of cross-network tools by their network
// argument, including requests for networks that turn out to be unsupported.
func argNetwork(req mcp.CallToolRequest) string {
	return req.GetString("network", "unknown")
}
