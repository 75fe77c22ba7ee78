// SPDX-License-Identifier: AGPL-3.0

package tool

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ramyatawia/docflow-orchestrator/internal/tracing"
)

// MCPAdapter addresses a single named tool exposed by an MCP server,
// using mark3labs/mcp-go's client for the initialize/call-tool
// exchange. The JSON-RPC framing itself is never hand-rolled here; it
// is owned entirely by the library.
type MCPAdapter struct {
	descriptor Descriptor
	serverURL  string

	mu        sync.Mutex
	client    *client.Client
	connected bool
}

// NewMCPAdapter constructs an MCPAdapter for descriptor, lazily
// connecting to an MCP server at serverURL on first Execute.
func NewMCPAdapter(descriptor Descriptor, serverURL string) *MCPAdapter {
	return &MCPAdapter{descriptor: descriptor, serverURL: serverURL}
}

func (a *MCPAdapter) Descriptor() Descriptor { return a.descriptor }

func (a *MCPAdapter) Execute(ctx context.Context, parameters map[string]any) (Result, error) {
	ctx, span := tracing.Tracer("orchestrator.tool").Start(ctx, "tool.mcp_call", trace.WithAttributes(
		attribute.String("tool.name", a.descriptor.Name),
		attribute.String("tool.server_url", a.serverURL),
	))
	defer span.End()

	result, err := a.doExecute(ctx, parameters)
	switch {
	case err != nil:
		span.SetStatus(codes.Error, err.Error())
	case !result.Ok():
		span.SetStatus(codes.Error, result.Error)
	default:
		span.SetStatus(codes.Ok, "")
	}
	return result, err
}

func (a *MCPAdapter) doExecute(ctx context.Context, parameters map[string]any) (Result, error) {
	mcpClient, err := a.ensureConnected(ctx)
	if err != nil {
		return Result{Error: fmt.Sprintf("connect to MCP server: %v", err), Retriable: true}, nil
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = a.descriptor.Name
	req.Params.Arguments = parameters

	resp, err := mcpClient.CallTool(ctx, req)
	if err != nil {
		return Result{Error: fmt.Sprintf("MCP call failed: %v", err), Retriable: true}, nil
	}

	return toolResultFromMCP(resp), nil
}

func (a *MCPAdapter) ensureConnected(ctx context.Context) (*client.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.connected {
		return a.client, nil
	}

	mcpClient, err := client.NewStreamableHttpClient(a.serverURL)
	if err != nil {
		return nil, fmt.Errorf("create MCP client: %w", err)
	}
	if err := mcpClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("start MCP client: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "docflow-orchestrator",
		Version: "1.0.0",
	}
	initReq.Params.ProtocolVersion = "2024-11-05"
	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		mcpClient.Close()
		return nil, fmt.Errorf("initialize MCP: %w", err)
	}

	a.client = mcpClient
	a.connected = true
	return a.client, nil
}

// Close releases the underlying MCP connection, if any.
func (a *MCPAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	a.connected = false
	return err
}

func toolResultFromMCP(resp *mcp.CallToolResult) Result {
	var texts []string
	for _, content := range resp.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			texts = append(texts, textContent.Text)
		}
	}
	joined := strings.Join(texts, "\n")

	if resp.IsError {
		if joined == "" {
			joined = "unknown MCP tool error"
		}
		return Result{Error: joined, Retriable: false}
	}
	return Result{Content: joined}
}

var _ Adapter = (*MCPAdapter)(nil)
