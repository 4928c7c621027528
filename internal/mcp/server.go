// Package mcp exposes the analysis engine as a Model Context Protocol
// server so agent tooling can request root-cause analyses over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/moolen/culprit/internal/cases"
)

// Tool defines the interface for tool implementations.
type Tool interface {
	Execute(ctx context.Context, input json.RawMessage) (interface{}, error)
}

// Server wraps the mcp-go server with the analysis tools.
type Server struct {
	mcpServer *server.MCPServer
	tools     map[string]Tool
	version   string
}

// NewServer creates an MCP server exposing the root-cause analysis tool.
func NewServer(analyzer cases.Analyzer, version string) *Server {
	mcpServer := server.NewMCPServer(
		"Culprit MCP Server",
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	s := &Server{
		mcpServer: mcpServer,
		tools:     make(map[string]Tool),
		version:   version,
	}

	s.registerTool(
		"analyze_root_cause",
		"Analyze a time window for the most likely root cause among candidate labels using error and latency evidence from the log store",
		NewAnalyzeTool(analyzer),
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"start_time": map[string]interface{}{
					"type":        "integer",
					"description": "Start of the analysis window (Unix seconds)",
				},
				"end_time": map[string]interface{}{
					"type":        "integer",
					"description": "End of the analysis window (Unix seconds)",
				},
				"candidates": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Candidate root-cause labels, e.g. 'payment' or 'payment.Failure'",
				},
			},
			"required": []string{"start_time", "end_time", "candidates"},
		},
	)

	return s
}

func (s *Server) registerTool(name, description string, tool Tool, inputSchema map[string]interface{}) {
	s.tools[name] = tool

	schemaJSON, err := json.Marshal(inputSchema)
	if err != nil {
		// This should never happen with well-formed schemas
		panic(fmt.Sprintf("Failed to marshal schema for tool %s: %v", name, err))
	}

	mcpTool := mcp.NewToolWithRawSchema(name, description, schemaJSON)
	s.mcpServer.AddTool(mcpTool, s.createToolHandler(tool))
}

func (s *Server) createToolHandler(tool Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(request.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		result, err := tool.Execute(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Tool execution failed: %v", err)), nil
		}

		resultJSON, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
		}

		return mcp.NewToolResultText(string(resultJSON)), nil
	}
}

// ServeStdio blocks serving the MCP protocol over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// GetMCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
