// Package mcp exposes dispatch-table introspection over the Model Context
// Protocol, so agent tooling can discover an application's public actions and
// generate correct links to them.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/dispatch"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// URIResponse is the structured result of the uri_for_action tool.
type URIResponse struct {
	Path string `json:"path" jsonschema_description:"Public path for the action, captures and args applied"`
}

// Server exposes a dispatcher as an MCP server.
type Server struct {
	dispatcher *dispatch.Dispatcher
	mcpServer  *server.MCPServer
}

// NewServer creates the MCP server over a registered dispatcher.
func NewServer(d *dispatch.Dispatcher) *Server {
	s := &Server{
		dispatcher: d,
		mcpServer:  server.NewMCPServer("arbor-mcp", strings.TrimSpace(arbor.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: list_actions
	s.mcpServer.AddTool(mcp.NewTool("list_actions",
		mcp.WithDescription("List every public action: name, namespace, mount path, argument arity."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.dispatcher.Table())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: uri_for_action
	uriTool := mcp.NewTool("uri_for_action",
		mcp.WithDescription("Resolve the public path for an action's private path, applying captures and args."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Private action path, e.g. blog/view")),
		mcp.WithString("captures", mcp.Description("JSON array of capture segments")),
		mcp.WithString("args", mcp.Description("JSON array of trailing argument segments")),
		mcp.WithOutputSchema[URIResponse](),
	)
	s.mcpServer.AddTool(uriTool, mcp.NewStructuredToolHandler(s.handleURIForAction))
}

func (s *Server) handleURIForAction(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (URIResponse, error) {
	path, _ := args["path"].(string)
	action := s.dispatcher.ActionByPath(path)
	if action == nil {
		return URIResponse{}, fmt.Errorf("no action at %q", path)
	}

	var captures, trailing []string
	if capStr, ok := args["captures"].(string); ok && capStr != "" {
		if err := json.Unmarshal([]byte(capStr), &captures); err != nil {
			return URIResponse{}, fmt.Errorf("invalid captures: %w", err)
		}
	}
	if argStr, ok := args["args"].(string); ok && argStr != "" {
		if err := json.Unmarshal([]byte(argStr), &trailing); err != nil {
			return URIResponse{}, fmt.Errorf("invalid args: %w", err)
		}
	}

	resolved := s.dispatcher.URIForAction(action, captures)
	if resolved == "" {
		return URIResponse{}, fmt.Errorf("action %q takes %d captures, got %d",
			path, action.NumberOfCaptures(), len(captures))
	}
	if len(trailing) > 0 {
		resolved = strings.TrimSuffix(resolved, "/") + "/" + strings.Join(trailing, "/")
	}
	return URIResponse{Path: resolved}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: arbor://dispatch-table
	s.mcpServer.AddResource(mcp.NewResource("arbor://dispatch-table", "Public Dispatch Table",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.dispatcher.Table())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal dispatch table: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "arbor://dispatch-table",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
