// Package mcp exposes table extraction over the Model Context Protocol so
// agent clients can recover table structure from documents on demand.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/structable/structable/internal/batch"
	"github.com/structable/structable/internal/config"
	"github.com/structable/structable/internal/descriptions"
	"github.com/structable/structable/internal/export"
	"github.com/structable/structable/internal/geometry"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	log       *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, log *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		log:       log,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractTablesTool := mcp.NewTool(
		"extract_tables",
		mcp.WithDescription(descriptions.ExtractTablesDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the input file (.pdf or .json geometry feed)"),
		),
		mcp.WithString("pages",
			mcp.Description("Pages to extract: '1', '1,3-5', '2-end' or 'all' (default: '1')"),
		),
		mcp.WithString("method",
			mcp.Description("Detection method: 'lattice' (ruling lines) or 'stream' (text alignment), default 'lattice'"),
		),
		mcp.WithBoolean("fallback",
			mcp.Description("Fall back to stream when lattice finds too few ruling lines (default: true)"),
		),
		mcp.WithBoolean("parallel",
			mcp.Description("Process pages in parallel (default: false)"),
		),
	)
	s.mcpServer.AddTool(extractTablesTool, s.handleExtractTables)

	geometryInfoTool := mcp.NewTool(
		"geometry_info",
		mcp.WithDescription(descriptions.GeometryInfoDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the input file (.pdf or .json geometry feed)"),
		),
	)
	s.mcpServer.AddTool(geometryInfoTool, s.handleGeometryInfo)
}

// Handler functions
func (s *Server) handleExtractTables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()

	pages := s.config.Pages
	if p, ok := args["pages"].(string); ok && p != "" {
		pages = p
	}
	method := batch.Method(s.config.Method)
	if m, ok := args["method"].(string); ok && m != "" {
		method = batch.Method(m)
	}
	fallback := s.config.Fallback
	if f, ok := args["fallback"].(bool); ok {
		fallback = f
	}
	parallel := false
	if p, ok := args["parallel"].(bool); ok {
		parallel = p
	}

	feed, err := geometry.OpenFeed(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer closeFeed(feed)

	dispatcher := batch.NewDispatcher(feed, batch.DefaultConfig(), s.log)
	resp, err := dispatcher.Run(ctx, batch.Request{
		Pages:    batch.PageSelector{Expression: pages},
		Method:   method,
		Parallel: parallel,
		Fallback: fallback,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatExtractTablesResult(path, resp)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleGeometryInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	feed, err := geometry.OpenFeed(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer closeFeed(feed)

	responseText := s.formatGeometryInfoResult(path, feed)
	return mcp.NewToolResultText(responseText), nil
}

// Formatting methods
func (s *Server) formatExtractTablesResult(path string, resp *batch.Response) string {
	text := fmt.Sprintf("Extracted %d table(s) from %s\n", len(resp.Tables), path)

	for _, status := range resp.Statuses {
		switch status.Status {
		case batch.StatusOK:
			continue
		case batch.StatusInsufficientStructure:
			text += fmt.Sprintf("Page %d: no table structure found\n", status.Page)
		default:
			text += fmt.Sprintf("Page %d: failed: %s\n", status.Page, status.Detail)
		}
	}

	for _, t := range resp.Tables {
		text += fmt.Sprintf("\nTable %d on page %d: %d rows x %d cols (accuracy %.2f, whitespace %.2f)\n",
			t.Order, t.Page, t.Rows(), t.Cols(), t.Report.Accuracy, t.Report.Whitespace)
	}

	doc := export.ToJSON(resp.Tables)
	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		text += fmt.Sprintf("\nFailed to encode tables: %v\n", err)
		return text
	}
	text += "\nTables:\n"
	text += string(encoded)

	return text
}

func (s *Server) formatGeometryInfoResult(path string, feed geometry.Feed) string {
	count := feed.PageCount()
	text := "Document Geometry\n"
	text += fmt.Sprintf("File: %s\n", path)
	text += fmt.Sprintf("Pages: %d\n", count)

	for n := 1; n <= count; n++ {
		page, err := feed.Page(n)
		if err != nil {
			text += fmt.Sprintf("Page %d: unavailable (%v)\n", n, err)
			continue
		}
		horizontal, vertical := 0, 0
		for _, line := range page.Lines {
			if line.Orientation == geometry.Horizontal {
				horizontal++
			} else {
				vertical++
			}
		}
		text += fmt.Sprintf("Page %d: %.0fx%.0f, %d text fragments, %d horizontal / %d vertical ruling lines\n",
			n, page.Width, page.Height, len(page.Fragments), horizontal, vertical)
	}

	return text
}

func closeFeed(feed geometry.Feed) {
	if c, ok := feed.(io.Closer); ok {
		_ = c.Close()
	}
}

// Run starts the MCP server over stdio.
func (s *Server) Run(_ context.Context) error {
	if s.config.IsDebug() {
		s.log.Debug("starting MCP server in stdio mode", "server", s.config.ServerName, "version", s.config.Version)
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
