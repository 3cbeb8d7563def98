// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes read-only Wunjo vault tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/wunjo/internal/dataview"
	"github.com/starford/wunjo/internal/kanban"
	"github.com/starford/wunjo/internal/search"
	"github.com/starford/wunjo/internal/storage"
)

// Server wraps the MCP server with Wunjo tools.
type Server struct {
	mcp      *server.MCPServer
	store    storage.Provider
	searcher *search.Searcher
	boards   *kanban.Store
	engine   *dataview.Engine
}

// New creates a new MCP server with all Wunjo tools registered.
func New(store storage.Provider) *Server {
	s := &Server{
		store:    store,
		searcher: search.NewSearcher(store),
		boards:   kanban.NewStore(store),
		engine:   dataview.NewEngine(store),
	}

	s.mcp = server.NewMCPServer(
		"Wunjo",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_files",
		mcp.WithDescription("List all markdown files in the vault or under a specific folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for the whole vault)")),
	), s.listFiles)

	s.mcp.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read the full content of a text file in the vault."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the file (e.g. folder/note.md)")),
	), s.readFile)

	s.mcp.AddTool(mcp.NewTool("search_files",
		mcp.WithDescription("Search the content of markdown files for a substring and return matches with positions."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithString("folder", mcp.Description("Optional folder to restrict the search to")),
	), s.searchFiles)

	s.mcp.AddTool(mcp.NewTool("kanban_board",
		mcp.WithDescription("Parse a markdown kanban board into its lanes, cards and settings."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the board file")),
	), s.kanbanBoard)

	s.mcp.AddTool(mcp.NewTool("dataview_query",
		mcp.WithDescription("Run a dataview query (TABLE or LIST with FROM/WHERE/SORT clauses) over the vault."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Dataview query string")),
		mcp.WithString("folder", mcp.Description("Optional folder to restrict the query to")),
	), s.dataviewQuery)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	paths, err := s.store.Walk(folder, []string{".md"})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no files found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) readFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) searchFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	folder := ""
	if f, ferr := req.RequireString("folder"); ferr == nil {
		folder = f
	}

	results, err := s.searcher.SearchFiles(folder, query, []string{".md"}, false, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) kanbanBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	board, err := s.boards.Board(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(board, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) dataviewQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	folder := ""
	if f, ferr := req.RequireString("folder"); ferr == nil {
		folder = f
	}

	result, err := s.engine.Execute(dataview.ParseQuery(raw), folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
