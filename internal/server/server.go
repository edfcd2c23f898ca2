// Package server registers the sandboxed filesystem, edit, and exec tools
// on an MCP server. Every path argument is normalized and containment-checked
// by the boundary set before any filesystem call touches it.
package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/c3mb0/fencemcp/internal/boundary"
	"github.com/c3mb0/fencemcp/internal/config"
)

// Server holds the dependencies shared by every tool handler.
type Server struct {
	cfg    config.Config
	bounds *boundary.Set
	log    zerolog.Logger
}

// New assembles an MCP server named fencemcp with all tools registered.
// In compat mode tools return plain text and omit output schemas, for
// clients that cannot handle structured content.
func New(version string, cfg config.Config, bounds *boundary.Set, log zerolog.Logger) *mcpserver.MCPServer {
	srv := &Server{cfg: cfg, bounds: bounds, log: log}
	s := mcpserver.NewMCPServer("fencemcp", version)
	srv.register(s)
	return s
}

func wrapTextHandler[TArgs any, TResult any](h mcp.StructuredToolHandlerFunc[TArgs, TResult], format func(TResult) string) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args TArgs
		if err := req.BindArguments(&args); err != nil {
			errResp := toErrorResponse(err)
			out := mcp.NewToolResultStructured(errResp, errResp.Error)
			out.IsError = true
			return out, nil
		}
		res, err := h(ctx, req, args)
		if err != nil {
			errResp := toErrorResponse(err)
			out := mcp.NewToolResultStructured(errResp, errResp.Error)
			out.IsError = true
			return out, nil
		}
		return mcp.NewToolResultText(format(res)), nil
	}
}

func wrapStructuredHandler[TArgs any, TResult any](h mcp.StructuredToolHandlerFunc[TArgs, TResult]) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args TArgs
		if err := req.BindArguments(&args); err != nil {
			errResp := toErrorResponse(err)
			out := mcp.NewToolResultStructured(errResp, errResp.Error)
			out.IsError = true
			return out, nil
		}
		res, err := h(ctx, req, args)
		if err != nil {
			errResp := toErrorResponse(err)
			out := mcp.NewToolResultStructured(errResp, errResp.Error)
			out.IsError = true
			return out, nil
		}
		return &mcp.CallToolResult{StructuredContent: res}, nil
	}
}

func (srv *Server) register(s *mcpserver.MCPServer) {
	compat := srv.cfg.Compat

	readOpts := []mcp.ToolOption{
		mcp.WithDescription("Read a file up to a byte limit."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path or file:// URI within the sandbox")),
		mcp.WithString("encoding", mcp.Enum(string(encText), string(encBase64)), mcp.Description("Force text or base64; auto-detected if omitted")),
		mcp.WithNumber("max_bytes", mcp.Min(1), mcp.Description("Maximum bytes to return")),
	}
	if !compat {
		readOpts = append(readOpts, mcp.WithOutputSchema[ReadResult]())
	}
	readTool := mcp.NewTool("fs_read", readOpts...)
	if compat {
		s.AddTool(readTool, wrapTextHandler(srv.handleRead(), formatReadResult))
	} else {
		s.AddTool(readTool, wrapStructuredHandler(srv.handleRead()))
	}

	peekOpts := []mcp.ToolOption{
		mcp.WithDescription("Read a file window without loading the whole file"),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path")),
		mcp.WithNumber("offset", mcp.Min(0), mcp.Description("Byte offset to start at")),
		mcp.WithNumber("max_bytes", mcp.Min(1), mcp.Description("Window size in bytes")),
	}
	if !compat {
		peekOpts = append(peekOpts, mcp.WithOutputSchema[PeekResult]())
	}
	peekTool := mcp.NewTool("fs_peek", peekOpts...)
	if compat {
		s.AddTool(peekTool, wrapTextHandler(srv.handlePeek(), formatPeekResult))
	} else {
		s.AddTool(peekTool, wrapStructuredHandler(srv.handlePeek()))
	}

	writeOpts := []mcp.ToolOption{
		mcp.WithDescription("Create or modify a file with a strategy"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Target file path")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Data to write")),
		mcp.WithString("encoding", mcp.Enum(string(encText), string(encBase64)), mcp.Description("How content is encoded; text if omitted")),
		mcp.WithString("strategy", mcp.Enum(string(strategyOverwrite), string(strategyNoClobber), string(strategyAppend), string(strategyPrepend), string(strategyReplaceRange)), mcp.Description("Write strategy: overwrite, no_clobber, append, prepend, replace_range")),
		mcp.WithBoolean("create_dirs", mcp.Description("Create parent directories if needed")),
		mcp.WithString("mode", mcp.Pattern("^0?[0-7]{3,4}$"), mcp.Description("File mode in octal, keep existing if omitted")),
		mcp.WithNumber("start", mcp.Min(0), mcp.Description("Start byte for replace_range")),
		mcp.WithNumber("end", mcp.Min(0), mcp.Description("End byte (exclusive) for replace_range")),
	}
	if !compat {
		writeOpts = append(writeOpts, mcp.WithOutputSchema[WriteResult]())
	}
	writeTool := mcp.NewTool("fs_write", writeOpts...)
	if compat {
		s.AddTool(writeTool, wrapTextHandler(srv.handleWrite(), formatWriteResult))
	} else {
		s.AddTool(writeTool, wrapStructuredHandler(srv.handleWrite()))
	}

	editOpts := []mcp.ToolOption{
		mcp.WithDescription("Apply ordered text replacements to a file and report a unified diff"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Target text file")),
		mcp.WithArray("edits", mcp.Required(), mcp.Description("Replacements applied in order; each needs old_text and new_text"), mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"old_text": map[string]any{"type": "string", "description": "Existing text to locate"},
				"new_text": map[string]any{"type": "string", "description": "Replacement text"},
			},
			"required": []string{"old_text", "new_text"},
		})),
		mcp.WithBoolean("dry_run", mcp.Description("Compute the diff without persisting")),
	}
	if !compat {
		editOpts = append(editOpts, mcp.WithOutputSchema[EditResult]())
	}
	editTool := mcp.NewTool("fs_edit", editOpts...)
	if compat {
		s.AddTool(editTool, wrapTextHandler(srv.handleEdit(), formatEditResult))
	} else {
		s.AddTool(editTool, wrapStructuredHandler(srv.handleEdit()))
	}

	listOpts := []mcp.ToolOption{
		mcp.WithDescription("List directory contents"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Directory to list")),
		mcp.WithBoolean("recursive", mcp.Description("Recurse into subdirectories")),
		mcp.WithNumber("max_entries", mcp.Min(1), mcp.Description("Maximum entries to return")),
	}
	if !compat {
		listOpts = append(listOpts, mcp.WithOutputSchema[ListResult]())
	}
	listTool := mcp.NewTool("fs_list", listOpts...)
	if compat {
		s.AddTool(listTool, wrapTextHandler(srv.handleList(), formatListResult))
	} else {
		s.AddTool(listTool, wrapStructuredHandler(srv.handleList()))
	}

	mkdirOpts := []mcp.ToolOption{
		mcp.WithDescription("Create a directory"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Directory path to create")),
		mcp.WithBoolean("parents", mcp.Description("Create missing parent directories")),
		mcp.WithString("mode", mcp.Pattern("^0?[0-7]{3,4}$"), mcp.Description("Directory mode in octal")),
	}
	if !compat {
		mkdirOpts = append(mkdirOpts, mcp.WithOutputSchema[MkdirResult]())
	}
	mkdirTool := mcp.NewTool("fs_mkdir", mkdirOpts...)
	if compat {
		s.AddTool(mkdirTool, wrapTextHandler(srv.handleMkdir(), formatMkdirResult))
	} else {
		s.AddTool(mkdirTool, wrapStructuredHandler(srv.handleMkdir()))
	}

	removeOpts := []mcp.ToolOption{
		mcp.WithDescription("Remove a file or directory"),
		mcp.WithString("path", mcp.Required(), mcp.Description("File or directory to remove")),
		mcp.WithBoolean("recursive", mcp.Description("Remove directory contents recursively")),
	}
	if !compat {
		removeOpts = append(removeOpts, mcp.WithOutputSchema[RemoveResult]())
	}
	removeTool := mcp.NewTool("fs_remove", removeOpts...)
	if compat {
		s.AddTool(removeTool, wrapTextHandler(srv.handleRemove(), formatRemoveResult))
	} else {
		s.AddTool(removeTool, wrapStructuredHandler(srv.handleRemove()))
	}

	globOpts := []mcp.ToolOption{
		mcp.WithDescription("Match paths using shell-style globbing; ** enables recursion"),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Glob pattern relative to each searched root")),
		mcp.WithString("path", mcp.Description("Directory to search; every boundary root if omitted")),
		mcp.WithNumber("max_results", mcp.Min(1), mcp.Description("Maximum matches to return")),
	}
	if !compat {
		globOpts = append(globOpts, mcp.WithOutputSchema[GlobResult]())
	}
	globTool := mcp.NewTool("fs_glob", globOpts...)
	if compat {
		s.AddTool(globTool, wrapTextHandler(srv.handleGlob(), formatGlobResult))
	} else {
		s.AddTool(globTool, wrapStructuredHandler(srv.handleGlob()))
	}

	searchOpts := []mcp.ToolOption{
		mcp.WithDescription("Search files recursively for text"),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Substring or regex to find")),
		mcp.WithString("path", mcp.Description("Directory to search; every boundary root if omitted")),
		mcp.WithBoolean("regex", mcp.Description("Interpret pattern as regular expression")),
		mcp.WithNumber("max_results", mcp.Min(1), mcp.Description("Maximum matches to return")),
	}
	if !compat {
		searchOpts = append(searchOpts, mcp.WithOutputSchema[SearchResult]())
	}
	searchTool := mcp.NewTool("fs_search", searchOpts...)
	if compat {
		s.AddTool(searchTool, wrapTextHandler(srv.handleSearch(), formatSearchResult))
	} else {
		s.AddTool(searchTool, wrapStructuredHandler(srv.handleSearch()))
	}

	rootsOpts := []mcp.ToolOption{
		mcp.WithDescription("List the sandbox boundary roots and working root"),
	}
	if !compat {
		rootsOpts = append(rootsOpts, mcp.WithOutputSchema[RootsResult]())
	}
	rootsTool := mcp.NewTool("fs_roots", rootsOpts...)
	if compat {
		s.AddTool(rootsTool, wrapTextHandler(srv.handleRoots(), formatRootsResult))
	} else {
		s.AddTool(rootsTool, wrapStructuredHandler(srv.handleRoots()))
	}

	execOpts := []mcp.ToolOption{
		mcp.WithDescription("Run a command inside the sandbox and capture its output"),
		mcp.WithString("command", mcp.Required(), mcp.Description("Program to run, or a full command line when args is omitted")),
		mcp.WithArray("args", mcp.WithStringItems(), mcp.Description("Explicit argument vector; skips command-line splitting")),
		mcp.WithString("cwd", mcp.Description("Working directory inside the sandbox")),
		mcp.WithNumber("timeout_ms", mcp.Min(1), mcp.Description("Deadline in milliseconds")),
	}
	if !compat {
		execOpts = append(execOpts, mcp.WithOutputSchema[ExecResult]())
	}
	execTool := mcp.NewTool("exec_run", execOpts...)
	if compat {
		s.AddTool(execTool, wrapTextHandler(srv.handleExec(), formatExecResult))
	} else {
		s.AddTool(execTool, wrapStructuredHandler(srv.handleExec()))
	}
}
