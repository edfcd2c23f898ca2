package server

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestWrapTextHandlerFormatsResult(t *testing.T) {
	root := t.TempDir()
	srv := newTestServer(t, root)
	mustWrite(t, filepath.Join(root, "f.txt"), []byte("hi"), 0o644)

	h := wrapTextHandler(srv.handleRead(), formatReadResult)
	res, err := h(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: map[string]any{"path": "f.txt"}},
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %+v", res)
	}
	if len(res.Content) != 1 {
		t.Fatalf("expected one content entry, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content")
	}
	if !strings.Contains(text.Text, "content=hi") || !strings.Contains(text.Text, "encoding=text") {
		t.Fatalf("formatted text wrong: %q", text.Text)
	}
}

func TestWrapTextHandlerErrorBecomesResult(t *testing.T) {
	root := t.TempDir()
	srv := newTestServer(t, root)

	h := wrapTextHandler(srv.handleRead(), formatReadResult)
	res, err := h(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: map[string]any{"path": "../outside"}},
	})
	if err != nil {
		t.Fatalf("errors must surface as results, got %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected IsError result: %+v", res)
	}
	resp, ok := res.StructuredContent.(ErrorResponse)
	if !ok {
		t.Fatalf("expected ErrorResponse, got %T", res.StructuredContent)
	}
	if resp.Code != codeAccessDenied || resp.Operation != "fs_read" {
		t.Fatalf("response = %+v", resp)
	}
}

func TestWrapHandlersBindFailure(t *testing.T) {
	root := t.TempDir()
	srv := newTestServer(t, root)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: map[string]any{"path": 123}},
	}
	for name, h := range map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"text":       wrapTextHandler(srv.handleRead(), formatReadResult),
		"structured": wrapStructuredHandler(srv.handleRead()),
	} {
		res, err := h(context.Background(), req)
		if err != nil {
			t.Fatalf("%s: bind failure must surface as result, got %v", name, err)
		}
		if !res.IsError {
			t.Fatalf("%s: expected IsError result", name)
		}
	}
}

func TestStructuredHandlerOmitsTextContent(t *testing.T) {
	root := t.TempDir()
	srv := newTestServer(t, root)
	mustWrite(t, filepath.Join(root, "f.txt"), []byte("hi"), 0o644)

	h := wrapStructuredHandler(srv.handleRead())
	res, err := h(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: map[string]any{"path": "f.txt"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.StructuredContent == nil {
		t.Fatalf("expected structured content")
	}
	if len(res.Content) != 0 {
		t.Fatalf("expected no text content, got %v", res.Content)
	}
	rr, ok := res.StructuredContent.(ReadResult)
	if !ok {
		t.Fatalf("expected ReadResult, got %T", res.StructuredContent)
	}
	if rr.Content != "hi" || rr.Encoding != "text" {
		t.Fatalf("read result wrong: %+v", rr)
	}
}

func TestStructuredHandlerErrorResult(t *testing.T) {
	root := t.TempDir()
	srv := newTestServer(t, root)

	h := wrapStructuredHandler(srv.handleEdit())
	res, err := h(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: map[string]any{
			"path":  "ghost.txt",
			"edits": []map[string]any{{"old_text": "a", "new_text": "b"}},
		}},
	})
	if err != nil {
		t.Fatalf("errors must surface as results, got %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected IsError result")
	}
	resp, ok := res.StructuredContent.(ErrorResponse)
	if !ok {
		t.Fatalf("expected ErrorResponse, got %T", res.StructuredContent)
	}
	if resp.Code != codeNotFound {
		t.Fatalf("code = %s, want %s", resp.Code, codeNotFound)
	}
}
