package server

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/c3mb0/fencemcp/internal/boundary"
	"github.com/c3mb0/fencemcp/internal/runner"
)

func skipWithoutSh(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests drive /bin/sh")
	}
}

func TestHandleExec(t *testing.T) {
	skipWithoutSh(t)
	root := t.TempDir()
	srv := newTestServer(t, root)
	ex := srv.handleExec()

	res, err := ex(context.Background(), mcp.CallToolRequest{}, ExecArgs{
		Command: "sh",
		Args:    []string{"-c", "echo out; echo err >&2"},
	})
	if err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if res.ExitCode != 0 || strings.TrimSpace(res.Stdout) != "out" || strings.TrimSpace(res.Stderr) != "err" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Command != "sh" || res.DurationMs < 0 {
		t.Fatalf("metadata wrong: %+v", res)
	}
}

func TestHandleExec_CommandLineParsing(t *testing.T) {
	skipWithoutSh(t)
	root := t.TempDir()
	srv := newTestServer(t, root)
	ex := srv.handleExec()

	// Without an argv the command string is tokenized shell-style.
	res, err := ex(context.Background(), mcp.CallToolRequest{}, ExecArgs{
		Command: `sh -c "echo hello world"`,
	})
	if err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "hello world" {
		t.Fatalf("stdout = %q", res.Stdout)
	}

	_, err = ex(context.Background(), mcp.CallToolRequest{}, ExecArgs{Command: `sh -c "unterminated`})
	if err == nil {
		t.Fatalf("unbalanced quote accepted")
	}

	if _, err := ex(context.Background(), mcp.CallToolRequest{}, ExecArgs{}); !errors.Is(err, errCommandRequired) {
		t.Fatalf("want errCommandRequired, got %v", err)
	}
}

func TestHandleExec_DefaultCwdIsWorkRoot(t *testing.T) {
	skipWithoutSh(t)
	root := t.TempDir()
	srv := newTestServer(t, root)
	ex := srv.handleExec()

	res, err := ex(context.Background(), mcp.CallToolRequest{}, ExecArgs{Command: "pwd"})
	if err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if got := strings.TrimSpace(res.Stdout); got != srv.bounds.WorkRoot() {
		t.Fatalf("cwd = %q, want %q", got, srv.bounds.WorkRoot())
	}
}

func TestHandleExec_NonZeroExit(t *testing.T) {
	skipWithoutSh(t)
	root := t.TempDir()
	srv := newTestServer(t, root)
	ex := srv.handleExec()

	_, err := ex(context.Background(), mcp.CallToolRequest{}, ExecArgs{
		Command: "sh",
		Args:    []string{"-c", "echo partial; echo oops >&2; exit 3"},
	})
	if err == nil {
		t.Fatalf("non-zero exit accepted")
	}
	resp := toErrorResponse(err)
	if resp.Code != codeExecutionFailure {
		t.Fatalf("code = %s, want %s", resp.Code, codeExecutionFailure)
	}
	if resp.Details["exit_code"] != "3" {
		t.Fatalf("exit_code detail = %q", resp.Details["exit_code"])
	}
	if !strings.Contains(resp.Details["stdout"], "partial") || !strings.Contains(resp.Details["stderr"], "oops") {
		t.Fatalf("captured output lost: %+v", resp.Details)
	}
}

func TestHandleExec_Timeout(t *testing.T) {
	skipWithoutSh(t)
	root := t.TempDir()
	srv := newTestServer(t, root)
	ex := srv.handleExec()

	_, err := ex(context.Background(), mcp.CallToolRequest{}, ExecArgs{
		Command:   "sh",
		Args:      []string{"-c", "echo early; sleep 30"},
		TimeoutMs: 200,
	})
	if !errors.Is(err, runner.ErrTimeout) {
		t.Fatalf("want ErrTimeout, got %v", err)
	}
	resp := toErrorResponse(err)
	if resp.Code != codeTimeout {
		t.Fatalf("code = %s, want %s", resp.Code, codeTimeout)
	}
	if !strings.Contains(resp.Details["stdout"], "early") {
		t.Fatalf("partial output lost on timeout: %+v", resp.Details)
	}
}

func TestHandleExec_CwdValidation(t *testing.T) {
	skipWithoutSh(t)
	root := t.TempDir()
	srv := newTestServer(t, root)
	ex := srv.handleExec()

	_, err := ex(context.Background(), mcp.CallToolRequest{}, ExecArgs{Command: "pwd", Cwd: "../outside"})
	if !errors.Is(err, boundary.ErrDenied) {
		t.Fatalf("want ErrDenied, got %v", err)
	}

	mustWrite(t, filepath.Join(root, "plain.txt"), []byte("x"), 0o644)
	_, err = ex(context.Background(), mcp.CallToolRequest{}, ExecArgs{Command: "pwd", Cwd: "plain.txt"})
	if !errors.Is(err, errNotDirectory) {
		t.Fatalf("want errNotDirectory, got %v", err)
	}

	_, err = ex(context.Background(), mcp.CallToolRequest{}, ExecArgs{Command: "pwd", Cwd: "ghost"})
	if code := toErrorResponse(err).Code; code != codeNotFound {
		t.Fatalf("code = %s, want %s", code, codeNotFound)
	}

	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	res, err := ex(context.Background(), mcp.CallToolRequest{}, ExecArgs{Command: "pwd", Cwd: "sub"})
	if err != nil {
		t.Fatalf("exec in subdir failed: %v", err)
	}
	if got := strings.TrimSpace(res.Stdout); got != filepath.Join(srv.bounds.WorkRoot(), "sub") {
		t.Fatalf("cwd = %q", got)
	}
}
