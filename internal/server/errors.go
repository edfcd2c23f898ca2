package server

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/c3mb0/fencemcp/internal/boundary"
	"github.com/c3mb0/fencemcp/internal/editor"
	"github.com/c3mb0/fencemcp/internal/runner"
)

// Sentinel errors for common failure conditions
var (
	errPathRequired    = errors.New("path is required")
	errPatternRequired = errors.New("pattern is required")
	errCommandRequired = errors.New("command is required")
	errIsSymlink       = errors.New("path is a symlink")
	errIsDirectory     = errors.New("path is a directory")
	errNotRegular      = errors.New("not a regular file")
	errNotDirectory    = errors.New("not a directory")
	errFileExists      = errors.New("file already exists")
	errBadPattern      = errors.New("invalid pattern")
	errNoEdits         = errors.New("edits are required")
)

// Error codes surfaced to clients. Stable; additions only.
const (
	codeAccessDenied     = "ACCESS_DENIED"
	codeNotFound         = "NOT_FOUND"
	codeEditConflict     = "EDIT_CONFLICT"
	codeExecutionFailure = "EXECUTION_FAILURE"
	codeTimeout          = "TIMEOUT"
	codeAlreadyExists    = "ALREADY_EXISTS"
	codeNotADirectory    = "NOT_A_DIRECTORY"
	codeBadPattern       = "BAD_PATTERN"
	codeUnknown          = "UNKNOWN_ERROR"
)

// OperationError provides structured error information
type OperationError struct {
	Op   string // Operation that failed (e.g., "fs_read")
	Path string // Path involved in the error
	Err  error  // Underlying error
}

func (e *OperationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// newOpError creates an OperationError with context
func newOpError(op, path string, err error) *OperationError {
	return &OperationError{Op: op, Path: path, Err: err}
}

// execError carries the captured output of a failed command so the
// response can include it alongside the failure.
type execError struct {
	result runner.Result
	err    error
}

func (e *execError) Error() string {
	return e.err.Error()
}

func (e *execError) Unwrap() error {
	return e.err
}

// ErrorResponse is the structured error payload returned to MCP clients
type ErrorResponse struct {
	Error     string            `json:"error" description:"Human-readable error message"`
	Code      string            `json:"code" description:"Machine-readable error code"`
	Operation string            `json:"operation,omitempty" description:"Operation that failed"`
	Path      string            `json:"path,omitempty" description:"Path involved"`
	Details   map[string]string `json:"details,omitempty" description:"Additional context"`
}

// toErrorResponse converts any error to a structured response
func toErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Error: err.Error(),
		Code:  codeFor(err),
	}

	var opErr *OperationError
	if errors.As(err, &opErr) {
		resp.Operation = opErr.Op
		resp.Path = opErr.Path
	}

	var execErr *execError
	if errors.As(err, &execErr) {
		resp.Details = map[string]string{
			"stdout":    execErr.result.Stdout,
			"stderr":    execErr.result.Stderr,
			"exit_code": strconv.Itoa(execErr.result.ExitCode),
		}
	}

	return resp
}

// codeFor maps error types to stable error codes
func codeFor(err error) string {
	var exitErr *runner.ExitError
	var execErr *execError

	switch {
	case errors.Is(err, boundary.ErrDenied):
		return codeAccessDenied
	case errors.Is(err, runner.ErrTimeout):
		return codeTimeout
	case errors.Is(err, boundary.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return codeNotFound
	case errors.Is(err, editor.ErrNoMatch):
		return codeEditConflict
	case errors.Is(err, errFileExists), errors.Is(err, fs.ErrExist):
		return codeAlreadyExists
	case errors.Is(err, errNotDirectory):
		return codeNotADirectory
	case errors.Is(err, errBadPattern):
		return codeBadPattern
	case errors.As(err, &exitErr), errors.As(err, &execErr):
		return codeExecutionFailure
	case errors.Is(err, errIsSymlink), errors.Is(err, errIsDirectory), errors.Is(err, errNotRegular):
		return codeAccessDenied
	default:
		return codeUnknown
	}
}
