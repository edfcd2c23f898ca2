// Package runner executes child processes on behalf of the exec tool. The
// working directory it receives has always been validated by the boundary
// resolver; the runner's own contract is timeout enforcement and surfacing
// partial output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a command when the caller specifies none.
const DefaultTimeout = 30 * time.Second

// ErrTimeout marks a command that exceeded its deadline. The child is killed
// and output collected so far is still returned alongside the error.
var ErrTimeout = errors.New("command timed out")

// Spec describes one command invocation.
type Spec struct {
	Command string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// Result carries the captured output and exit status of a finished (or
// killed) command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExitError reports a command that ran to completion with a non-zero status.
type ExitError struct {
	Result Result
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.Result.ExitCode)
}

// Run executes spec and waits for completion or deadline. A zero exit returns
// (Result, nil); a non-zero exit returns the same Result plus *ExitError; a
// deadline kills the child and returns partial output with an error wrapping
// ErrTimeout. Spawn failures are returned as-is. No retries.
func Run(ctx context.Context, spec Spec) (Result, error) {
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, spec.Command, spec.Args...)
	cmd.Dir = spec.Dir
	// Grandchildren can hold the output pipes open past the kill; don't let
	// them pin Wait forever.
	cmd.WaitDelay = 5 * time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	cmdErr := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if st := cmd.ProcessState; st != nil {
		res.ExitCode = st.ExitCode()
	}
	if cmdErr == nil {
		return res, nil
	}
	if errors.Is(cctx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	if errors.Is(cmdErr, exec.ErrWaitDelay) {
		// Child exited but something kept its pipes open; output is
		// truncated, the exit status is still authoritative.
		if res.ExitCode == 0 {
			return res, nil
		}
		return res, &ExitError{Result: res}
	}
	var exitErr *exec.ExitError
	if errors.As(cmdErr, &exitErr) {
		return res, &ExitError{Result: res}
	}
	// Spawn failure: the command never ran.
	res.ExitCode = -1
	return res, fmt.Errorf("spawn %s: %w", spec.Command, cmdErr)
}
