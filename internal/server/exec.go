package server

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	shellwords "github.com/mattn/go-shellwords"

	"github.com/c3mb0/fencemcp/internal/runner"
)

func formatExecResult(r ExecResult) string {
	return fmt.Sprintf("command=%s exit=%d duration_ms=%d\nstdout:\n%s\nstderr:\n%s", r.Command, r.ExitCode, r.DurationMs, r.Stdout, r.Stderr)
}

func (srv *Server) handleExec() mcp.StructuredToolHandlerFunc[ExecArgs, ExecResult] {
	return func(ctx context.Context, req mcp.CallToolRequest, args ExecArgs) (ExecResult, error) {
		start := time.Now()
		srv.log.Debug().Str("command", args.Command).Strs("args", args.Args).Str("cwd", args.Cwd).Int("timeout_ms", args.TimeoutMs).Msg("-> exec_run")
		var out ExecResult
		if args.Command == "" {
			return out, newOpError("exec_run", "", errCommandRequired)
		}
		prog := args.Command
		argv := args.Args
		if len(argv) == 0 {
			parts, err := shellwords.Parse(args.Command)
			if err != nil {
				return out, newOpError("exec_run", "", fmt.Errorf("parse command line: %w", err))
			}
			if len(parts) == 0 {
				return out, newOpError("exec_run", "", errCommandRequired)
			}
			prog, argv = parts[0], parts[1:]
		}

		cwd := args.Cwd
		if cwd == "" {
			cwd = srv.bounds.WorkRoot()
		}
		loc, err := srv.bounds.Resolve(cwd)
		if err != nil {
			srv.log.Debug().Err(err).Msg("exec_run cwd error")
			return out, newOpError("exec_run", cwd, err)
		}
		fi, err := os.Stat(loc.Path)
		if err != nil {
			srv.log.Debug().Err(err).Msg("exec_run cwd error")
			return out, newOpError("exec_run", cwd, err)
		}
		if !fi.IsDir() {
			return out, newOpError("exec_run", cwd, errNotDirectory)
		}

		timeout := srv.cfg.ExecTimeout
		if args.TimeoutMs > 0 {
			timeout = time.Duration(args.TimeoutMs) * time.Millisecond
		}
		spec := runner.Spec{
			Command: prog,
			Args:    argv,
			Dir:     loc.Path,
			Timeout: timeout,
		}
		res, err := runner.Run(ctx, spec)
		dur := time.Since(start)
		if err != nil {
			srv.log.Debug().Err(err).Int("exit_code", res.ExitCode).Dur("dur", dur).Msg("exec_run failed")
			return out, newOpError("exec_run", loc.Path, &execError{result: res, err: err})
		}
		out = ExecResult{
			Command:    prog,
			Stdout:     res.Stdout,
			Stderr:     res.Stderr,
			ExitCode:   res.ExitCode,
			DurationMs: dur.Milliseconds(),
		}
		srv.log.Debug().Int("exit_code", res.ExitCode).Dur("dur", dur).Msg("<- exec_run ok")
		return out, nil
	}
}
