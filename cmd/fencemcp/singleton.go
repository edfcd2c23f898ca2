package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ensureSingleInstance terminates any previously running fencemcp process and
// writes the current PID to a file so subsequent runs can replace this one.
// Opt-in via --single-instance; MCP clients that respawn the server on
// reconnect otherwise accumulate orphaned instances.
func ensureSingleInstance() (func(), error) {
	pidFile := filepath.Join(os.TempDir(), "fencemcp.pid")
	exePath, _ := os.Executable()
	execName := filepath.Base(exePath)

	if b, err := os.ReadFile(pidFile); err == nil {
		parts := strings.SplitN(strings.TrimSpace(string(b)), ":", 2)
		if len(parts) == 2 && parts[1] == execName {
			if old, err := strconv.Atoi(parts[0]); err == nil && old != os.Getpid() {
				if p, err := os.FindProcess(old); err == nil {
					_ = p.Kill()
				}
			}
		}
	}
	if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d:%s", os.Getpid(), execName)), 0o644); err != nil {
		return nil, err
	}
	return func() { os.Remove(pidFile) }, nil
}
