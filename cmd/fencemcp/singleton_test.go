package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureSingleInstance(t *testing.T) {
	pidFile := filepath.Join(os.TempDir(), "fencemcp.pid")
	// Seed the file with our own PID so no other process is signaled.
	exe, _ := os.Executable()
	seed := fmt.Sprintf("%d:%s", os.Getpid(), filepath.Base(exe))
	if err := os.WriteFile(pidFile, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(pidFile) })

	cleanup, err := ensureSingleInstance()
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(pidFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), fmt.Sprintf("%d:", os.Getpid())) {
		t.Fatalf("pid file contents wrong: %s", b)
	}
	cleanup()
	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Fatalf("pid file not removed: %v", err)
	}
}
