package server

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"

	"github.com/c3mb0/fencemcp/internal/boundary"
	"github.com/c3mb0/fencemcp/internal/config"
)

// newTestServer builds a Server around the given roots with logging off. With
// one root, that root doubles as the working root so relative paths resolve
// under it, like the single-directory serving mode.
func newTestServer(t *testing.T, roots ...string) *Server {
	t.Helper()
	var (
		bounds *boundary.Set
		err    error
	)
	if len(roots) == 1 {
		bounds, err = boundary.NewSingle(roots[0])
	} else {
		bounds, err = boundary.New(roots)
	}
	if err != nil {
		t.Fatalf("boundary: %v", err)
	}
	return &Server{cfg: config.Default(), bounds: bounds, log: zerolog.Nop()}
}

func mustWrite(t *testing.T, p string, b []byte, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, b, mode); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func makeSymlink(t *testing.T, target, link string) error {
	t.Helper()
	// Windows often needs admin privileges for symlinks.
	if runtime.GOOS == "windows" {
		return os.ErrPermission
	}
	return os.Symlink(target, link)
}

func boolPtr(b bool) *bool { return &b }
