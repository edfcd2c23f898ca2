// Package boundary holds the allow-list of sandbox roots and resolves every
// caller-supplied path against it. Resolve is the single choke point all
// filesystem-touching tool calls pass through before doing any I/O.
package boundary

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrConfig marks an invalid root at construction time; fatal at startup.
	ErrConfig = errors.New("invalid boundary configuration")
	// ErrDenied marks a path whose nominal form, realpath, or parent realpath
	// lies outside every boundary root.
	ErrDenied = errors.New("path escapes sandbox boundaries")
	// ErrNotFound marks a not-yet-existing target whose parent directory
	// cannot be resolved.
	ErrNotFound = errors.New("parent directory does not exist")
)

// Set is an immutable, ordered set of canonical boundary roots. It needs no
// synchronization: it is built once at startup and never mutated.
type Set struct {
	roots []string
	work  string
}

// Resolved is the outcome of Resolve. If Exists is true Path is the realpath
// and lies within the set; otherwise Path is the normalized absolute form and
// its parent's realpath lies within the set.
type Resolved struct {
	Path   string
	Exists bool
}

// New builds a Set from explicitly configured directories. Relative requests
// resolve against the process working directory, which may itself sit outside
// the sandbox; containment still applies to the joined result.
func New(dirs []string) (*Set, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("%w: no directories configured", ErrConfig)
	}
	work, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if resolved, err := filepath.EvalSymlinks(work); err == nil {
		work = resolved
	}
	return build(dirs, work)
}

// NewSingle builds a single-root Set whose root doubles as the anchor for
// relative requests.
func NewSingle(dir string) (*Set, error) {
	s, err := build([]string{dir}, "")
	if err != nil {
		return nil, err
	}
	s.work = s.roots[0]
	return s, nil
}

func build(dirs []string, work string) (*Set, error) {
	s := &Set{work: work}
	seen := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		canon, err := canonicalRoot(d)
		if err != nil {
			return nil, err
		}
		if seen[canon] {
			continue
		}
		seen[canon] = true
		s.roots = append(s.roots, canon)
	}
	return s, nil
}

func canonicalRoot(dir string) (string, error) {
	p, err := expandHome(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrConfig, dir, err)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrConfig, dir, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrConfig, dir, err)
	}
	fi, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrConfig, dir, err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrConfig, dir)
	}
	return resolved, nil
}

// Roots returns a copy of the canonical boundary directories in
// configuration order.
func (s *Set) Roots() []string {
	out := make([]string, len(s.roots))
	copy(out, s.roots)
	return out
}

// WorkRoot returns the directory relative requests resolve against.
func (s *Set) WorkRoot() string { return s.work }

// Contains reports whether the canonical absolute path p falls inside one of
// the boundary roots. The comparison is segment-aware: /a/bc is not inside
// a root /a/b.
func (s *Set) Contains(p string) bool {
	sep := string(os.PathSeparator)
	for _, root := range s.roots {
		if p == root || strings.HasPrefix(p+sep, root+sep) {
			return true
		}
	}
	return false
}

// Abs normalizes a caller-supplied path (relative, absolute, ~-prefixed, or
// a file:// URI) into its nominal absolute form and checks containment. It
// performs no filesystem I/O, so targets outside the sandbox never leak
// existence through a different error path. Most callers want Resolve, which
// adds the realpath checks; Abs alone serves tools that create whole
// directory chains and need the destination's nominal form up front.
func (s *Set) Abs(req string) (string, error) {
	if req == "" {
		return "", errors.New("path is required")
	}
	p, err := stripFileURI(req)
	if err != nil {
		return "", err
	}
	p, err = expandHome(p)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.work, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if !s.Contains(abs) {
		return "", fmt.Errorf("%w: %s", ErrDenied, req)
	}
	return abs, nil
}

// Resolve turns a caller-supplied path into a canonical absolute location and
// verifies containment: once on the normalized nominal path before any
// filesystem call, and again on the realpath so a symlink cannot escape the
// sandbox. Targets that do not exist yet are admitted when their parent's
// realpath is contained, which allows creating new files inside the sandbox.
func (s *Set) Resolve(req string) (Resolved, error) {
	abs, err := s.Abs(req)
	if err != nil {
		return Resolved{}, err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		if !s.Contains(resolved) {
			return Resolved{}, fmt.Errorf("%w: symlink target of %s", ErrDenied, req)
		}
		return Resolved{Path: resolved, Exists: true}, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return Resolved{}, err
	}
	// Target does not exist yet; the parent's realpath decides.
	parent := filepath.Dir(abs)
	realParent, err := filepath.EvalSymlinks(parent)
	if err != nil {
		return Resolved{}, fmt.Errorf("%w: %s", ErrNotFound, parent)
	}
	if !s.Contains(realParent) {
		return Resolved{}, fmt.Errorf("%w: parent of %s", ErrDenied, req)
	}
	return Resolved{Path: abs, Exists: false}, nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	if p == "~" {
		return home, nil
	}
	return filepath.Join(home, p[2:]), nil
}

func stripFileURI(p string) (string, error) {
	if !strings.HasPrefix(p, "file://") {
		return p, nil
	}
	u, err := url.Parse(p)
	if err != nil {
		return "", fmt.Errorf("invalid file URI: %w", err)
	}
	if unesc, err := url.PathUnescape(u.Path); err == nil && unesc != "" {
		return unesc, nil
	}
	return u.Path, nil
}
