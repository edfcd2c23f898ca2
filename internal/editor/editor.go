// Package editor applies ordered textual replacements to file content with
// tolerance for whitespace and indentation drift, refusing edits it cannot
// locate unambiguously. It owns no I/O; persistence is the caller's job.
package editor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoMatch marks an edit whose old text was found neither verbatim nor by
// line-window comparison.
var ErrNoMatch = errors.New("edit text not found")

// Operation is one (old, new) replacement. A list applies in order against
// the progressively-modified content, so a later operation may depend on the
// output of an earlier one.
type Operation struct {
	Old string
	New string
}

// Normalize converts CRLF line endings to LF. Comparison and output are
// LF-based throughout; re-expanding endings for a platform that needs them is
// up to the caller.
func Normalize(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// Apply runs the operations against original in order and returns the final
// content. Each operation first tries an exact substring match, replacing the
// first occurrence; failing that, a line-window match that compares lines
// with surrounding whitespace stripped and reconstructs indentation at the
// match site. When a window matches more than once the first (lowest index)
// wins. An operation matching neither way fails the whole call with an error
// wrapping ErrNoMatch; nothing should be persisted from a failed call.
func Apply(original string, ops []Operation) (string, error) {
	content := Normalize(original)
	for i, op := range ops {
		oldText := Normalize(op.Old)
		newText := Normalize(op.New)
		if strings.Contains(content, oldText) {
			content = strings.Replace(content, oldText, newText, 1)
			continue
		}
		replaced, ok := replaceWindow(content, oldText, newText)
		if !ok {
			return "", fmt.Errorf("edit %d: %w: %s", i+1, ErrNoMatch, snippet(oldText))
		}
		content = replaced
	}
	return content, nil
}

func replaceWindow(content, oldText, newText string) (string, bool) {
	oldLines := strings.Split(oldText, "\n")
	lines := strings.Split(content, "\n")
	if len(oldLines) > len(lines) {
		return "", false
	}
	for i := 0; i+len(oldLines) <= len(lines); i++ {
		if !windowMatches(lines[i:i+len(oldLines)], oldLines) {
			continue
		}
		repl := reindent(lines[i], oldLines, strings.Split(newText, "\n"))
		out := make([]string, 0, len(lines)-len(oldLines)+len(repl))
		out = append(out, lines[:i]...)
		out = append(out, repl...)
		out = append(out, lines[i+len(oldLines):]...)
		return strings.Join(out, "\n"), true
	}
	return "", false
}

func windowMatches(window, oldLines []string) bool {
	for j := range oldLines {
		if strings.TrimSpace(window[j]) != strings.TrimSpace(oldLines[j]) {
			return false
		}
	}
	return true
}

// reindent rebuilds the replacement lines at the match site. The first line
// adopts the matched line's leading indentation. Later lines that carry
// indentation in both the old and new text shift by the width delta between
// the two, floored at zero, on top of that base; lines without such a
// correspondence keep their literal indentation.
func reindent(matched string, oldLines, newLines []string) []string {
	base := leadingWhitespace(matched)
	out := make([]string, len(newLines))
	for j, line := range newLines {
		if j == 0 {
			out[j] = base + strings.TrimLeft(line, " \t")
			continue
		}
		oldIndent := ""
		if j < len(oldLines) {
			oldIndent = leadingWhitespace(oldLines[j])
		}
		newIndent := leadingWhitespace(line)
		if oldIndent != "" && newIndent != "" {
			delta := len(newIndent) - len(oldIndent)
			if delta < 0 {
				delta = 0
			}
			out[j] = base + strings.Repeat(" ", delta) + strings.TrimLeft(line, " \t")
		} else {
			out[j] = line
		}
	}
	return out
}

func leadingWhitespace(line string) string {
	for i, r := range line {
		if r != ' ' && r != '\t' {
			return line[:i]
		}
	}
	return line
}

func snippet(s string) string {
	s = strings.ReplaceAll(s, "\n", `\n`)
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
