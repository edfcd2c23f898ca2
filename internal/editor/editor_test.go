package editor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyNoOps(t *testing.T) {
	out, err := Apply("a\r\nb\n", nil)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", out, "no-op apply still normalizes line endings")
}

func TestApplyExactFirstOccurrence(t *testing.T) {
	out, err := Apply("aXbXc", []Operation{{Old: "X", New: "Y"}})
	require.NoError(t, err)
	assert.Equal(t, "aYbXc", out)
}

func TestApplyCRLFEdit(t *testing.T) {
	out, err := Apply("one\r\ntwo\r\n", []Operation{{Old: "one\r\ntwo", New: "three"}})
	require.NoError(t, err)
	assert.Equal(t, "three\n", out)
}

func TestApplySequentialDependency(t *testing.T) {
	a := Operation{Old: "one", New: "two"}
	b := Operation{Old: "two", New: "three"}

	out, err := Apply("one\n", []Operation{a, b})
	require.NoError(t, err)
	assert.Equal(t, "three\n", out)

	_, err = Apply("one\n", []Operation{b, a})
	require.ErrorIs(t, err, ErrNoMatch, "edit order must matter")
	assert.Contains(t, err.Error(), "edit 1")
}

func TestApplyLineWindowIndentBase(t *testing.T) {
	// Exact matching cannot fire here: the second old line's indentation
	// diverges from the content, so the line-window strategy decides, and the
	// first replacement line must adopt the match site's four spaces.
	content := "    foo()\n      next\n"
	out, err := Apply(content, []Operation{{Old: "  foo()\n  next", New: "bar()\n  next"}})
	require.NoError(t, err)
	assert.Equal(t, "    bar()\n    next\n", out,
		"whole window is respliced: base indent four spaces, zero delta on line two")
}

func TestApplyLineWindowTabSite(t *testing.T) {
	out, err := Apply("\tfoo()\n", []Operation{{Old: "  foo()", New: "bar()"}})
	require.NoError(t, err)
	assert.Equal(t, "\tbar()\n", out)
}

func TestApplyIndentDelta(t *testing.T) {
	content := "\tstart\n\t  a\n\t    b\n\tend\n"
	out, err := Apply(content, []Operation{{Old: "a\n  b", New: "a2\n    b2"}})
	require.NoError(t, err)
	assert.Equal(t, "\tstart\n\t  a2\n\t    b2\n\tend\n", out,
		"second line shifts by the old/new indent delta on top of the site base")
}

func TestApplyIndentDeltaFloor(t *testing.T) {
	content := "\tstart\n\t    a\n\t      b\n"
	out, err := Apply(content, []Operation{{Old: "a\n    b", New: "a\n  b"}})
	require.NoError(t, err)
	assert.Equal(t, "\tstart\n\t    a\n\t    b\n", out,
		"negative delta floors at zero, not below the site base")
}

func TestApplyTrailingNewLinesVerbatim(t *testing.T) {
	out, err := Apply("\tcall()\n", []Operation{{Old: "  call()", New: "first()\n  second()"}})
	require.NoError(t, err)
	assert.Equal(t, "\tfirst()\n  second()\n", out,
		"new lines beyond the old block keep their literal indentation")
}

func TestApplyFirstWindowWins(t *testing.T) {
	content := "a\nx\na\n"
	out, err := Apply(content, []Operation{{Old: " a ", New: "b"}})
	require.NoError(t, err)
	assert.Equal(t, "b\nx\na\n", out, "lowest-index window must win deterministically")
}

func TestApplyConflict(t *testing.T) {
	_, err := Apply("hello\n", []Operation{{Old: "absent text", New: "x"}})
	require.ErrorIs(t, err, ErrNoMatch)
	assert.Contains(t, err.Error(), "absent text")
}

func TestApplyConflictSnippetTruncated(t *testing.T) {
	long := strings.Repeat("z", 200)
	_, err := Apply("hello\n", []Operation{{Old: long, New: "x"}})
	require.ErrorIs(t, err, ErrNoMatch)
	assert.Less(t, len(err.Error()), 200)
}

func TestUnifiedDiff(t *testing.T) {
	diff, err := Unified("a.txt", "hello\nworld\n", "hi\nworld\n")
	require.NoError(t, err)
	assert.Contains(t, diff, "--- a.txt (original)")
	assert.Contains(t, diff, "+++ a.txt (modified)")
	assert.Contains(t, diff, "@@")
	assert.Contains(t, diff, "-hello")
	assert.Contains(t, diff, "+hi")
	assert.NotContains(t, diff, "-world", "context lines carry no change marker")
}

func TestUnifiedNoChanges(t *testing.T) {
	diff, err := Unified("a.txt", "same\n", "same\n")
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestWrapFence(t *testing.T) {
	got := WrapFence("-a\n+b\n")
	assert.True(t, strings.HasPrefix(got, "```diff\n"), "default fence is three backticks: %q", got)
	assert.True(t, strings.HasSuffix(got, "```\n\n"))
}

func TestWrapFenceGrows(t *testing.T) {
	body := "-x\n+```go\n"
	got := WrapFence(body)
	assert.True(t, strings.HasPrefix(got, "````diff\n"), "fence must outgrow the body's backtick run: %q", got)
	assert.True(t, strings.HasSuffix(got, "````\n\n"))
	assert.Contains(t, got, body)
}
