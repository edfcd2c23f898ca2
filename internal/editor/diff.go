package editor

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Unified renders a conventional unified diff (---/+++ headers, @@ hunks,
// three context lines) between the original and modified content, labeled
// with the file path.
func Unified(path, original, modified string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(modified),
		FromFile: path + " (original)",
		ToFile:   path + " (modified)",
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(ud)
}

// WrapFence wraps a diff in a backtick fence longer than any backtick run
// inside the body, so the body cannot terminate the fence early.
func WrapFence(diff string) string {
	n := 3
	for strings.Contains(diff, strings.Repeat("`", n)) {
		n++
	}
	fence := strings.Repeat("`", n)
	return fmt.Sprintf("%sdiff\n%s%s\n\n", fence, diff, fence)
}
