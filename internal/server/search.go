package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func formatSearchResult(r SearchResult) string {
	var b strings.Builder
	for i, m := range r.Matches {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s:%d:%s", m.Path, m.Line, m.Text)
	}
	return b.String()
}

func (srv *Server) handleSearch() mcp.StructuredToolHandlerFunc[SearchArgs, SearchResult] {
	return func(ctx context.Context, req mcp.CallToolRequest, args SearchArgs) (SearchResult, error) {
		start := time.Now()
		srv.log.Debug().Str("pattern", args.Pattern).Str("path", args.Path).Bool("regex", args.Regex).Int("max_results", args.MaxResults).Msg("-> fs_search")
		var out SearchResult
		if args.Pattern == "" {
			return out, newOpError("fs_search", args.Path, errPatternRequired)
		}
		max := args.MaxResults
		if max <= 0 {
			max = defaultSearchMaxResults
		}
		var rx *regexp.Regexp
		if args.Regex {
			r, err := regexp.Compile(args.Pattern)
			if err != nil {
				srv.log.Debug().Err(err).Msg("fs_search error")
				return out, newOpError("fs_search", args.Path, fmt.Errorf("%w: %v", errBadPattern, err))
			}
			rx = r
		}
		bases := srv.bounds.Roots()
		if args.Path != "" {
			loc, err := srv.bounds.Resolve(args.Path)
			if err != nil {
				srv.log.Debug().Err(err).Msg("fs_search error")
				return out, newOpError("fs_search", args.Path, err)
			}
			bases = []string{loc.Path}
		}
		out.Matches = []SearchMatch{}
		for _, base := range bases {
			st := RootStatus{Root: base}
			walkErr := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					if path == base {
						return err
					}
					return nil
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				if d.IsDir() || d.Type()&os.ModeSymlink != 0 {
					return nil
				}
				if isBinaryExtension(filepath.Ext(path)) {
					return nil
				}
				info, err := d.Info()
				if err != nil {
					return nil
				}
				if info.Size() > maxSearchFileBytes {
					srv.log.Debug().Str("path", path).Int64("size", info.Size()).Msg("fs_search: skipping large file")
					return nil
				}
				matches := scanFile(path, args.Pattern, rx, max-len(out.Matches))
				out.FilesScanned++
				out.Matches = append(out.Matches, matches...)
				if len(out.Matches) >= max {
					out.Truncated = true
					return fs.SkipAll
				}
				return nil
			})
			if walkErr != nil {
				st.Error = walkErr.Error()
			}
			out.Roots = append(out.Roots, st)
			if out.Truncated {
				break
			}
		}
		srv.log.Debug().Int("matches", len(out.Matches)).Int64("files", out.FilesScanned).Dur("dur", time.Since(start)).Msg("<- fs_search ok")
		return out, nil
	}
}

func scanFile(path, pattern string, rx *regexp.Regexp, maxMatches int) []SearchMatch {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var matches []SearchMatch
	reader := bufio.NewReaderSize(f, 64*1024)

	lineNo := 1
	for len(matches) < maxMatches {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			break
		}
		if len(line) == 0 && err == io.EOF {
			break
		}
		line = strings.TrimRight(line, "\n")

		var found bool
		if rx != nil {
			found = rx.MatchString(line)
		} else {
			found = strings.Contains(line, pattern)
		}
		if found {
			displayText := line
			if len(displayText) > maxSearchLineRunes {
				displayText = displayText[:maxSearchLineRunes-3] + "..."
			}
			matches = append(matches, SearchMatch{
				Path: path,
				Line: lineNo,
				Text: displayText,
			})
		}
		lineNo++

		// A line count this high almost always means undetected binary.
		if lineNo > 1000000 {
			break
		}
		if err == io.EOF {
			break
		}
	}
	return matches
}
