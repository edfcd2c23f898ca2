package server

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mark3labs/mcp-go/mcp"
)

func formatGlobResult(r GlobResult) string {
	return strings.Join(r.Matches, "\n")
}

func (srv *Server) handleGlob() mcp.StructuredToolHandlerFunc[GlobArgs, GlobResult] {
	return func(ctx context.Context, req mcp.CallToolRequest, args GlobArgs) (GlobResult, error) {
		start := time.Now()
		srv.log.Debug().Str("pattern", args.Pattern).Str("path", args.Path).Int("max_results", args.MaxResults).Msg("-> fs_glob")
		var out GlobResult
		if args.Pattern == "" {
			return out, newOpError("fs_glob", "", errPatternRequired)
		}
		pat := filepath.ToSlash(args.Pattern)
		if _, err := doublestar.Match(pat, ""); err != nil {
			srv.log.Debug().Err(err).Msg("fs_glob error")
			return out, newOpError("fs_glob", "", fmt.Errorf("%w: %s", errBadPattern, args.Pattern))
		}
		max := args.MaxResults
		if max <= 0 {
			max = defaultGlobMaxResults
		}
		bases := srv.bounds.Roots()
		if args.Path != "" {
			loc, err := srv.bounds.Resolve(args.Path)
			if err != nil {
				srv.log.Debug().Err(err).Msg("fs_glob error")
				return out, newOpError("fs_glob", args.Path, err)
			}
			bases = []string{loc.Path}
		}
		out.Matches = []string{}
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
				rel, err := filepath.Rel(base, path)
				if err != nil || rel == "." {
					return nil
				}
				ok, err := doublestar.Match(pat, filepath.ToSlash(rel))
				if err != nil {
					return err
				}
				if ok {
					if len(out.Matches) >= max {
						out.Truncated = true
						return fs.SkipAll
					}
					out.Matches = append(out.Matches, path)
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
		srv.log.Debug().Int("matches", len(out.Matches)).Bool("truncated", out.Truncated).Dur("dur", time.Since(start)).Msg("<- fs_glob ok")
		return out, nil
	}
}
