package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func formatListResult(r ListResult) string {
	var b strings.Builder
	for i, e := range r.Entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s %d %s %s", e.Path, e.Name, e.Kind, e.Size, e.Mode, e.ModifiedAt)
	}
	return b.String()
}

func (srv *Server) handleList() mcp.StructuredToolHandlerFunc[ListArgs, ListResult] {
	return func(ctx context.Context, req mcp.CallToolRequest, args ListArgs) (ListResult, error) {
		start := time.Now()
		srv.log.Debug().Str("path", args.Path).Bool("recursive", args.Recursive).Int("max_entries", args.MaxEntries).Msg("-> fs_list")
		var out ListResult
		loc, err := srv.bounds.Resolve(args.Path)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_list error")
			return out, newOpError("fs_list", args.Path, err)
		}
		base := loc.Path
		max := args.MaxEntries
		if max <= 0 {
			max = defaultListMaxEntries
		}
		count := 0
		add := func(path string, fi os.FileInfo) bool {
			if count >= max {
				out.Truncated = true
				return false
			}
			out.Entries = append(out.Entries, ListEntry{
				Path:       path,
				Name:       fi.Name(),
				Kind:       kindOf(fi),
				Size:       fi.Size(),
				Mode:       fmt.Sprintf("%04o", fi.Mode().Perm()),
				ModifiedAt: fi.ModTime().UTC().Format(time.RFC3339),
			})
			count++
			return true
		}
		fi, err := os.Stat(base)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_list stat error")
			return out, newOpError("fs_list", args.Path, err)
		}
		if fi.IsDir() {
			if !args.Recursive {
				ents, err := os.ReadDir(base)
				if err != nil {
					srv.log.Debug().Err(err).Msg("fs_list readdir error")
					return out, newOpError("fs_list", args.Path, err)
				}
				for _, e := range ents {
					select {
					case <-ctx.Done():
						return out, ctx.Err()
					default:
					}
					info, err := e.Info()
					if err != nil {
						continue
					}
					if !add(filepath.Join(base, e.Name()), info) {
						break
					}
				}
			} else {
				err := filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
					if err != nil {
						return nil
					}
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
					if path == base {
						return nil
					}
					if !add(path, info) {
						return io.EOF
					}
					return nil
				})
				if err != nil && !errors.Is(err, io.EOF) {
					srv.log.Debug().Err(err).Msg("fs_list walk error")
					return out, newOpError("fs_list", args.Path, err)
				}
			}
		} else {
			add(base, fi)
		}
		srv.log.Debug().Int("entries", len(out.Entries)).Bool("truncated", out.Truncated).Dur("dur", time.Since(start)).Msg("<- fs_list ok")
		return out, nil
	}
}
