package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/c3mb0/fencemcp/internal/boundary"
)

func formatRemoveResult(r RemoveResult) string {
	return fmt.Sprintf("path=%s removed=%v", r.Path, r.Removed)
}

func (srv *Server) handleRemove() mcp.StructuredToolHandlerFunc[RemoveArgs, RemoveResult] {
	return func(ctx context.Context, req mcp.CallToolRequest, args RemoveArgs) (RemoveResult, error) {
		start := time.Now()
		srv.log.Debug().Str("path", args.Path).Bool("recursive", args.Recursive).Msg("-> fs_remove")
		var out RemoveResult
		nominal, err := srv.bounds.Abs(args.Path)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_remove error")
			return out, newOpError("fs_remove", args.Path, err)
		}
		// Resolve the parent, not the target: a final-element symlink is
		// removed as a link, never followed.
		parentLoc, err := srv.bounds.Resolve(filepath.Dir(nominal))
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_remove error")
			return out, newOpError("fs_remove", args.Path, err)
		}
		target := filepath.Join(parentLoc.Path, filepath.Base(nominal))
		for _, r := range srv.bounds.Roots() {
			if target == r || nominal == r {
				return out, newOpError("fs_remove", args.Path, fmt.Errorf("%w: refusing to remove boundary root", boundary.ErrDenied))
			}
		}
		fi, err := os.Lstat(target)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_remove lstat error")
			return out, newOpError("fs_remove", args.Path, err)
		}
		if fi.IsDir() && args.Recursive {
			if err := os.RemoveAll(target); err != nil {
				srv.log.Debug().Err(err).Msg("fs_remove RemoveAll error")
				return out, newOpError("fs_remove", args.Path, err)
			}
		} else {
			if err := os.Remove(target); err != nil {
				srv.log.Debug().Err(err).Msg("fs_remove Remove error")
				return out, newOpError("fs_remove", args.Path, err)
			}
		}
		out = RemoveResult{Path: target, Removed: true}
		srv.log.Debug().Dur("dur", time.Since(start)).Msg("<- fs_remove ok")
		return out, nil
	}
}
