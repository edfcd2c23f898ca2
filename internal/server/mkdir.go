package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/c3mb0/fencemcp/internal/boundary"
)

func formatMkdirResult(r MkdirResult) string {
	return fmt.Sprintf("path=%s created=%v mode=%s modified_at=%s", r.Path, r.Created, r.Mode, r.ModifiedAt)
}

// ensureDirChain creates every missing directory leading down to dir. The
// nearest existing ancestor is realpath-checked first so the new chain cannot
// be grafted onto a symlinked escape.
func (srv *Server) ensureDirChain(dir string, mode os.FileMode) error {
	anchor := dir
	for {
		if _, err := os.Stat(anchor); err == nil {
			break
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		parent := filepath.Dir(anchor)
		if parent == anchor {
			break
		}
		anchor = parent
	}
	if _, err := srv.bounds.Resolve(anchor); err != nil {
		return err
	}
	return os.MkdirAll(dir, mode)
}

func (srv *Server) handleMkdir() mcp.StructuredToolHandlerFunc[MkdirArgs, MkdirResult] {
	return func(ctx context.Context, req mcp.CallToolRequest, args MkdirArgs) (MkdirResult, error) {
		start := time.Now()
		srv.log.Debug().Str("path", args.Path).Bool("parents", args.Parents).Str("mode", args.Mode).Msg("-> fs_mkdir")
		var out MkdirResult
		mode, err := parseMode(args.Mode, 0o755)
		if err != nil {
			return out, newOpError("fs_mkdir", args.Path, fmt.Errorf("invalid mode: %w", err))
		}
		created := false
		var full string
		loc, err := srv.bounds.Resolve(args.Path)
		switch {
		case err == nil && loc.Exists:
			full = loc.Path
			fi, lerr := os.Lstat(full)
			if lerr != nil {
				srv.log.Debug().Err(lerr).Msg("fs_mkdir lstat error")
				return out, newOpError("fs_mkdir", args.Path, lerr)
			}
			if !fi.IsDir() {
				srv.log.Debug().Msg("fs_mkdir exists but not dir")
				return out, newOpError("fs_mkdir", args.Path, errNotDirectory)
			}

		case err == nil:
			full = loc.Path
			if args.Parents {
				err = os.MkdirAll(full, mode)
			} else {
				err = os.Mkdir(full, mode)
			}
			if err != nil {
				srv.log.Debug().Err(err).Msg("fs_mkdir error")
				return out, newOpError("fs_mkdir", args.Path, err)
			}
			created = true

		case errors.Is(err, boundary.ErrNotFound) && args.Parents:
			// Deeper chain: more than the final element is missing.
			full, err = srv.bounds.Abs(args.Path)
			if err != nil {
				return out, newOpError("fs_mkdir", args.Path, err)
			}
			if err := srv.ensureDirChain(full, mode); err != nil {
				srv.log.Debug().Err(err).Msg("fs_mkdir error")
				return out, newOpError("fs_mkdir", args.Path, err)
			}
			created = true

		default:
			srv.log.Debug().Err(err).Msg("fs_mkdir error")
			return out, newOpError("fs_mkdir", args.Path, err)
		}

		fi, err := os.Lstat(full)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_mkdir stat error")
			return out, newOpError("fs_mkdir", args.Path, err)
		}
		out = MkdirResult{
			Path:       full,
			Created:    created,
			MetaFields: metaFor(fi),
		}
		srv.log.Debug().Bool("created", created).Dur("dur", time.Since(start)).Msg("<- fs_mkdir ok")
		return out, nil
	}
}
