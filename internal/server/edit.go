package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/c3mb0/fencemcp/internal/editor"
)

func formatEditResult(r EditResult) string {
	return fmt.Sprintf("path=%s applied=%d dry_run=%v bytes=%d sha=%s\n%s", r.Path, r.Applied, r.DryRun, r.Bytes, r.SHA256, r.Diff)
}

func (srv *Server) handleEdit() mcp.StructuredToolHandlerFunc[EditArgs, EditResult] {
	return func(ctx context.Context, req mcp.CallToolRequest, args EditArgs) (EditResult, error) {
		start := time.Now()
		srv.log.Debug().Str("path", args.Path).Int("edits", len(args.Edits)).Bool("dry_run", args.DryRun).Msg("-> fs_edit")
		var res EditResult
		if len(args.Edits) == 0 {
			return res, newOpError("fs_edit", args.Path, errNoEdits)
		}
		nominal, err := srv.bounds.Abs(args.Path)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_edit error")
			return res, newOpError("fs_edit", args.Path, err)
		}
		if fi, lerr := os.Lstat(nominal); lerr == nil && fi.Mode()&os.ModeSymlink != 0 {
			srv.log.Debug().Msg("fs_edit error: target is symlink")
			return res, newOpError("fs_edit", args.Path, errIsSymlink)
		}
		loc, err := srv.bounds.Resolve(args.Path)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_edit error")
			return res, newOpError("fs_edit", args.Path, err)
		}
		if !loc.Exists {
			return res, newOpError("fs_edit", args.Path, fmt.Errorf("%w: %s", fs.ErrNotExist, args.Path))
		}
		full := loc.Path
		fi, err := os.Lstat(full)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_edit error")
			return res, newOpError("fs_edit", args.Path, err)
		}
		if !fi.Mode().IsRegular() {
			return res, newOpError("fs_edit", args.Path, errNotRegular)
		}

		b, err := os.ReadFile(full)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_edit read error")
			return res, newOpError("fs_edit", args.Path, err)
		}
		sniff := b
		if len(sniff) > maxSniffBytes {
			sniff = sniff[:maxSniffBytes]
		}
		if !isText(sniff) {
			return res, newOpError("fs_edit", args.Path, errors.New("not a text file"))
		}

		ops := make([]editor.Operation, len(args.Edits))
		for i, e := range args.Edits {
			ops[i] = editor.Operation{Old: e.OldText, New: e.NewText}
		}
		original := editor.Normalize(string(b))
		modified, err := editor.Apply(original, ops)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_edit apply error")
			return res, newOpError("fs_edit", args.Path, err)
		}
		diff, err := editor.Unified(full, original, modified)
		if err != nil {
			return res, newOpError("fs_edit", args.Path, err)
		}

		mode := fi.Mode() & os.ModePerm
		if mode == 0 {
			mode = 0o644
		}
		if !args.DryRun {
			if err := atomicWrite(full, []byte(modified), mode); err != nil {
				srv.log.Debug().Err(err).Msg("fs_edit write error")
				return res, newOpError("fs_edit", args.Path, err)
			}
		}
		meta := metaFor(fi)
		if wfi, statErr := os.Lstat(full); statErr == nil {
			meta = metaFor(wfi)
		}
		res = EditResult{
			Path:       full,
			Applied:    len(ops),
			DryRun:     args.DryRun,
			Diff:       editor.WrapFence(diff),
			Bytes:      len(modified),
			SHA256:     sha256sum([]byte(modified)),
			MetaFields: meta,
		}
		srv.log.Debug().Int("applied", len(ops)).Bool("dry_run", args.DryRun).Int("bytes", len(modified)).Dur("dur", time.Since(start)).Msg("<- fs_edit ok")
		return res, nil
	}
}
