package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func formatWriteResult(r WriteResult) string {
	return fmt.Sprintf("path=%s action=%s bytes=%d created=%v mime=%s sha=%s", r.Path, r.Action, r.Bytes, r.Created, r.MIMEType, r.SHA256)
}

func (srv *Server) handleWrite() mcp.StructuredToolHandlerFunc[WriteArgs, WriteResult] {
	return func(ctx context.Context, req mcp.CallToolRequest, args WriteArgs) (WriteResult, error) {
		start := time.Now()
		srv.log.Debug().Str("path", args.Path).Str("strategy", string(args.Strategy)).Str("encoding", args.Encoding).Int("bytes", len(args.Content)).Msg("-> fs_write")
		var res WriteResult
		if args.Encoding == "" {
			return res, newOpError("fs_write", args.Path, errors.New("encoding is required: text|base64"))
		}
		nominal, err := srv.bounds.Abs(args.Path)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_write error")
			return res, newOpError("fs_write", args.Path, err)
		}
		if args.CreateDirs != nil && *args.CreateDirs {
			if err := srv.ensureDirChain(filepath.Dir(nominal), 0o755); err != nil {
				srv.log.Debug().Err(err).Msg("fs_write error")
				return res, newOpError("fs_write", args.Path, err)
			}
		}
		// The final element must not be a symlink, not even a dangling one:
		// append and range writes would otherwise follow it.
		if fi, lerr := os.Lstat(nominal); lerr == nil && fi.Mode()&os.ModeSymlink != 0 {
			srv.log.Debug().Msg("fs_write error: target is symlink")
			return res, newOpError("fs_write", args.Path, errIsSymlink)
		}
		loc, err := srv.bounds.Resolve(args.Path)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_write error")
			return res, newOpError("fs_write", args.Path, err)
		}
		full := loc.Path
		mode, err := parseMode(args.Mode, 0o644)
		if err != nil {
			return res, newOpError("fs_write", args.Path, fmt.Errorf("invalid mode: %w", err))
		}
		modeProvided := args.Mode != ""
		var data []byte
		if encodingKind(args.Encoding) == encBase64 {
			b, err := base64.StdEncoding.DecodeString(args.Content)
			if err != nil {
				return res, newOpError("fs_write", args.Path, fmt.Errorf("invalid base64 content: %w", err))
			}
			data = b
		} else {
			data = []byte(args.Content)
		}
		st := args.Strategy
		if st == "" {
			st = strategyOverwrite
		}

		preFi, preErr := os.Lstat(full)
		if preErr == nil && preFi.IsDir() {
			return res, newOpError("fs_write", args.Path, errIsDirectory)
		}
		if preErr == nil && !modeProvided {
			if pm := preFi.Mode() & os.ModePerm; pm != 0 {
				mode = pm
			} else {
				mode = 0o644
			}
		}

		created := false
		action := string(st)

		switch st {
		case strategyNoClobber:
			if preErr == nil {
				return res, newOpError("fs_write", args.Path, errFileExists)
			}
			if err := atomicWrite(full, data, mode); err != nil {
				srv.log.Debug().Err(err).Msg("fs_write error")
				return res, newOpError("fs_write", args.Path, err)
			}
			created = true

		case strategyOverwrite:
			if errors.Is(preErr, os.ErrNotExist) {
				created = true
			}
			if err := atomicWrite(full, data, mode); err != nil {
				srv.log.Debug().Err(err).Msg("fs_write error")
				return res, newOpError("fs_write", args.Path, err)
			}

		case strategyAppend:
			if preErr == nil && !preFi.Mode().IsRegular() {
				return res, newOpError("fs_write", args.Path, errNotRegular)
			}
			if errors.Is(preErr, os.ErrNotExist) {
				created = true
			}
			f, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_APPEND, mode)
			if err != nil {
				srv.log.Debug().Err(err).Msg("fs_write error")
				return res, newOpError("fs_write", args.Path, err)
			}
			_, err = f.Write(data)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				srv.log.Debug().Err(err).Msg("fs_write error")
				return res, newOpError("fs_write", args.Path, err)
			}

		case strategyPrepend:
			if preErr == nil && !preFi.Mode().IsRegular() {
				return res, newOpError("fs_write", args.Path, errNotRegular)
			}
			var old []byte
			if preErr == nil {
				old, err = os.ReadFile(full)
				if err != nil {
					return res, newOpError("fs_write", args.Path, err)
				}
			} else if errors.Is(preErr, os.ErrNotExist) {
				created = true
			}
			buf := append([]byte{}, data...)
			buf = append(buf, old...)
			if err := atomicWrite(full, buf, mode); err != nil {
				srv.log.Debug().Err(err).Msg("fs_write error")
				return res, newOpError("fs_write", args.Path, err)
			}

		case strategyReplaceRange:
			if preErr != nil {
				return res, newOpError("fs_write", args.Path, fmt.Errorf("replace_range requires existing file: %w", preErr))
			}
			if !preFi.Mode().IsRegular() {
				return res, newOpError("fs_write", args.Path, errNotRegular)
			}
			old, err := os.ReadFile(full)
			if err != nil {
				return res, newOpError("fs_write", args.Path, err)
			}
			if args.Start == nil || args.End == nil {
				return res, newOpError("fs_write", args.Path, errors.New("start and end required for replace_range"))
			}
			s, e := *args.Start, *args.End
			if s < 0 || e < s || e > len(old) {
				return res, newOpError("fs_write", args.Path, fmt.Errorf("invalid range [%d,%d)", s, e))
			}
			buf := append([]byte{}, old[:s]...)
			buf = append(buf, data...)
			buf = append(buf, old[e:]...)
			if err := atomicWrite(full, buf, mode); err != nil {
				srv.log.Debug().Err(err).Msg("fs_write error")
				return res, newOpError("fs_write", args.Path, err)
			}

		default:
			return res, newOpError("fs_write", args.Path, fmt.Errorf("unknown strategy: %s", st))
		}

		final, err := os.ReadFile(full)
		if err != nil {
			return res, newOpError("fs_write", args.Path, err)
		}
		mt := detectMIME(full, final)
		var meta MetaFields
		if fi, statErr := os.Lstat(full); statErr == nil {
			meta = metaFor(fi)
		}
		sha := ""
		if len(final) <= int(maxHashBytes) {
			sha = sha256sum(final)
		} else {
			srv.log.Debug().Int("size", len(final)).Msg("fs_write: skip sha256 over cap")
		}
		res = WriteResult{
			Path:       full,
			Action:     action,
			Bytes:      len(final),
			Created:    created,
			MIMEType:   mt,
			SHA256:     sha,
			MetaFields: meta,
		}
		srv.log.Debug().Bool("created", created).Int("bytes", len(final)).Dur("dur", time.Since(start)).Msg("<- fs_write ok")
		return res, nil
	}
}
