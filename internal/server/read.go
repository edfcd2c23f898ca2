package server

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func formatReadResult(r ReadResult) string {
	return fmt.Sprintf("path=%s size=%d mime=%s sha=%s encoding=%s truncated=%v content=%s", r.Path, r.Size, r.MIMEType, r.SHA256, r.Encoding, r.Truncated, r.Content)
}

func (srv *Server) handleRead() mcp.StructuredToolHandlerFunc[ReadArgs, ReadResult] {
	return func(ctx context.Context, req mcp.CallToolRequest, args ReadArgs) (ReadResult, error) {
		start := time.Now()
		srv.log.Debug().Str("path", args.Path).Int("max_bytes", args.MaxBytes).Msg("-> fs_read")
		var res ReadResult
		enc := encodingKind(args.Encoding)
		if enc != "" && enc != encText && enc != encBase64 {
			return res, newOpError("fs_read", args.Path, fmt.Errorf("unknown encoding: %s", args.Encoding))
		}
		loc, err := srv.bounds.Resolve(args.Path)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_read error")
			return res, newOpError("fs_read", args.Path, err)
		}
		full := loc.Path
		fi, err := os.Stat(full)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_read stat error")
			return res, newOpError("fs_read", args.Path, err)
		}
		if fi.IsDir() {
			return res, newOpError("fs_read", args.Path, errIsDirectory)
		}
		if !fi.Mode().IsRegular() {
			return res, newOpError("fs_read", args.Path, errNotRegular)
		}
		limit := args.MaxBytes
		if limit <= 0 {
			limit = defaultReadMaxBytes
		}
		f, err := os.Open(full)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_read open error")
			return res, newOpError("fs_read", args.Path, err)
		}
		defer f.Close()
		window, err := io.ReadAll(io.LimitReader(f, int64(limit)))
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_read read error")
			return res, newOpError("fs_read", args.Path, err)
		}
		trunc := fi.Size() > int64(len(window))

		if enc == "" {
			if isText(window) {
				enc = encText
			} else {
				enc = encBase64
			}
		}
		content := string(window)
		if enc == encBase64 {
			content = base64.StdEncoding.EncodeToString(window)
		}

		sha := ""
		if fi.Size() <= maxHashBytes {
			hf, err := os.Open(full)
			if err == nil {
				h := sha256.New()
				if _, err := io.Copy(h, hf); err == nil {
					sha = fmt.Sprintf("%x", h.Sum(nil))
				}
				hf.Close()
			}
		} else {
			srv.log.Debug().Int64("size", fi.Size()).Msg("fs_read: skip sha256 over cap")
		}

		res = ReadResult{
			Path:       full,
			Size:       fi.Size(),
			MIMEType:   detectMIME(full, window),
			SHA256:     sha,
			Encoding:   string(enc),
			Content:    content,
			Truncated:  trunc,
			MetaFields: metaFor(fi),
		}
		srv.log.Debug().Int("bytes", len(window)).Bool("truncated", trunc).Dur("dur", time.Since(start)).Msg("<- fs_read ok")
		return res, nil
	}
}
