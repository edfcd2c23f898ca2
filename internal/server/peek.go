package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func readWindow(path string, offset, max int) ([]byte, int64, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, false, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, 0, false, err
	}
	if fi.IsDir() {
		return nil, 0, false, errIsDirectory
	}
	sz := fi.Size()
	if offset < 0 {
		offset = 0
	}
	if int64(offset) > sz {
		return []byte{}, sz, true, nil
	}
	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, sz, false, err
	}
	if max <= 0 {
		max = defaultPeekMaxBytes
	}
	buf := make([]byte, max)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, sz, false, err
	}
	buf = buf[:n]
	return buf, sz, int64(offset+n) >= sz, nil
}

func formatPeekResult(r PeekResult) string {
	return fmt.Sprintf("path=%s offset=%d size=%d eof=%v encoding=%s content=%s", r.Path, r.Offset, r.Size, r.EOF, r.Encoding, r.Content)
}

func (srv *Server) handlePeek() mcp.StructuredToolHandlerFunc[PeekArgs, PeekResult] {
	return func(ctx context.Context, req mcp.CallToolRequest, args PeekArgs) (PeekResult, error) {
		start := time.Now()
		if args.MaxBytes <= 0 {
			args.MaxBytes = defaultPeekMaxBytes
		}
		srv.log.Debug().Str("path", args.Path).Int("offset", args.Offset).Int("max_bytes", args.MaxBytes).Msg("-> fs_peek")
		var res PeekResult
		loc, err := srv.bounds.Resolve(args.Path)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_peek error")
			return res, newOpError("fs_peek", args.Path, err)
		}
		full := loc.Path
		chunk, sz, eof, err := readWindow(full, args.Offset, args.MaxBytes)
		if err != nil {
			srv.log.Debug().Err(err).Msg("fs_peek read error")
			return res, newOpError("fs_peek", args.Path, err)
		}
		enc := encText
		content := string(chunk)
		if !isText(chunk) {
			enc = encBase64
			content = base64.StdEncoding.EncodeToString(chunk)
		}
		var meta MetaFields
		if fi, statErr := os.Lstat(full); statErr == nil {
			meta = metaFor(fi)
		}
		res = PeekResult{
			Path:       full,
			Offset:     args.Offset,
			Size:       sz,
			EOF:        eof,
			Encoding:   string(enc),
			Content:    content,
			MetaFields: meta,
		}
		srv.log.Debug().Int("bytes", len(chunk)).Bool("eof", eof).Dur("dur", time.Since(start)).Msg("<- fs_peek ok")
		return res, nil
	}
}
