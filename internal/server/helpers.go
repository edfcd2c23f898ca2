package server

import (
	"crypto/sha256"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

func detectMIME(name string, sample []byte) string {
	if ext := filepath.Ext(name); ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			return mt
		}
	}
	if isText(sample) {
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}

func isText(b []byte) bool {
	for _, c := range b {
		if c == 9 || c == 10 || c == 13 {
			continue
		}
		if c < 32 || c == 0x7f {
			return false
		}
	}
	return true
}

func sha256sum(b []byte) string {
	s := sha256.Sum256(b)
	return fmt.Sprintf("%x", s[:])
}

func parseMode(s string, fallback os.FileMode) (os.FileMode, error) {
	if s == "" {
		return fallback, nil
	}
	if !strings.HasPrefix(s, "0") {
		s = "0" + s
	}
	u, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return os.FileMode(u), nil
}

// atomicWrite writes to a temp file then renames over target.
func atomicWrite(target string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".fencemcp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		if runtime.GOOS == "windows" {
			if removeErr := os.Remove(target); removeErr != nil && !os.IsNotExist(removeErr) {
				return removeErr
			}
			return os.Rename(tmpName, target)
		}
		return err
	}
	return nil
}

func kindOf(fi os.FileInfo) string {
	m := fi.Mode()
	if m.IsRegular() {
		return "file"
	}
	if m.IsDir() {
		return "dir"
	}
	if (m & os.ModeSymlink) != 0 {
		return "symlink"
	}
	return "other"
}

func metaFor(fi os.FileInfo) MetaFields {
	return MetaFields{
		Mode:       fmt.Sprintf("%04o", fi.Mode().Perm()),
		ModifiedAt: fi.ModTime().UTC().Format(time.RFC3339),
	}
}

// isBinaryExtension checks if file extension suggests binary content
func isBinaryExtension(ext string) bool {
	ext = strings.ToLower(ext)
	binaryExts := map[string]bool{
		".exe": true, ".dll": true, ".so": true, ".dylib": true,
		".zip": true, ".tar": true, ".gz": true, ".bz2": true,
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
		".pdf": true, ".doc": true, ".docx": true,
		".mp3": true, ".mp4": true, ".avi": true, ".mov": true,
		".bin": true, ".dat": true, ".db": true,
		".pyc": true, ".pyo": true, ".class": true,
		".o": true, ".a": true, ".lib": true,
	}
	return binaryExts[ext]
}
