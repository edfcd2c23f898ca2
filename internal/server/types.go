package server

// Write strategies define how content is written to files
type writeStrategy string

const (
	strategyOverwrite    writeStrategy = "overwrite"     // Replace entire file content
	strategyNoClobber    writeStrategy = "no_clobber"    // Fail if file exists
	strategyAppend       writeStrategy = "append"        // Add to end of file
	strategyPrepend      writeStrategy = "prepend"       // Add to beginning of file
	strategyReplaceRange writeStrategy = "replace_range" // Replace specific byte range
)

// Encoding types for file content
type encodingKind string

const (
	encText   encodingKind = "text"   // UTF-8 text content
	encBase64 encodingKind = "base64" // Base64 encoded binary
)

// MetaFields contains common file metadata
type MetaFields struct {
	Mode       string `json:"mode,omitempty"`        // File permissions in octal
	ModifiedAt string `json:"modified_at,omitempty"` // Last modification time (RFC3339)
}

// RootStatus reports the outcome of walking one boundary root, so callers can
// tell "no matches" apart from "this root was inaccessible".
type RootStatus struct {
	Root  string `json:"root" description:"Boundary root that was walked"`
	Error string `json:"error,omitempty" description:"Why the walk failed; empty on success"`
}

// ReadArgs defines parameters for reading files
type ReadArgs struct {
	Path     string `json:"path" description:"File path or file:// URI within the sandbox"`
	Encoding string `json:"encoding,omitempty" description:"Force text or base64; auto-detected if empty"`
	MaxBytes int    `json:"max_bytes,omitempty" description:"Maximum bytes to return (default 64KB)"`
}

// ReadResult contains file read operation results
type ReadResult struct {
	Path      string `json:"path" description:"Resolved absolute path"`
	Size      int64  `json:"size" description:"Total file size in bytes"`
	MIMEType  string `json:"mime_type" description:"Detected MIME type"`
	SHA256    string `json:"sha256" description:"SHA256 hash of content (if under 32MB)"`
	Encoding  string `json:"encoding" description:"Content encoding used (text/base64)"`
	Content   string `json:"content" description:"File content (possibly truncated)"`
	Truncated bool   `json:"truncated" description:"Whether content was truncated"`
	MetaFields
}

// PeekArgs defines parameters for peeking into files
type PeekArgs struct {
	Path     string `json:"path" description:"File path"`
	Offset   int    `json:"offset,omitempty" description:"Byte offset to start at (default 0)"`
	MaxBytes int    `json:"max_bytes,omitempty" description:"Window size in bytes (default 4KB)"`
}

// PeekResult contains file peek operation results
type PeekResult struct {
	Path     string `json:"path" description:"Resolved absolute path"`
	Offset   int    `json:"offset" description:"Starting byte offset"`
	Size     int64  `json:"size" description:"Total file size"`
	EOF      bool   `json:"eof" description:"Whether window reached end of file"`
	Encoding string `json:"encoding" description:"Content encoding (text/base64)"`
	Content  string `json:"content" description:"Window content"`
	MetaFields
}

// WriteArgs defines parameters for writing files
type WriteArgs struct {
	Path       string        `json:"path" description:"Target file path"`
	Encoding   string        `json:"encoding" description:"Content encoding: text or base64"`
	Content    string        `json:"content" description:"Data to write"`
	Strategy   writeStrategy `json:"strategy,omitempty" description:"Write behavior (default overwrite)"`
	CreateDirs *bool         `json:"create_dirs,omitempty" description:"Create parent directories if needed"`
	Mode       string        `json:"mode,omitempty" description:"File mode in octal (e.g., 0644)"`
	Start      *int          `json:"start,omitempty" description:"Start byte for replace_range strategy"`
	End        *int          `json:"end,omitempty" description:"End byte (exclusive) for replace_range"`
}

// WriteResult contains file write operation results
type WriteResult struct {
	Path     string `json:"path" description:"Resolved absolute path written"`
	Action   string `json:"action" description:"Write strategy used"`
	Bytes    int    `json:"bytes" description:"Total bytes in final file"`
	Created  bool   `json:"created" description:"Whether file was newly created"`
	MIMEType string `json:"mime_type" description:"Detected MIME type"`
	SHA256   string `json:"sha256" description:"SHA256 of final content"`
	MetaFields
}

// EditOp is one ordered replacement applied by fs_edit.
type EditOp struct {
	OldText string `json:"old_text" description:"Existing text to locate; matched exactly or by whitespace-tolerant line comparison"`
	NewText string `json:"new_text" description:"Replacement text"`
}

// EditArgs defines parameters for editing files
type EditArgs struct {
	Path   string   `json:"path" description:"Target text file"`
	Edits  []EditOp `json:"edits" description:"Replacements applied in order against the progressively modified content"`
	DryRun bool     `json:"dry_run,omitempty" description:"Compute the diff without persisting"`
}

// EditResult contains file edit operation results
type EditResult struct {
	Path    string `json:"path" description:"Resolved absolute path edited"`
	Applied int    `json:"applied" description:"Number of edits applied"`
	DryRun  bool   `json:"dry_run" description:"True when nothing was persisted"`
	Diff    string `json:"diff" description:"Unified diff between original and modified content"`
	Bytes   int    `json:"bytes" description:"Final file size"`
	SHA256  string `json:"sha256" description:"SHA256 of final content"`
	MetaFields
}

// ListArgs defines parameters for listing directories
type ListArgs struct {
	Path       string `json:"path" description:"Directory to list"`
	Recursive  bool   `json:"recursive,omitempty" description:"Recurse into subdirectories"`
	MaxEntries int    `json:"max_entries,omitempty" description:"Maximum entries to return"`
}

// ListEntry represents a single file/directory entry
type ListEntry struct {
	Path       string `json:"path" description:"Absolute path"`
	Name       string `json:"name" description:"Base filename"`
	Kind       string `json:"kind" description:"Type: file/dir/symlink/other"`
	Size       int64  `json:"size" description:"Size in bytes"`
	Mode       string `json:"mode" description:"Permissions in octal"`
	ModifiedAt string `json:"modified_at" description:"Last modified time (RFC3339)"`
}

// ListResult contains directory listing results
type ListResult struct {
	Entries   []ListEntry `json:"entries" description:"Directory entries"`
	Truncated bool        `json:"truncated" description:"Whether the entry cap was hit"`
}

// MkdirArgs defines parameters for creating directories
type MkdirArgs struct {
	Path    string `json:"path" description:"Directory path to create"`
	Parents bool   `json:"parents,omitempty" description:"Create missing parent directories"`
	Mode    string `json:"mode,omitempty" description:"Directory mode in octal"`
}

// MkdirResult contains directory creation results
type MkdirResult struct {
	Path    string `json:"path" description:"Resolved absolute path created"`
	Created bool   `json:"created" description:"Whether directory was newly created"`
	MetaFields
}

// RemoveArgs defines parameters for removing files and directories
type RemoveArgs struct {
	Path      string `json:"path" description:"File or directory to remove"`
	Recursive bool   `json:"recursive,omitempty" description:"Remove directory contents recursively"`
}

// RemoveResult contains removal results
type RemoveResult struct {
	Path    string `json:"path" description:"Resolved absolute path removed"`
	Removed bool   `json:"removed" description:"Whether the entry was removed"`
}

// GlobArgs defines parameters for glob pattern matching
type GlobArgs struct {
	Pattern    string `json:"pattern" description:"Glob pattern relative to each searched root (supports ** for recursion)"`
	Path       string `json:"path,omitempty" description:"Directory to search (default: every boundary root)"`
	MaxResults int    `json:"max_results,omitempty" description:"Maximum matches to return"`
}

// GlobResult contains glob matching results
type GlobResult struct {
	Matches   []string     `json:"matches" description:"Matched absolute paths"`
	Roots     []RootStatus `json:"roots" description:"Per-root walk outcome"`
	Truncated bool         `json:"truncated" description:"Whether the match cap was hit"`
}

// SearchArgs defines parameters for text search
type SearchArgs struct {
	Pattern    string `json:"pattern" description:"Text or regex pattern to find"`
	Path       string `json:"path,omitempty" description:"Directory to search (default: every boundary root)"`
	Regex      bool   `json:"regex,omitempty" description:"Interpret pattern as regex"`
	MaxResults int    `json:"max_results,omitempty" description:"Maximum matches to return"`
}

// SearchMatch represents a single search result
type SearchMatch struct {
	Path string `json:"path" description:"Absolute path of the matching file"`
	Line int    `json:"line" description:"Line number of match"`
	Text string `json:"text" description:"Matching line content"`
}

// SearchResult contains text search results
type SearchResult struct {
	Matches      []SearchMatch `json:"matches" description:"Found matches"`
	Roots        []RootStatus  `json:"roots" description:"Per-root walk outcome"`
	FilesScanned int64         `json:"files_scanned" description:"Number of files whose content was scanned"`
	Truncated    bool          `json:"truncated" description:"Whether the match cap was hit"`
}

// RootsArgs defines parameters for listing boundary roots (none).
type RootsArgs struct{}

// RootsResult reports the sandbox configuration.
type RootsResult struct {
	Roots    []string `json:"roots" description:"Canonical boundary directories"`
	WorkRoot string   `json:"work_root" description:"Directory relative paths resolve against"`
}

// ExecArgs defines parameters for running a command
type ExecArgs struct {
	Command   string   `json:"command" description:"Program to run, or a full command line when args is omitted"`
	Args      []string `json:"args,omitempty" description:"Explicit argument vector; skips command-line splitting"`
	Cwd       string   `json:"cwd,omitempty" description:"Working directory inside the sandbox (default: the working root)"`
	TimeoutMs int      `json:"timeout_ms,omitempty" description:"Deadline in milliseconds (default 30000)"`
}

// ExecResult contains command execution results
type ExecResult struct {
	Command    string `json:"command" description:"Program that ran"`
	Stdout     string `json:"stdout" description:"Captured standard output"`
	Stderr     string `json:"stderr" description:"Captured standard error"`
	ExitCode   int    `json:"exit_code" description:"Process exit status"`
	DurationMs int64  `json:"duration_ms" description:"Wall-clock run time"`
}
