package server

const (
	maxSniffBytes = 1 << 20  // 1 MiB for MIME/encoding detection
	maxHashBytes  = 32 << 20 // 32 MiB hashing cap

	defaultReadMaxBytes     = 64 * 1024
	defaultPeekMaxBytes     = 4 * 1024
	defaultListMaxEntries   = 1000
	defaultGlobMaxResults   = 1000
	defaultSearchMaxResults = 100

	maxSearchFileBytes = 100 << 20 // files larger than this are skipped by fs_search
	maxSearchLineRunes = 500       // displayed match lines are truncated past this
)
