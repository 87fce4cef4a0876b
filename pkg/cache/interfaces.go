package cache

// Manager defines the interface for download cache operations.
type Manager interface {
	Clean(options CleanOptions) (*CleanResult, error)
	GetInfo() (*Info, error)
	GetDirectory() string
}

// CleanOptions specifies what to clean from the download directory.
// With neither flag set everything is cleaned.
type CleanOptions struct {
	All      bool
	Archives bool // downloaded {name}-{version}.tar files
	Sources  bool // unpacked {name}-{version}/ directories
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	TotalFreed   int64
	ArchiveFreed int64
	SourceFreed  int64
}

// Info represents download cache information.
type Info struct {
	Directory    string
	TotalSize    int64
	ArchiveSize  int64
	ArchiveFiles int
	SourceSize   int64
	SourceDirs   int
}
