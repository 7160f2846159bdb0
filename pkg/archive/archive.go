// Package archive defines the capability the orchestrator consumes from archive
// readers, together with the pieces every reader shares: container kinds,
// entry-name text encodings and safe extraction of entries to disk.
package archive

import (
	"path/filepath"
	"strings"
)

// Archive is an opened container. It is owned by whoever opened it and must be
// closed once its entries have been consumed.
type Archive interface {
	// FullPath returns the resolved path of the archive file.
	FullPath() string
	// Entries returns the entries in the reader's native order.
	Entries() []Entry
	// Close releases the underlying file.
	Close() error
}

// Entry is a single named item inside an Archive.
type Entry interface {
	// FullPath is the display path inside the archive, using '/' separators.
	FullPath() string
	// LowerPath is FullPath folded to lower case for comparisons.
	LowerPath() string
	// Size is the number of bytes Extract writes.
	Size() int64
	// Extract writes the entry beneath dir, keeping its relative path.
	Extract(dir string, overwrite bool) error
}

// Kind identifies the reader family an archive belongs to.
type Kind int

const (
	KindUnknown Kind = iota
	KindBSA          // .bsa, .dat
	KindBA2          // .ba2
)

func (k Kind) String() string {
	switch k {
	case KindBSA:
		return "bsa"
	case KindBA2:
		return "ba2"
	}
	return "unknown"
}

// KindOf selects the archive kind from the file extension of path.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bsa", ".dat":
		return KindBSA
	case ".ba2":
		return KindBA2
	}
	return KindUnknown
}

// NormalizePath converts an archive-native path (backslash separated) into the
// display form used by entries.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimLeft(p, "/")
}

// JoinPath joins a folder and file name into a display path.
func JoinPath(folder, name string) string {
	folder = NormalizePath(folder)
	name = NormalizePath(name)
	if folder == "" || folder == "." {
		return name
	}
	return strings.TrimRight(folder, "/") + "/" + name
}
