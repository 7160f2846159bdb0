// Package bsa reads the "kind A" archive family: Bethesda BSA archives from
// Morrowind through Skyrim Special Edition, and Fallout 2 DAT archives.
package bsa

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"bsab/pkg/archive"

	"github.com/pkg/errors"
)

// ErrUnknownFormat is returned when a file matches none of the supported layouts.
var ErrUnknownFormat = errors.New("unrecognized BSA/DAT container")

// Format identifies the on-disk layout of an opened archive.
type Format int

const (
	FormatTES3 Format = iota // Morrowind
	FormatTES4               // Oblivion, Fallout 3, New Vegas, Skyrim, Skyrim SE
	FormatFallout2           // Fallout 2 DAT
)

func (f Format) String() string {
	switch f {
	case FormatTES3:
		return "tes3"
	case FormatTES4:
		return "tes4"
	case FormatFallout2:
		return "fallout2"
	}
	return "unknown"
}

// Archive is an opened kind-A container.
type Archive struct {
	path    string
	f       *os.File
	size    int64
	format  Format
	version uint32
	entries []archive.Entry
}

// Open reads the directory of the archive at path, decoding names with enc.
func Open(path string, enc archive.TextEncoding) (*Archive, error) {
	full, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", path)
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, errors.Wrap(err, "open archive")
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "stat archive")
	}

	a := &Archive{path: full, f: f, size: info.Size()}
	if err := a.read(info.Size(), enc); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "read %s", filepath.Base(full))
	}
	return a, nil
}

func (a *Archive) read(size int64, enc archive.TextEncoding) error {
	var magic [4]byte
	if _, err := a.f.ReadAt(magic[:], 0); err != nil {
		return errors.Wrap(err, "read magic")
	}

	switch {
	case bytes.Equal(magic[:], []byte(tes4Magic)):
		a.format = FormatTES4
		return a.readTES4(enc)
	case binary.LittleEndian.Uint32(magic[:]) == tes3Version:
		a.format = FormatTES3
		a.version = tes3Version
		return a.readTES3(enc)
	case isFallout2(a.f, size):
		a.format = FormatFallout2
		return a.readFallout2(size, enc)
	}
	return ErrUnknownFormat
}

// FullPath returns the absolute path of the archive file.
func (a *Archive) FullPath() string { return a.path }

// Entries returns the entries in directory order.
func (a *Archive) Entries() []archive.Entry { return a.entries }

// Format reports which layout the archive was read as.
func (a *Archive) Format() Format { return a.format }

// Version is the format version word from the header.
func (a *Archive) Version() uint32 { return a.version }

// Close releases the archive file.
func (a *Archive) Close() error { return a.f.Close() }

// fits reports whether n records of recLen bytes can lie within the file.
// Header counts are checked with it before anything is allocated from them.
func (a *Archive) fits(n uint64, recLen int64) bool {
	return recLen > 0 && n <= uint64(a.size/recLen)
}

// section returns a reader over n bytes of the archive starting at off.
func (a *Archive) section(off, n int64) *io.SectionReader {
	return io.NewSectionReader(a.f, off, n)
}
