package bsa

import (
	"compress/zlib"
	"encoding/binary"
	"io"
	"strings"

	"bsab/pkg/archive"

	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

type codec int

const (
	codecNone codec = iota
	codecZlib
	codecLZ4Frame
)

// Entry is a file stored in a kind-A archive.
type Entry struct {
	a     *Archive
	path  string
	lower string

	offset     int64 // start of the stored record
	stored     int64 // bytes on disk, including embedded name and size prefix
	size       int64 // uncompressed size, -1 until known
	codec      codec
	embedName  bool
	sizePrefix bool
}

func newEntry(a *Archive, path string) *Entry {
	path = archive.NormalizePath(path)
	return &Entry{a: a, path: path, lower: strings.ToLower(path), size: -1}
}

// FullPath returns the path inside the archive.
func (e *Entry) FullPath() string { return e.path }

// LowerPath returns the lower-cased path inside the archive.
func (e *Entry) LowerPath() string { return e.lower }

// Size returns the uncompressed size. Compressed TES4 records carry it in
// front of the payload, so it is read on first use.
func (e *Entry) Size() int64 {
	if e.size < 0 {
		_, n, err := e.locate()
		if err != nil {
			return e.stored
		}
		e.size = n
	}
	return e.size
}

// Compressed reports whether the stored payload is compressed.
func (e *Entry) Compressed() bool { return e.codec != codecNone }

// Extract decompresses the entry into dir.
func (e *Entry) Extract(dir string, overwrite bool) error {
	r, err := e.Open()
	if err != nil {
		return err
	}
	return archive.WriteFile(dir, e.path, overwrite, r)
}

// Open returns a reader over the uncompressed entry contents.
func (e *Entry) Open() (io.Reader, error) {
	sr, size, err := e.locate()
	if err != nil {
		return nil, err
	}

	switch e.codec {
	case codecZlib:
		zr, err := zlib.NewReader(sr)
		if err != nil {
			return nil, errors.Wrapf(err, "zlib header for %s", e.path)
		}
		return archive.ExactReader(zr, size), nil
	case codecLZ4Frame:
		return archive.ExactReader(lz4.NewReader(sr), size), nil
	}
	return archive.ExactReader(sr, size), nil
}

// locate skips the record prefix and returns the payload section along with
// the uncompressed size.
func (e *Entry) locate() (*io.SectionReader, int64, error) {
	off, left := e.offset, e.stored

	if e.embedName {
		var n [1]byte
		if _, err := e.a.f.ReadAt(n[:], off); err != nil {
			return nil, 0, errors.Wrapf(err, "read embedded name of %s", e.path)
		}
		off += 1 + int64(n[0])
		left -= 1 + int64(n[0])
	}

	size := e.size
	if e.sizePrefix {
		var buf [4]byte
		if _, err := e.a.f.ReadAt(buf[:], off); err != nil {
			return nil, 0, errors.Wrapf(err, "read original size of %s", e.path)
		}
		size = int64(binary.LittleEndian.Uint32(buf[:]))
		off += 4
		left -= 4
	}
	if left < 0 {
		return nil, 0, errors.Errorf("record of %s is truncated", e.path)
	}
	if size < 0 {
		size = left
	}
	return e.a.section(off, left), size, nil
}
