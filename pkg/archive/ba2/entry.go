package ba2

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"strings"

	"bsab/pkg/archive"

	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

type generalRecord struct {
	NameHash     uint32
	Ext          [4]byte
	DirHash      uint32
	Flags        uint32
	Offset       uint64
	PackedSize   uint32
	UnpackedSize uint32
	Align        uint32
}

// An LZ4 block expands at most 255 times.
const maxLZ4Ratio = 255

type chunk struct {
	Offset       uint64
	PackedSize   uint32
	UnpackedSize uint32
}

type base struct {
	a     *Archive
	path  string
	lower string
}

func newBase(a *Archive, name string) base {
	path := archive.NormalizePath(name)
	return base{a: a, path: path, lower: strings.ToLower(path)}
}

// FullPath returns the path inside the archive.
func (b *base) FullPath() string { return b.path }

// LowerPath returns the lower-cased path inside the archive.
func (b *base) LowerPath() string { return b.lower }

// open returns the uncompressed bytes of one stored chunk.
func (b *base) open(c chunk) (io.Reader, error) {
	stored := int64(c.PackedSize)
	if stored == 0 {
		stored = int64(c.UnpackedSize)
	}
	if c.Offset > uint64(b.a.size) || stored > b.a.size-int64(c.Offset) {
		return nil, errors.Errorf("chunk of %s lies outside the archive", b.path)
	}

	if c.PackedSize == 0 {
		sr := io.NewSectionReader(b.a.f, int64(c.Offset), int64(c.UnpackedSize))
		return archive.ExactReader(sr, int64(c.UnpackedSize)), nil
	}

	sr := io.NewSectionReader(b.a.f, int64(c.Offset), int64(c.PackedSize))
	if b.a.compression == CompressionLZ4 {
		if uint64(c.UnpackedSize) > uint64(c.PackedSize)*maxLZ4Ratio {
			return nil, errors.Errorf("lz4 chunk of %s claims %d bytes from %d", b.path, c.UnpackedSize, c.PackedSize)
		}
		src := make([]byte, c.PackedSize)
		if _, err := io.ReadFull(sr, src); err != nil {
			return nil, errors.Wrapf(err, "read chunk of %s", b.path)
		}
		dst := make([]byte, c.UnpackedSize)
		n, err := lz4.UncompressBlock(src, dst)
		if err != nil {
			return nil, errors.Wrapf(err, "lz4 chunk of %s", b.path)
		}
		if n != len(dst) {
			return nil, errors.Errorf("lz4 chunk of %s: expected %d bytes, got %d", b.path, len(dst), n)
		}
		return bytes.NewReader(dst), nil
	}

	zr, err := zlib.NewReader(sr)
	if err != nil {
		return nil, errors.Wrapf(err, "zlib header for %s", b.path)
	}
	return archive.ExactReader(zr, int64(c.UnpackedSize)), nil
}

// GeneralEntry is a plain file in a GNRL archive.
type GeneralEntry struct {
	base
	data chunk
}

// Size returns the uncompressed size.
func (e *GeneralEntry) Size() int64 { return int64(e.data.UnpackedSize) }

// Compressed reports whether the stored payload is compressed.
func (e *GeneralEntry) Compressed() bool { return e.data.PackedSize != 0 }

// Extract writes the file beneath dir.
func (e *GeneralEntry) Extract(dir string, overwrite bool) error {
	r, err := e.open(e.data)
	if err != nil {
		return err
	}
	return archive.WriteFile(dir, e.path, overwrite, r)
}

func (a *Archive) readGeneral(br *bufio.Reader, names []string) error {
	a.entries = make([]archive.Entry, 0, len(names))
	for i, name := range names {
		var rec generalRecord
		if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
			return errors.Wrapf(err, "read file record %d", i)
		}
		a.entries = append(a.entries, &GeneralEntry{
			base: newBase(a, name),
			data: chunk{Offset: rec.Offset, PackedSize: rec.PackedSize, UnpackedSize: rec.UnpackedSize},
		})
	}
	return nil
}
