// Package ba2 reads the "kind B" archive family: Bethesda BA2 archives from
// Fallout 4 onwards, holding either general files (GNRL) or textures (DX10)
// that are rebuilt into DDS files on extraction.
package ba2

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"

	"bsab/pkg/archive"

	"github.com/pkg/errors"
)

const (
	magic = "BTDX"

	TypeGeneral  = "GNRL"
	TypeTextures = "DX10"

	CompressionZlib = 0
	CompressionLZ4  = 3

	maxNameLen = 1024

	generalRecordLen = 36
	textureRecordLen = 24
)

// ErrNotBA2 is returned when the file does not start with the BA2 magic.
var ErrNotBA2 = errors.New("not a BA2 archive")

// Options tune how entries are materialized.
type Options struct {
	// ATIFourCC writes ATI1/ATI2 instead of BC4U/BC5U in DDS headers.
	ATIFourCC bool
}

type header struct {
	Magic           [4]byte
	Version         uint32
	Type            [4]byte
	FileCount       uint32
	NameTableOffset uint64
}

// Archive is an opened BA2 archive.
type Archive struct {
	path        string
	f           *os.File
	size        int64
	version     uint32
	typ         string
	compression uint32
	opts        Options
	entries     []archive.Entry
}

// Open reads the file table and name table of the BA2 archive at path.
func Open(path string, enc archive.TextEncoding, opts Options) (*Archive, error) {
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

	a := &Archive{path: full, f: f, size: info.Size(), opts: opts}
	if err := a.read(enc); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "read %s", filepath.Base(full))
	}
	return a, nil
}

func (a *Archive) reader(off int64) *bufio.Reader {
	return bufio.NewReader(io.NewSectionReader(a.f, off, math.MaxInt64-off))
}

func (a *Archive) read(enc archive.TextEncoding) error {
	br := a.reader(0)

	var hdr header
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return errors.Wrap(err, "read header")
	}
	if string(hdr.Magic[:]) != magic {
		return errors.Wrapf(ErrNotBA2, "magic %q", string(hdr.Magic[:]))
	}
	switch hdr.Version {
	case 1, 7, 8:
	case 2, 3:
		// unknown 8 bytes, then for v3 the compression method
		if _, err := br.Discard(8); err != nil {
			return errors.Wrap(err, "read extended header")
		}
		if hdr.Version == 3 {
			if err := binary.Read(br, binary.LittleEndian, &a.compression); err != nil {
				return errors.Wrap(err, "read compression method")
			}
		}
	default:
		return errors.Errorf("unsupported BA2 version %d", hdr.Version)
	}
	if a.compression != CompressionZlib && a.compression != CompressionLZ4 {
		return errors.Errorf("unsupported compression method %d", a.compression)
	}
	a.version = hdr.Version
	a.typ = string(hdr.Type[:])

	recLen := int64(generalRecordLen)
	switch a.typ {
	case TypeGeneral:
	case TypeTextures:
		recLen = textureRecordLen
	default:
		return errors.Errorf("unsupported BA2 type %q", a.typ)
	}
	// every file has a record and a two byte name length
	if uint64(hdr.FileCount) > uint64(a.size/(recLen+2)) {
		return errors.Errorf("%d files exceed the archive size", hdr.FileCount)
	}

	names, err := a.readNames(int64(hdr.NameTableOffset), hdr.FileCount, enc)
	if err != nil {
		return err
	}

	if a.typ == TypeTextures {
		return a.readTextures(br, names)
	}
	return a.readGeneral(br, names)
}

func (a *Archive) readNames(off int64, count uint32, enc archive.TextEncoding) ([]string, error) {
	br := a.reader(off)
	names := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		var n uint16
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return nil, errors.Wrapf(err, "read name length %d", i)
		}
		if n > maxNameLen {
			return nil, errors.Errorf("name length %d of file %d is out of range", n, i)
		}
		name := make([]byte, n)
		if _, err := io.ReadFull(br, name); err != nil {
			return nil, errors.Wrapf(err, "read name %d", i)
		}
		names = append(names, enc.Decode(name))
	}
	return names, nil
}

// FullPath returns the absolute path of the archive file.
func (a *Archive) FullPath() string { return a.path }

// Entries returns the entries in file table order.
func (a *Archive) Entries() []archive.Entry { return a.entries }

// Type returns GNRL or DX10.
func (a *Archive) Type() string { return a.typ }

// Version is the header version.
func (a *Archive) Version() uint32 { return a.version }

// Close releases the archive file.
func (a *Archive) Close() error { return a.f.Close() }
