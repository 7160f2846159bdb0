package bsa

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"bsab/pkg/archive"

	"github.com/pkg/errors"
)

const (
	tes4Magic = "BSA\x00"

	VersionOblivion = 0x67
	VersionFallout3 = 0x68 // also Skyrim LE
	VersionSkyrimSE = 0x69

	flagDirNames   = 0x1
	flagFileNames  = 0x2
	flagCompressed = 0x4
	flagEmbedNames = 0x100

	sizeToggleCompression = 1 << 30
	sizeMask              = 0x3FFFFFFF
)

type tes4Header struct {
	Magic          [4]byte
	Version        uint32
	FolderOffset   uint32
	Flags          uint32
	FolderCount    uint32
	FileCount      uint32
	FolderNamesLen uint32
	FileNamesLen   uint32
	FileFlags      uint16
	_              uint16
}

type tes4Folder struct {
	Hash   uint64
	Count  uint32
	Offset uint32
}

type tes4FolderSE struct {
	Hash   uint64
	Count  uint32
	_      uint32
	Offset uint64
}

type tes4File struct {
	Hash   uint64
	Size   uint32
	Offset uint32
}

func (a *Archive) reader(off int64) *bufio.Reader {
	return bufio.NewReader(io.NewSectionReader(a.f, off, math.MaxInt64-off))
}

// readTES4 reads the folder and file directory of Oblivion-era and later archives.
func (a *Archive) readTES4(enc archive.TextEncoding) error {
	br := a.reader(0)

	var hdr tes4Header
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return errors.Wrap(err, "read header")
	}
	switch hdr.Version {
	case VersionOblivion, VersionFallout3, VersionSkyrimSE:
	default:
		return errors.Errorf("unsupported BSA version 0x%x", hdr.Version)
	}
	a.version = hdr.Version

	folderLen := int64(16)
	if hdr.Version == VersionSkyrimSE {
		folderLen = 24
	}
	tables := uint64(hdr.FolderCount)*uint64(folderLen) + uint64(hdr.FileCount)*16 + uint64(hdr.FileNamesLen)
	if !a.fits(tables, 1) {
		return errors.Errorf("%d folders and %d files exceed the archive size", hdr.FolderCount, hdr.FileCount)
	}

	br = a.reader(int64(hdr.FolderOffset))
	counts := make([]uint32, hdr.FolderCount)
	var total uint64
	for i := range counts {
		if hdr.Version == VersionSkyrimSE {
			var rec tes4FolderSE
			if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
				return errors.Wrapf(err, "read folder record %d", i)
			}
			counts[i] = rec.Count
		} else {
			var rec tes4Folder
			if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
				return errors.Wrapf(err, "read folder record %d", i)
			}
			counts[i] = rec.Count
		}
		total += uint64(counts[i])
	}
	if total != uint64(hdr.FileCount) {
		return errors.Errorf("folders hold %d files, header says %d", total, hdr.FileCount)
	}

	type pending struct {
		folder string
		rec    tes4File
	}
	files := make([]pending, 0, hdr.FileCount)
	for i, count := range counts {
		var folder string
		if hdr.Flags&flagDirNames != 0 {
			n, err := br.ReadByte()
			if err != nil {
				return errors.Wrapf(err, "read folder name length %d", i)
			}
			name := make([]byte, n)
			if _, err := io.ReadFull(br, name); err != nil {
				return errors.Wrapf(err, "read folder name %d", i)
			}
			folder = enc.Decode(bytes.TrimRight(name, "\x00"))
		}
		for j := uint32(0); j < count; j++ {
			var rec tes4File
			if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
				return errors.Wrapf(err, "read file record %d of folder %q", j, folder)
			}
			files = append(files, pending{folder: folder, rec: rec})
		}
	}

	var names [][]byte
	if hdr.Flags&flagFileNames != 0 {
		block := make([]byte, hdr.FileNamesLen)
		if _, err := io.ReadFull(br, block); err != nil {
			return errors.Wrap(err, "read file name block")
		}
		names = bytes.Split(bytes.TrimRight(block, "\x00"), []byte{0})
		if len(names) < len(files) {
			return errors.Errorf("file name block holds %d names for %d files", len(names), len(files))
		}
	}

	defaultCompressed := hdr.Flags&flagCompressed != 0
	embedNames := hdr.Version != VersionOblivion && hdr.Flags&flagEmbedNames != 0

	packed := codecZlib
	if hdr.Version == VersionSkyrimSE {
		packed = codecLZ4Frame
	}

	a.entries = make([]archive.Entry, 0, len(files))
	for i, p := range files {
		name := fmt.Sprintf("%016x", p.rec.Hash)
		if names != nil {
			name = enc.Decode(names[i])
		}

		e := newEntry(a, archive.JoinPath(p.folder, name))
		e.offset = int64(p.rec.Offset)
		e.stored = int64(p.rec.Size & sizeMask)
		e.embedName = embedNames

		compressed := defaultCompressed
		if p.rec.Size&sizeToggleCompression != 0 {
			compressed = !compressed
		}
		if compressed {
			e.codec = packed
			e.sizePrefix = true
		}
		a.entries = append(a.entries, e)
	}
	return nil
}
