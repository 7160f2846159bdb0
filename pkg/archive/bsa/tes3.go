package bsa

import (
	"bytes"
	"encoding/binary"
	"io"

	"bsab/pkg/archive"

	"github.com/pkg/errors"
)

const tes3Version = 0x100

type tes3Header struct {
	Version    uint32
	HashOffset uint32
	FileCount  uint32
}

type tes3File struct {
	Size   uint32
	Offset uint32
}

// readTES3 reads a Morrowind archive. Its records are never compressed.
func (a *Archive) readTES3(enc archive.TextEncoding) error {
	br := a.reader(0)

	var hdr tes3Header
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return errors.Wrap(err, "read header")
	}

	if !a.fits(uint64(hdr.FileCount), 12) || int64(hdr.HashOffset) > a.size {
		return errors.Errorf("file count %d and hash offset %d exceed the archive size", hdr.FileCount, hdr.HashOffset)
	}
	records := make([]tes3File, hdr.FileCount)
	if err := binary.Read(br, binary.LittleEndian, records); err != nil {
		return errors.Wrap(err, "read file records")
	}
	nameOffsets := make([]uint32, hdr.FileCount)
	if err := binary.Read(br, binary.LittleEndian, nameOffsets); err != nil {
		return errors.Wrap(err, "read name offsets")
	}

	tableLen := int64(hdr.FileCount) * 12
	if int64(hdr.HashOffset) < tableLen {
		return errors.Errorf("hash offset %d overlaps the file table", hdr.HashOffset)
	}
	block := make([]byte, int64(hdr.HashOffset)-tableLen)
	if _, err := io.ReadFull(br, block); err != nil {
		return errors.Wrap(err, "read name block")
	}

	dataStart := 12 + int64(hdr.HashOffset) + int64(hdr.FileCount)*8

	a.entries = make([]archive.Entry, 0, hdr.FileCount)
	for i, rec := range records {
		off := nameOffsets[i]
		if int(off) >= len(block) {
			return errors.Errorf("name offset %d of file %d is out of range", off, i)
		}
		name := block[off:]
		if end := bytes.IndexByte(name, 0); end >= 0 {
			name = name[:end]
		}

		e := newEntry(a, enc.Decode(name))
		e.offset = dataStart + int64(rec.Offset)
		e.stored = int64(rec.Size)
		e.size = int64(rec.Size)
		a.entries = append(a.entries, e)
	}
	return nil
}
