package bsa

import (
	"encoding/binary"
	"io"
	"os"

	"bsab/pkg/archive"

	"github.com/pkg/errors"
)

const (
	maxFallout2NameLen = 1024

	// name length word, at least one name byte, then the record
	minFallout2EntryLen = 4 + 1 + 13
)

type fallout2File struct {
	Type       uint8
	RealSize   uint32
	PackedSize uint32
	Offset     uint32
}

// isFallout2 checks the DAT trailer: the last word repeats the file size.
func isFallout2(f *os.File, size int64) bool {
	if size < 12 {
		return false
	}
	var tail [8]byte
	if _, err := f.ReadAt(tail[:], size-8); err != nil {
		return false
	}
	treeSize := int64(binary.LittleEndian.Uint32(tail[0:4]))
	dataSize := int64(binary.LittleEndian.Uint32(tail[4:8]))
	return dataSize == size && treeSize >= 4 && treeSize+8 <= size
}

// readFallout2 reads the directory tree stored at the end of a Fallout 2 DAT.
func (a *Archive) readFallout2(size int64, enc archive.TextEncoding) error {
	var tail [8]byte
	if _, err := a.f.ReadAt(tail[:], size-8); err != nil {
		return errors.Wrap(err, "read trailer")
	}
	treeSize := int64(binary.LittleEndian.Uint32(tail[0:4]))

	br := a.reader(size - 8 - treeSize)
	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return errors.Wrap(err, "read file count")
	}
	if uint64(count)*minFallout2EntryLen > uint64(treeSize) {
		return errors.Errorf("%d files do not fit a %d byte directory tree", count, treeSize)
	}

	a.entries = make([]archive.Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		var n uint32
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return errors.Wrapf(err, "read name length %d", i)
		}
		if n == 0 || n > maxFallout2NameLen {
			return errors.Errorf("name length %d of file %d is out of range", n, i)
		}
		name := make([]byte, n)
		if _, err := io.ReadFull(br, name); err != nil {
			return errors.Wrapf(err, "read name %d", i)
		}
		var rec fallout2File
		if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
			return errors.Wrapf(err, "read file record %d", i)
		}

		e := newEntry(a, enc.Decode(name))
		e.offset = int64(rec.Offset)
		e.size = int64(rec.RealSize)
		e.stored = int64(rec.RealSize)
		if rec.Type&1 != 0 {
			e.codec = codecZlib
			e.stored = int64(rec.PackedSize)
		}
		a.entries = append(a.entries, e)
	}
	return nil
}
