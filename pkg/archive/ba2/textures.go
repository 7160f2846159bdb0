package ba2

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"bsab/pkg/archive"

	"github.com/pkg/errors"
)

type textureRecord struct {
	NameHash        uint32
	Ext             [4]byte
	DirHash         uint32
	_               uint8
	NumChunks       uint8
	ChunkHeaderSize uint16
	Height          uint16
	Width           uint16
	NumMips         uint8
	Format          uint8
	Cubemap         uint8
	TileMode        uint8
}

type textureChunk struct {
	Offset       uint64
	PackedSize   uint32
	UnpackedSize uint32
	StartMip     uint16
	EndMip       uint16
	Align        uint32
}

// TextureEntry is a texture in a DX10 archive. Its mip chunks are written
// behind a generated DDS header.
type TextureEntry struct {
	base
	info   textureInfo
	chunks []chunk
	header []byte
	err    error
}

// Size returns the size of the rebuilt DDS file.
func (e *TextureEntry) Size() int64 {
	n := int64(len(e.header))
	for _, c := range e.chunks {
		n += int64(c.UnpackedSize)
	}
	return n
}

// Format returns the DXGI format of the texture.
func (e *TextureEntry) Format() uint8 { return e.info.Format }

// Extract writes the DDS file beneath dir.
func (e *TextureEntry) Extract(dir string, overwrite bool) error {
	if e.err != nil {
		return errors.Wrapf(e.err, "rebuild %s", e.path)
	}
	readers := []io.Reader{bytes.NewReader(e.header)}
	for _, c := range e.chunks {
		r, err := e.open(c)
		if err != nil {
			return err
		}
		readers = append(readers, r)
	}
	return archive.WriteFile(dir, e.path, overwrite, io.MultiReader(readers...))
}

func (a *Archive) readTextures(br *bufio.Reader, names []string) error {
	a.entries = make([]archive.Entry, 0, len(names))
	for i, name := range names {
		var rec textureRecord
		if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
			return errors.Wrapf(err, "read texture record %d", i)
		}

		e := &TextureEntry{
			base: newBase(a, name),
			info: textureInfo{
				Width:    uint32(rec.Width),
				Height:   uint32(rec.Height),
				MipCount: uint32(rec.NumMips),
				Format:   rec.Format,
				Cubemap:  rec.Cubemap&1 != 0,
			},
			chunks: make([]chunk, 0, rec.NumChunks),
		}
		for j := uint8(0); j < rec.NumChunks; j++ {
			var c textureChunk
			if err := binary.Read(br, binary.LittleEndian, &c); err != nil {
				return errors.Wrapf(err, "read chunk %d of texture %d", j, i)
			}
			e.chunks = append(e.chunks, chunk{Offset: c.Offset, PackedSize: c.PackedSize, UnpackedSize: c.UnpackedSize})
		}

		// An unknown format only fails the entry, not the archive.
		e.header, e.err = ddsHeaderFor(e.info, a.opts.ATIFourCC)
		a.entries = append(a.entries, e)
	}
	return nil
}
