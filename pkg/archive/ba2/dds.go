package ba2

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// DXGI formats found in DX10 archives.
const (
	DXGIFormatR8G8B8A8UNorm     = 28
	DXGIFormatR8G8B8A8UNormSRGB = 29
	DXGIFormatR8UNorm           = 61
	DXGIFormatBC1UNorm          = 71
	DXGIFormatBC1UNormSRGB      = 72
	DXGIFormatBC2UNorm          = 74
	DXGIFormatBC2UNormSRGB      = 75
	DXGIFormatBC3UNorm          = 77
	DXGIFormatBC3UNormSRGB      = 78
	DXGIFormatBC4UNorm          = 80
	DXGIFormatBC4SNorm          = 81
	DXGIFormatBC5UNorm          = 83
	DXGIFormatBC5SNorm          = 84
	DXGIFormatB8G8R8A8UNorm     = 87
	DXGIFormatB8G8R8X8UNorm     = 88
	DXGIFormatBC6HUF16          = 95
	DXGIFormatBC7UNorm          = 98
	DXGIFormatBC7UNormSRGB      = 99
)

const (
	ddsMagic = "DDS "

	ddsdCaps        = 0x1
	ddsdHeight      = 0x2
	ddsdWidth       = 0x4
	ddsdPitch       = 0x8
	ddsdPixelFormat = 0x1000
	ddsdMipMapCount = 0x20000
	ddsdLinearSize  = 0x80000

	ddpfAlphaPixels = 0x1
	ddpfFourCC      = 0x4
	ddpfRGB         = 0x40
	ddpfLuminance   = 0x20000

	ddsCapsComplex = 0x8
	ddsCapsTexture = 0x1000
	ddsCapsMipMap  = 0x400000

	ddsCaps2Cubemap = 0xFE00 // cubemap with all six faces

	d3d10ResourceDimensionTexture2D = 3
	d3d10ResourceMiscTextureCube    = 0x4
)

type ddsPixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      uint32
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

type ddsHeader struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       ddsPixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

type ddsHeaderDX10 struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// fourCC packs a four character code the way DDS stores it.
func fourCC(code string) uint32 {
	return binary.LittleEndian.Uint32([]byte(code))
}

// textureInfo is what a DDS header needs to know about a texture.
type textureInfo struct {
	Width, Height uint32
	MipCount      uint32
	Format        uint8
	Cubemap       bool
}

// ddsHeaderFor renders the DDS magic and header(s) for t. Formats with a legacy
// FourCC or bitmask form get a plain header; the rest get the DX10 extension.
func ddsHeaderFor(t textureInfo, atiFourCC bool) ([]byte, error) {
	hdr := ddsHeader{
		Size:        124,
		Flags:       ddsdCaps | ddsdHeight | ddsdWidth | ddsdPixelFormat | ddsdMipMapCount,
		Height:      t.Height,
		Width:       t.Width,
		MipMapCount: t.MipCount,
		Caps:        ddsCapsTexture,
	}
	hdr.PixelFormat.Size = 32
	if t.MipCount > 1 {
		hdr.Caps |= ddsCapsComplex | ddsCapsMipMap
	}
	if t.Cubemap {
		hdr.Caps |= ddsCapsComplex
		hdr.Caps2 = ddsCaps2Cubemap
	}

	linear := func(bytesPerBlock uint32) {
		hdr.Flags |= ddsdLinearSize
		hdr.PitchOrLinearSize = max(1, (t.Width+3)/4) * max(1, (t.Height+3)/4) * bytesPerBlock
	}
	pitch := func(bytesPerPixel uint32) {
		hdr.Flags |= ddsdPitch
		hdr.PitchOrLinearSize = t.Width * bytesPerPixel
	}
	legacy := func(code string) {
		hdr.PixelFormat.Flags = ddpfFourCC
		hdr.PixelFormat.FourCC = fourCC(code)
	}
	var dx10 *ddsHeaderDX10
	extended := func() {
		hdr.PixelFormat.Flags = ddpfFourCC
		hdr.PixelFormat.FourCC = fourCC("DX10")
		dx10 = &ddsHeaderDX10{
			DXGIFormat:        uint32(t.Format),
			ResourceDimension: d3d10ResourceDimensionTexture2D,
			ArraySize:         1,
		}
		if t.Cubemap {
			dx10.MiscFlag = d3d10ResourceMiscTextureCube
		}
	}

	switch t.Format {
	case DXGIFormatBC1UNorm:
		legacy("DXT1")
		linear(8)
	case DXGIFormatBC2UNorm:
		legacy("DXT3")
		linear(16)
	case DXGIFormatBC3UNorm:
		legacy("DXT5")
		linear(16)
	case DXGIFormatBC4UNorm:
		if atiFourCC {
			legacy("ATI1")
		} else {
			legacy("BC4U")
		}
		linear(8)
	case DXGIFormatBC5UNorm:
		if atiFourCC {
			legacy("ATI2")
		} else {
			legacy("BC5U")
		}
		linear(16)
	case DXGIFormatBC1UNormSRGB, DXGIFormatBC4SNorm:
		extended()
		linear(8)
	case DXGIFormatBC2UNormSRGB, DXGIFormatBC3UNormSRGB, DXGIFormatBC5SNorm,
		DXGIFormatBC6HUF16, DXGIFormatBC7UNorm, DXGIFormatBC7UNormSRGB:
		extended()
		linear(16)
	case DXGIFormatR8G8B8A8UNorm:
		hdr.PixelFormat = ddsPixelFormat{Size: 32, Flags: ddpfRGB | ddpfAlphaPixels, RGBBitCount: 32,
			RBitMask: 0x000000FF, GBitMask: 0x0000FF00, BBitMask: 0x00FF0000, ABitMask: 0xFF000000}
		pitch(4)
	case DXGIFormatB8G8R8A8UNorm:
		hdr.PixelFormat = ddsPixelFormat{Size: 32, Flags: ddpfRGB | ddpfAlphaPixels, RGBBitCount: 32,
			RBitMask: 0x00FF0000, GBitMask: 0x0000FF00, BBitMask: 0x000000FF, ABitMask: 0xFF000000}
		pitch(4)
	case DXGIFormatB8G8R8X8UNorm:
		hdr.PixelFormat = ddsPixelFormat{Size: 32, Flags: ddpfRGB, RGBBitCount: 32,
			RBitMask: 0x00FF0000, GBitMask: 0x0000FF00, BBitMask: 0x000000FF}
		pitch(4)
	case DXGIFormatR8G8B8A8UNormSRGB:
		extended()
		pitch(4)
	case DXGIFormatR8UNorm:
		hdr.PixelFormat = ddsPixelFormat{Size: 32, Flags: ddpfLuminance, RGBBitCount: 8, RBitMask: 0xFF}
		pitch(1)
	default:
		return nil, errors.Errorf("unsupported DXGI format %d", t.Format)
	}

	var buf bytes.Buffer
	buf.WriteString(ddsMagic)
	if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
		return nil, errors.Wrap(err, "encode DDS header")
	}
	if dx10 != nil {
		if err := binary.Write(&buf, binary.LittleEndian, dx10); err != nil {
			return nil, errors.Wrap(err, "encode DX10 header")
		}
	}
	return buf.Bytes(), nil
}
