package archive

import (
	"strings"
	"unicode/utf16"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// ErrInvalidEncodingName is returned by ParseTextEncoding for unknown names.
var ErrInvalidEncodingName = errors.New("invalid encoding name")

// TextEncoding selects how entry names stored in an archive are decoded.
type TextEncoding int

const (
	UTF7 TextEncoding = iota
	System
	ASCII
	Unicode
	UTF32
	UTF8
)

var encodingNames = []string{"utf7", "system", "ascii", "unicode", "utf32", "utf8"}

// EncodingNames lists the accepted encoding names in their documented order.
func EncodingNames() []string {
	return append([]string(nil), encodingNames...)
}

// ParseTextEncoding maps a case-insensitive name to a TextEncoding.
func ParseTextEncoding(name string) (TextEncoding, error) {
	n := strings.ToLower(name)
	for i, candidate := range encodingNames {
		if candidate == n {
			return TextEncoding(i), nil
		}
	}
	return UTF7, errors.Wrapf(ErrInvalidEncodingName, "%q (want one of %s)", name, strings.Join(encodingNames, ", "))
}

func (e TextEncoding) String() string {
	if e < 0 || int(e) >= len(encodingNames) {
		return "unknown"
	}
	return encodingNames[e]
}

// Decode converts raw name bytes into a string. Undecodable input never fails;
// it degrades to replacement characters the way the underlying decoder does.
func (e TextEncoding) Decode(b []byte) string {
	switch e {
	case ASCII:
		return decodeASCII(b)
	case UTF7:
		return decodeUTF7(b)
	}

	var enc encoding.Encoding
	switch e {
	case System:
		enc = charmap.Windows1252
	case Unicode:
		enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case UTF32:
		enc = utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)
	default:
		enc = unicode.UTF8
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

func decodeASCII(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c >= 0x80 {
			sb.WriteByte('?')
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

const utf7Base64 = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func utf7Value(c byte) int {
	return strings.IndexByte(utf7Base64, c)
}

// decodeUTF7 decodes RFC 2152 text. Bytes outside 7-bit ASCII are taken as
// Latin-1 code points.
func decodeUTF7(b []byte) string {
	var (
		out   []rune
		units []uint16
		bits  uint32
		nbits uint
	)
	flush := func() {
		if len(units) > 0 {
			out = append(out, utf16.Decode(units)...)
			units = units[:0]
		}
		bits, nbits = 0, 0
	}

	for i := 0; i < len(b); i++ {
		c := b[i]
		if c != '+' {
			out = append(out, rune(c))
			continue
		}
		if i+1 < len(b) && b[i+1] == '-' {
			out = append(out, '+')
			i++
			continue
		}

		// shifted sequence
		i++
		for ; i < len(b); i++ {
			v := utf7Value(b[i])
			if v < 0 {
				break
			}
			bits = bits<<6 | uint32(v)
			nbits += 6
			if nbits >= 16 {
				nbits -= 16
				units = append(units, uint16(bits>>nbits))
				bits &= 1<<nbits - 1
			}
		}
		flush()
		if i < len(b) && b[i] != '-' {
			i--
		}
	}
	return string(out)
}
