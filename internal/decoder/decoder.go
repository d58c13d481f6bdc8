// Package decoder reads the raw interleaved IQ sample formats common to
// SDR captures into the pipeline's normalized iq.Buffer (spec §4.A,
// "Source adapters"). Only the fixed-point and float32 interleaved
// layouts are handled here — container formats that need their own
// parser (WAV, MATLAB .mat, SigMF) are out of scope; see DESIGN.md.
package decoder

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/sigproto/awre/internal/iq"
)

// Format identifies the on-disk sample encoding.
type Format string

const (
	FormatComplexFloat32      Format = "complex_f32"
	FormatComplexInt8Signed   Format = "complex_i8s"
	FormatComplexInt8Unsigned Format = "complex_i8u"
	FormatComplexInt16Signed  Format = "complex_i16s"
)

// extensions maps the file extensions URH's own loader recognizes for
// these four encodings onto Format.
var extensions = map[string]Format{
	".complex":    FormatComplexFloat32,
	".cs8":        FormatComplexInt8Signed,
	".complex16s": FormatComplexInt8Signed,
	".cu8":        FormatComplexInt8Unsigned,
	".complex16u": FormatComplexInt8Unsigned,
	".complex32s": FormatComplexInt16Signed,
}

// DetectFormat maps a file extension (with or without the leading dot)
// to the Format it encodes, if recognized.
func DetectFormat(ext string) (Format, bool) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	f, ok := extensions[strings.ToLower(ext)]
	return f, ok
}

// Decode reads all of r as interleaved IQ samples in the given format
// and returns a normalized Buffer. The integer formats are scaled into
// [-1, 1]; float32 samples are passed through unscaled.
func Decode(r io.Reader, format Format) (iq.Buffer, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return iq.Buffer{}, fmt.Errorf("decoder: reading samples: %w", err)
	}

	switch format {
	case FormatComplexFloat32:
		return decodeFloat32(raw)
	case FormatComplexInt8Signed:
		return decodeInt8(raw, true)
	case FormatComplexInt8Unsigned:
		return decodeInt8(raw, false)
	case FormatComplexInt16Signed:
		return decodeInt16(raw)
	default:
		return iq.Buffer{}, fmt.Errorf("decoder: unsupported format %q", format)
	}
}

func decodeFloat32(raw []byte) (iq.Buffer, error) {
	if len(raw)%8 != 0 {
		return iq.Buffer{}, fmt.Errorf("decoder: complex float32 stream length %d not a multiple of 8", len(raw))
	}
	n := len(raw) / 8
	i := make([]float64, n)
	q := make([]float64, n)
	for k := 0; k < n; k++ {
		iBits := binary.LittleEndian.Uint32(raw[k*8:])
		qBits := binary.LittleEndian.Uint32(raw[k*8+4:])
		i[k] = float64(math.Float32frombits(iBits))
		q[k] = float64(math.Float32frombits(qBits))
	}
	return iq.FromComplex(i, q)
}

func decodeInt8(raw []byte, signed bool) (iq.Buffer, error) {
	if len(raw)%2 != 0 {
		return iq.Buffer{}, fmt.Errorf("decoder: 8-bit complex stream length %d not even", len(raw))
	}
	n := len(raw) / 2
	i := make([]float64, n)
	q := make([]float64, n)
	for k := 0; k < n; k++ {
		i[k] = normalizeInt8(raw[k*2], signed)
		q[k] = normalizeInt8(raw[k*2+1], signed)
	}
	return iq.FromComplex(i, q)
}

func normalizeInt8(b byte, signed bool) float64 {
	if signed {
		return float64(int8(b)) / 128.0
	}
	return (float64(b) - 127.5) / 127.5
}

func decodeInt16(raw []byte) (iq.Buffer, error) {
	if len(raw)%4 != 0 {
		return iq.Buffer{}, fmt.Errorf("decoder: 16-bit complex stream length %d not a multiple of 4", len(raw))
	}
	n := len(raw) / 4
	i := make([]float64, n)
	q := make([]float64, n)
	for k := 0; k < n; k++ {
		iv := int16(binary.LittleEndian.Uint16(raw[k*4:]))
		qv := int16(binary.LittleEndian.Uint16(raw[k*4+2:]))
		i[k] = float64(iv) / 32768.0
		q[k] = float64(qv) / 32768.0
	}
	return iq.FromComplex(i, q)
}
