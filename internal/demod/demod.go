// Package demod slices a demod stream into bit vectors using the
// parameters estimated upstream (spec §4.H), and defines the immutable
// Message type (spec §3) with its hex/ascii derived views, grounded on the
// teacher's immutable-derived-view style (internal/spectrum.SpectralPoint).
package demod

import (
	"strings"

	"github.com/sigproto/awre/internal/segment"
)

// Message is an immutable demodulated message: a bitstring plus the
// silence (in samples) that followed it, along with its hex/ascii views.
type Message struct {
	Bits  string `json:"bits"`
	Hex   string `json:"hex"`
	ASCII string `json:"ascii"`
	Pause int    `json:"pause"`
}

// New builds a Message, computing its hex and ascii views as pure
// functions of bits (spec §3, P6).
func New(bits string, pause int) Message {
	return Message{
		Bits:  bits,
		Hex:   HexView(bits),
		ASCII: ASCIIView(bits),
		Pause: pause,
	}
}

// HexView encodes bits as big-endian nibbles, right-padding with zero bits
// to a nibble boundary.
func HexView(bits string) string {
	padded := bits
	if rem := len(padded) % 4; rem != 0 {
		padded += strings.Repeat("0", 4-rem)
	}

	var sb strings.Builder
	for i := 0; i < len(padded); i += 4 {
		nibble := parseBits(padded[i : i+4])
		sb.WriteByte(hexDigit(nibble))
	}
	return sb.String()
}

// ASCIIView maps each full byte of bits to its printable character,
// substituting '.' for non-printables. Trailing bits that don't complete a
// byte are ignored.
func ASCIIView(bits string) string {
	var sb strings.Builder
	for i := 0; i+8 <= len(bits); i += 8 {
		b := byte(parseBits(bits[i : i+8]))
		if b >= 0x20 && b < 0x7f {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

func parseBits(s string) uint64 {
	var v uint64
	for _, c := range s {
		v <<= 1
		if c == '1' {
			v |= 1
		}
	}
	return v
}

func hexDigit(v uint64) byte {
	if v < 10 {
		return byte('0' + v)
	}
	return byte('a' + (v - 10))
}

// Demodulate quantizes stream within each plateau against center, slices
// it into bitLength-wide symbol windows, and emits one Message per plateau
// that demodulates cleanly. A plateau whose majority votes disagree by
// more than tolerance on more than maxAmbiguousFraction of its symbols is
// dropped (spec §4.H error semantics).
func Demodulate(stream []float64, plateaus []segment.Plateau, center float64, bitLength, tolerance int, maxAmbiguousFraction float64) []Message {
	messages := make([]Message, 0, len(plateaus))
	for _, p := range plateaus {
		end := p.End
		if end > len(stream) {
			end = len(stream)
		}
		if p.Start >= end {
			continue
		}
		seg := stream[p.Start:end]

		bits, ok := demodulatePlateau(seg, center, bitLength, tolerance, maxAmbiguousFraction)
		if !ok {
			continue
		}
		messages = append(messages, New(bits, p.Pause))
	}
	return messages
}

func demodulatePlateau(seg []float64, center float64, bitLength, tolerance int, maxAmbiguousFraction float64) (string, bool) {
	n := len(seg)
	if n == 0 || bitLength <= 0 {
		return "", false
	}

	quant := make([]bool, n)
	for i, v := range seg {
		quant[i] = v > center
	}

	numSymbols := n / bitLength
	if numSymbols == 0 {
		return "", false
	}

	var sb strings.Builder
	ambiguous := 0
	for k := 0; k < numSymbols; k++ {
		start := k * bitLength
		end := start + bitLength
		if end > n {
			end = n
		}

		ones := 0
		for _, b := range quant[start:end] {
			if b {
				ones++
			}
		}
		total := end - start
		zeros := total - ones

		minority := ones
		if zeros < minority {
			minority = zeros
		}
		if minority > tolerance {
			ambiguous++
		}

		if ones >= zeros {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}

	if float64(ambiguous)/float64(numSymbols) > maxAmbiguousFraction {
		return "", false
	}
	return sb.String(), true
}
