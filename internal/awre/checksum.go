package awre

import (
	"github.com/sigproto/awre/internal/checksum"
	"github.com/sigproto/awre/internal/demod"
)

// findChecksum implements §4.I.6: the widest trailing field (8, 16 or 32
// bits) reproduced, for every message, by some algorithm in the
// catalogue applied to the preceding bytes. Requires every message in
// the type to share the same length l, since the checksum sits at a
// fixed offset from the end.
func findChecksum(members []demod.Message, l int, catalogue []checksum.Algorithm) (Field, bool) {
	if l%8 != 0 {
		return Field{}, false
	}
	for _, m := range members {
		if len(m.Bits) != l {
			return Field{}, false
		}
	}

	for _, c := range []int{32, 16, 8} {
		if c >= l || (l-c)%8 != 0 {
			continue
		}

		for _, alg := range catalogue {
			if alg.Width != c {
				continue
			}

			matches := true
			for _, m := range members {
				preceding := bitsToBytes(m.Bits[:l-c])
				trailing, _ := bitsToUint(m.Bits, l-c, c)

				got := alg.Sum(preceding) & (uint64(1)<<uint(c) - 1)
				if got != trailing {
					matches = false
					break
				}
			}
			if matches {
				return Field{
					Name:  "checksum",
					Start: l - c,
					End:   l,
					Label: LabelChecksum,
				}, true
			}
		}
	}

	return Field{}, false
}

func bitsToBytes(bits string) []byte {
	n := len(bits) / 8
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		var b byte
		for j := 0; j < 8; j++ {
			b <<= 1
			if bits[i*8+j] == '1' {
				b |= 1
			}
		}
		out[i] = b
	}
	return out
}
