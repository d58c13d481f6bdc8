package awre

import "github.com/sigproto/awre/internal/demod"

// findSequence implements §4.I.5: a byte-aligned 8- or 16-bit window whose
// per-message values, read in arrival order, increase strictly by a
// constant 1 or 2 modulo 2^w. Tie-break order is narrower width, then
// earliest offset; exactly one sequence field is emitted per type.
func findSequence(members []demod.Message, l int, assigned *rangeSet) (Field, bool) {
	for _, w := range []int{8, 16} {
		for offset := 0; offset+w <= l; offset += 8 {
			if !assigned.free(offset, offset+w) {
				continue
			}

			values := make([]uint64, len(members))
			ok := true
			for i, m := range members {
				v, vok := bitsToUint(m.Bits, offset, w)
				if !vok {
					ok = false
					break
				}
				values[i] = v
			}
			if !ok {
				continue
			}

			if inc, isSeq := constantIncrement(values, w); isSeq && (inc == 1 || inc == 2) {
				return Field{
					Name:  "sequence_number",
					Start: offset,
					End:   offset + w,
					Label: LabelSequenceNumber,
				}, true
			}
		}
	}
	return Field{}, false
}

func constantIncrement(values []uint64, w int) (uint64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	mod := uint64(1) << uint(w)
	inc := (values[1] + mod - values[0]) % mod
	if inc == 0 {
		return 0, false
	}
	for i := 1; i < len(values); i++ {
		d := (values[i] + mod - values[i-1]) % mod
		if d != inc {
			return 0, false
		}
	}
	return inc, true
}

func bitsToUint(bits string, offset, width int) (uint64, bool) {
	if offset < 0 || offset+width > len(bits) {
		return 0, false
	}
	var v uint64
	for i := 0; i < width; i++ {
		v <<= 1
		if bits[offset+i] == '1' {
			v |= 1
		}
	}
	return v, true
}
