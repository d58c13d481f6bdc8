package awre

import "github.com/sigproto/awre/internal/demod"

// findAddresses implements §4.I.4: byte-aligned windows outside the fields
// already assigned, 8 to 64 bits wide, whose values (a) are not constant
// across messages and (b) reappear at some other, distinct offset — the
// cross-message symmetry that separates a routed address from an
// incidental varying field such as a counter. Up to two non-overlapping
// fields are kept, narrower widths considered first, then ascending
// offset within a width.
func findAddresses(members []demod.Message, l int, assigned *rangeSet) []Field {
	type candidate struct {
		offset, width int
		values        []uint64
	}

	var candidates []candidate
	occurrences := map[uint64][]int{}

	for _, w := range []int{8, 16, 24, 32, 48, 64} {
		for offset := 0; offset+w <= l; offset += 8 {
			if !assigned.free(offset, offset+w) {
				continue
			}

			values := make([]uint64, len(members))
			ok := true
			distinct := map[uint64]bool{}
			for i, m := range members {
				v, vok := bitsToUint(m.Bits, offset, w)
				if !vok {
					ok = false
					break
				}
				values[i] = v
				distinct[v] = true
			}
			if !ok || len(distinct) < 2 {
				continue
			}

			idx := len(candidates)
			candidates = append(candidates, candidate{offset: offset, width: w, values: values})
			for v := range distinct {
				occurrences[v] = append(occurrences[v], idx)
			}
		}
	}

	var fields []Field
	for idx, c := range candidates {
		symmetric := false
		for _, v := range c.values {
			for _, other := range occurrences[v] {
				if other != idx && candidates[other].offset != c.offset {
					symmetric = true
					break
				}
			}
			if symmetric {
				break
			}
		}
		if !symmetric || !assigned.free(c.offset, c.offset+c.width) {
			continue
		}

		fields = append(fields, Field{
			Name:  "address",
			Start: c.offset,
			End:   c.offset + c.width,
			Label: LabelAddress,
		})
		assigned.mark(c.offset, c.offset+c.width)

		if len(fields) == 2 {
			break
		}
	}

	return fields
}
