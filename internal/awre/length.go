package awre

import "github.com/sigproto/awre/internal/demod"

// findLength implements §4.I.3: a byte-aligned window, 4, 8, 12 or 16 bits
// wide, located shortly after the sync field, whose value tracks the
// observed payload length P_i of each message by an affine relation
// v_i = a*P_i + b with a in {1, 1/8} and a small constant b, exactly, for
// every message. P_i is approximated by trying several plausible address
// widths placed immediately after the candidate length field, since
// address detection (§4.I.4) hasn't run yet at this point in the pipeline.
func findLength(members []demod.Message, l, cursor int, assigned *rangeSet) (Field, bool) {
	addressGuesses := []int{0, 8, 16, 24, 32, 48, 64}
	maxOffset := cursor + 64
	if maxOffset > l {
		maxOffset = l
	}

	for _, w := range []int{8, 16, 4, 12} {
		for offset := cursor; offset+w <= maxOffset; offset += 8 {
			if !assigned.free(offset, offset+w) {
				continue
			}

			values := make([]int64, len(members))
			ok := true
			for i, m := range members {
				v, vok := bitsToUint(m.Bits, offset, w)
				if !vok {
					ok = false
					break
				}
				values[i] = int64(v)
			}
			if !ok {
				continue
			}

			for _, aw := range addressGuesses {
				if field, found := fitLength(members, offset, w, aw, values); found {
					return field, true
				}
			}
		}
	}

	return Field{}, false
}

// fitLength tests both affine scales (length in bits, length in bytes)
// against one (offset, width, address-guess) candidate.
func fitLength(members []demod.Message, offset, w, aw int, values []int64) (Field, bool) {
	payload := make([]int64, len(members))
	for i, m := range members {
		payload[i] = int64(len(m.Bits) - offset - w - aw)
		if payload[i] < 0 {
			return Field{}, false
		}
	}

	if b, ok := constantResidual(values, payload, 1); ok && abs64(b) <= 64 {
		return Field{Name: "length", Start: offset, End: offset + w, Label: LabelLength}, true
	}

	bytePayload := make([]int64, len(members))
	for i, p := range payload {
		if p%8 != 0 {
			return Field{}, false
		}
		bytePayload[i] = p / 8
	}
	if b, ok := constantResidual(values, bytePayload, 1); ok && abs64(b) <= 8 {
		return Field{Name: "length", Start: offset, End: offset + w, Label: LabelLength}, true
	}

	return Field{}, false
}

// constantResidual reports whether v[i] - scale*p[i] is the same for
// every i, returning that constant.
func constantResidual(v, p []int64, scale int64) (int64, bool) {
	b := v[0] - scale*p[0]
	for i := 1; i < len(v); i++ {
		if v[i]-scale*p[i] != b {
			return 0, false
		}
	}
	return b, true
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
