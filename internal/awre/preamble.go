package awre

import "github.com/sigproto/awre/internal/demod"

// findPreamble implements §4.I.1: the longest prefix built from a
// repeating short period (1, 2, 4 or 8 bits) that is byte-for-byte
// identical, period by period, across every message. The trailing
// partial period (if the preamble length isn't a multiple of the period)
// is not required to match and is not counted towards the preamble.
func findPreamble(members []demod.Message, l int) (Field, bool) {
	best := 0

	for _, p := range []int{1, 2, 4, 8} {
		if p > l {
			continue
		}
		pattern := members[0].Bits[:p]

		minFull := l
		for _, m := range members {
			full := fullPeriods(m.Bits, pattern, p, l)
			if full < minFull {
				minFull = full
			}
		}

		if minFull > best {
			best = minFull
		}
	}

	if best < 8 {
		return Field{}, false
	}

	return Field{
		Name:  "preamble",
		Start: 0,
		End:   best,
		Label: LabelPreamble,
	}, true
}

// fullPeriods returns the length of the longest prefix of bits, bounded
// by limit, made of exact repeats of pattern (a multiple of len(pattern)).
func fullPeriods(bits, pattern string, p, limit int) int {
	n := 0
	for n+p <= limit && n+p <= len(bits) {
		if bits[n:n+p] != pattern {
			break
		}
		n += p
	}
	return n
}
