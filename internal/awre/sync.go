package awre

import "github.com/sigproto/awre/internal/demod"

// findSync implements §4.I.2: starting right after the preamble (or at 0),
// the longest maximal contiguous run that is identical across every
// message, truncated down to a multiple of 4 bits, with a minimum of 8.
func findSync(members []demod.Message, l, start int) (Field, bool) {
	if start >= l {
		return Field{}, false
	}

	ref := members[0].Bits

	common := l - start
	for _, m := range members[1:] {
		n := 0
		for start+n < l && start+n < len(m.Bits) && m.Bits[start+n] == ref[start+n] {
			n++
		}
		if n < common {
			common = n
		}
	}

	syncLen := (common / 4) * 4
	if syncLen < 8 {
		return Field{}, false
	}

	return Field{
		Name:  "sync",
		Start: start,
		End:   start + syncLen,
		Label: LabelSync,
	}, true
}
