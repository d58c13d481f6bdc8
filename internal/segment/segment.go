// Package segment slices the magnitude envelope into plateaus — contiguous
// high-energy regions that are candidate messages (spec §3 Plateau, §4.D
// Message Segmenter). The scan keeps a small amount of state across a
// single linear pass, the same shape of bookkeeping as the teacher's
// FrequencyBuffer ordering scan (internal/sdr/buffer.go): walk forward once,
// decide membership with hysteresis instead of frequency-rollover
// comparisons.
package segment

// Plateau is a half-open index interval [Start, End) over the demod
// stream, plus the silence (in samples) that follows it before the next
// plateau begins. Pause is 0 for the last plateau.
type Plateau struct {
	Start int
	End   int
	Pause int
}

// Len returns the number of samples in the plateau.
func (p Plateau) Len() int {
	return p.End - p.Start
}

// Find scans m for plateaus using hysteresis around the noise floor eta.
// minPause is the minimum silence, in samples, required to close a
// plateau; minPlateau is the minimum plateau length to avoid discarding it
// as a glitch (spec §4.D defaults: hIn=0.1, hOut=0.05, minPlateau=10).
func Find(m []float64, eta, hIn, hOut float64, minPause, minPlateau int) []Plateau {
	riseThreshold := eta * (1 + hIn)
	fallThreshold := eta * (1 - hOut)

	var plateaus []Plateau

	n := 0
	for n < len(m) {
		if m[n] < riseThreshold {
			n++
			continue
		}

		start := n
		end := len(m)

		lowCount := 0
		lowRunStart := -1

		i := n + 1
		for i < len(m) {
			if m[i] < fallThreshold {
				if lowCount == 0 {
					lowRunStart = i
				}
				lowCount++
				if lowCount >= minPause {
					end = lowRunStart
					break
				}
			} else {
				lowCount = 0
				lowRunStart = -1
			}
			i++
		}

		if end-start >= minPlateau {
			plateaus = append(plateaus, Plateau{Start: start, End: end})
		}

		n = end
	}

	for k := 0; k < len(plateaus); k++ {
		if k == len(plateaus)-1 {
			plateaus[k].Pause = 0
			continue
		}
		plateaus[k].Pause = plateaus[k+1].Start - plateaus[k].End
	}

	return plateaus
}
