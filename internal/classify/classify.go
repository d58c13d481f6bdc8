// Package classify picks a modulation class for a capture (spec §4.E).
// Each plateau contributes three dispersion features — magnitude std,
// instantaneous-frequency std, and per-symbol phase-difference std — which
// are normalized against a noise-only baseline and compared.
package classify

import (
	"math"
	"sort"

	"github.com/sigproto/awre/internal/dsp"
	"github.com/sigproto/awre/internal/modulation"
	"github.com/sigproto/awre/internal/segment"
)

// Result carries the classifier's decision plus the initial bit-length
// guess it derived from autocorrelation while computing the phase-based
// feature, for reuse by the PSK demod stream and symbol-rate estimation.
type Result struct {
	Modulation  modulation.Modulation
	Ambiguous   bool
	BitLenGuess int
}

// Classify decides among ASK, FSK and PSK using the dispersion of
// magnitude, instantaneous frequency, and per-symbol phase differences
// across plateaus, normalized against noise-only windows outside the
// plateaus. ambiguityMargin is the §7 modulation_ambiguous trigger: when
// the three scores are all within this fraction of each other, the result
// defaults to FSK per the §4.E tie-break order.
func Classify(streams *dsp.Streams, plateaus []segment.Plateau, ambiguityMargin float64) Result {
	if len(plateaus) == 0 {
		return Result{Modulation: modulation.FSK, Ambiguous: true, BitLenGuess: 0}
	}

	m := streams.Magnitude()
	f := streams.Frequency()

	bitLenGuess := autocorrelationGuess(m, plateaus)

	sigmaM := make([]float64, len(plateaus))
	sigmaF := make([]float64, len(plateaus))
	sigmaDphi := make([]float64, len(plateaus))

	phase := streams.Phase()

	for i, p := range plateaus {
		sigmaM[i] = stdDev(slice(m, p.Start, p.End))
		sigmaF[i] = stdDev(sliceClamped(f, p.Start, p.End, len(f)))
		sigmaDphi[i] = stdDev(perSymbolPhaseDiffs(phase, p, bitLenGuess))
	}

	medM := median(sigmaM)
	medF := median(sigmaF)
	medDphi := median(sigmaDphi)

	normM := normalizedMean(sigmaM, medM)
	normF := normalizedMean(sigmaF, medF)
	normDphi := normalizedMean(sigmaDphi, medDphi)

	baseM, baseF, baseDphi := noiseBaseline(m, f, phase, plateaus, bitLenGuess)

	scoreASK := safeDiv(normM, baseM)
	scoreFSK := safeDiv(normF, baseF)
	scorePSK := safeDiv(normDphi, baseDphi)

	scores := []float64{scoreFSK, scoreASK, scorePSK} // tie-break order: FSK, ASK, PSK
	mods := []modulation.Modulation{modulation.FSK, modulation.ASK, modulation.PSK}

	maxScore, minScore := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
		if s < minScore {
			minScore = s
		}
	}

	ambiguous := false
	if maxScore > 0 && (maxScore-minScore)/maxScore <= ambiguityMargin {
		ambiguous = true
	}

	if ambiguous {
		return Result{Modulation: modulation.FSK, Ambiguous: true, BitLenGuess: bitLenGuess}
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}

	return Result{Modulation: mods[best], Ambiguous: false, BitLenGuess: bitLenGuess}
}

func autocorrelationGuess(m []float64, plateaus []segment.Plateau) int {
	longest := plateaus[0]
	for _, p := range plateaus[1:] {
		if p.Len() > longest.Len() {
			longest = p
		}
	}
	seg := slice(m, longest.Start, longest.End)
	return dsp.AutocorrelationPeriod(seg, 16)
}

func perSymbolPhaseDiffs(phase []float64, p segment.Plateau, hop int) []float64 {
	if hop <= 0 {
		hop = 1
	}
	var out []float64
	for i := p.Start; i+hop < p.End && i+hop < len(phase); i += hop {
		out = append(out, phase[i+hop]-phase[i])
	}
	return out
}

func noiseBaseline(m, f, phase []float64, plateaus []segment.Plateau, hop int) (baseM, baseF, baseDphi float64) {
	inPlateau := make([]bool, len(m))
	for _, p := range plateaus {
		for i := p.Start; i < p.End && i < len(inPlateau); i++ {
			inPlateau[i] = true
		}
	}

	var gapM, gapF []float64
	start := -1
	for i := 0; i <= len(inPlateau); i++ {
		if i < len(inPlateau) && !inPlateau[i] {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			gapM = append(gapM, slice(m, start, i)...)
			gapF = append(gapF, sliceClamped(f, start, i, len(f))...)
			start = -1
		}
	}

	var gapDphi []float64
	for i := 0; i+hop < len(phase); i += maxInt(hop, 1) {
		if i < len(inPlateau) && !inPlateau[i] {
			gapDphi = append(gapDphi, phase[i+hop]-phase[i])
		}
	}

	const epsilon = 1e-9
	baseM = stdDev(gapM) + epsilon
	baseF = stdDev(gapF) + epsilon
	baseDphi = stdDev(gapDphi) + epsilon
	return
}

func normalizedMean(values []float64, med float64) float64 {
	if med == 0 {
		med = 1e-9
	}
	var sum float64
	for _, v := range values {
		sum += v / med
	}
	return sum / float64(len(values))
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func slice(x []float64, start, end int) []float64 {
	if start < 0 {
		start = 0
	}
	if end > len(x) {
		end = len(x)
	}
	if start >= end {
		return nil
	}
	return x[start:end]
}

func sliceClamped(x []float64, start, end, n int) []float64 {
	if end > n {
		end = n
	}
	return slice(x, start, end)
}

func stdDev(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))

	var variance float64
	for _, v := range x {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(x))
	return math.Sqrt(variance)
}

func median(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	cp := append([]float64(nil), x...)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 0 {
		return (cp[mid-1] + cp[mid]) / 2
	}
	return cp[mid]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
