// Package noise estimates the capture's noise floor from the magnitude
// envelope (spec §4.C): partition into fixed-length windows, take each
// window's mean, and return a low quantile of those means. The windowed
// quantile is the same shape of computation as the teacher's
// PowerHistogram.GetPercentileBounds (cmd/heatmap/app/power.go) — a sorted
// accumulation used to locate a percentile — adapted here to a single
// noise-floor quantile instead of paired 5th/95th display bounds.
package noise

import "sort"

// Estimate returns the noise floor eta for the magnitude envelope m, per
// spec §4.C: partition into windows of length w, sort the window means,
// and take the q-th quantile, clamped to floor.
func Estimate(m []float64, w int, q float64, floor float64) float64 {
	if len(m) == 0 || w <= 0 {
		return floor
	}

	numWindows := (len(m) + w - 1) / w
	means := make([]float64, 0, numWindows)
	for start := 0; start < len(m); start += w {
		end := start + w
		if end > len(m) {
			end = len(m)
		}
		var sum float64
		for _, v := range m[start:end] {
			sum += v
		}
		means = append(means, sum/float64(end-start))
	}

	sort.Float64s(means)

	idx := int(q * float64(len(means)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(means) {
		idx = len(means) - 1
	}

	eta := means[idx]
	if eta < floor {
		eta = floor
	}
	return eta
}

// IsNoiseDominated reports whether the estimated noise floor swallows the
// capture (§7 noise_dominated): eta exceeds the given fraction of the
// maximum magnitude observed.
func IsNoiseDominated(eta float64, m []float64, fraction float64) bool {
	if len(m) == 0 {
		return true
	}
	max := m[0]
	for _, v := range m[1:] {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		return true
	}
	return eta > fraction*max
}
