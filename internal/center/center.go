// Package center derives the binary decision threshold and timing
// tolerance from a demod stream (spec §4.G).
package center

import (
	"math"

	"github.com/sigproto/awre/internal/segment"
)

// Estimate runs two-means clustering (k=2) on the stream samples that fall
// inside plateaus and returns the midpoint of the two centroids as the
// decision center. ok is false when either cluster holds fewer than
// minClusterFraction of the samples (spec §4.G invariant).
func Estimate(stream []float64, plateaus []segment.Plateau, minClusterFraction float64) (float64, bool) {
	samples := gather(stream, plateaus)
	if len(samples) < 2 {
		return 0, false
	}

	lo, hi := minMax(samples)
	if lo == hi {
		return 0, false
	}

	c0, c1 := lo, hi
	for iter := 0; iter < 100; iter++ {
		var sum0, sum1 float64
		var n0, n1 int
		for _, v := range samples {
			if math.Abs(v-c0) <= math.Abs(v-c1) {
				sum0 += v
				n0++
			} else {
				sum1 += v
				n1++
			}
		}

		newC0, newC1 := c0, c1
		if n0 > 0 {
			newC0 = sum0 / float64(n0)
		}
		if n1 > 0 {
			newC1 = sum1 / float64(n1)
		}

		stable := math.Abs(newC0-c0) < 1e-6 && math.Abs(newC1-c1) < 1e-6
		c0, c1 = newC0, newC1
		if stable {
			break
		}
	}

	var n0, n1 int
	for _, v := range samples {
		if math.Abs(v-c0) <= math.Abs(v-c1) {
			n0++
		} else {
			n1++
		}
	}

	frac0 := float64(n0) / float64(len(samples))
	frac1 := float64(n1) / float64(len(samples))
	if frac0 < minClusterFraction || frac1 < minClusterFraction {
		return 0, false
	}

	return (c0 + c1) / 2, true
}

// Tolerance returns the largest integer t < bitLength/2 that absorbs
// timing jitter, per spec §4.G: t = max(1, round(bitLength * fraction)).
func Tolerance(bitLength int, fraction float64) int {
	t := int(math.Round(float64(bitLength) * fraction))
	if t < 1 {
		t = 1
	}
	maxT := bitLength/2 - 1
	if maxT < 1 {
		maxT = 1
	}
	if t > maxT {
		t = maxT
	}
	return t
}

func gather(stream []float64, plateaus []segment.Plateau) []float64 {
	var out []float64
	for _, p := range plateaus {
		end := p.End
		if end > len(stream) {
			end = len(stream)
		}
		if p.Start >= end {
			continue
		}
		out = append(out, stream[p.Start:end]...)
	}
	return out
}

func minMax(x []float64) (float64, float64) {
	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
