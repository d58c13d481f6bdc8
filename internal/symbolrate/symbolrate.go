// Package symbolrate infers samples-per-symbol from the lengths of
// same-value runs in the modulation-appropriate demod stream (spec §4.F).
package symbolrate

import (
	"math"
	"sort"

	"github.com/sigproto/awre/internal/segment"
)

// Estimate binarizes stream within each plateau using the plateau's own
// median as a provisional center, pools the resulting run lengths, and
// returns the fuzzy GCD of the dominant run-length cluster centroids,
// within the given relative tolerance (default ±10%, spec §4.F). ok is
// false when the GCD would be below 2 (§7 symbol_rate_undetectable).
func Estimate(stream []float64, plateaus []segment.Plateau, tolerance float64) (bitLength int, ok bool) {
	var runLengths []int
	for _, p := range plateaus {
		end := p.End
		if end > len(stream) {
			end = len(stream)
		}
		if p.Start >= end {
			continue
		}
		seg := stream[p.Start:end]
		center := median(seg)
		runLengths = append(runLengths, runLengthsOf(seg, center)...)
	}
	if len(runLengths) == 0 {
		return 0, false
	}

	bins := clusterRunLengths(runLengths, tolerance)
	dominant := dominantBins(bins)
	if len(dominant) == 0 {
		return 0, false
	}

	centroids := make([]float64, len(dominant))
	for i, b := range dominant {
		centroids[i] = b.centroid()
	}

	g := fuzzyGCD(centroids, tolerance)
	if g < 2 {
		return 0, false
	}
	return g, true
}

func runLengthsOf(seg []float64, center float64) []int {
	if len(seg) == 0 {
		return nil
	}
	var runs []int
	cur := seg[0] > center
	length := 1
	for i := 1; i < len(seg); i++ {
		bit := seg[i] > center
		if bit == cur {
			length++
			continue
		}
		runs = append(runs, length)
		cur = bit
		length = 1
	}
	runs = append(runs, length)
	return runs
}

type bin struct {
	totalWeight int
	weightedSum float64
}

func (b bin) centroid() float64 {
	if b.totalWeight == 0 {
		return 0
	}
	return b.weightedSum / float64(b.totalWeight)
}

// clusterRunLengths groups the run-length multiset into fuzzy bins: a
// length joins the current bin when it's within tolerance of the bin's
// running centroid, else it starts a new bin.
func clusterRunLengths(runLengths []int, tolerance float64) []bin {
	counts := map[int]int{}
	for _, l := range runLengths {
		counts[l]++
	}
	values := make([]int, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Ints(values)

	var bins []bin
	for _, v := range values {
		c := counts[v]
		if len(bins) > 0 {
			last := &bins[len(bins)-1]
			centroid := last.centroid()
			if centroid > 0 && math.Abs(float64(v)-centroid)/centroid <= tolerance {
				last.totalWeight += c
				last.weightedSum += float64(v) * float64(c)
				continue
			}
		}
		bins = append(bins, bin{totalWeight: c, weightedSum: float64(v) * float64(c)})
	}
	return bins
}

// dominantBins returns the bins carrying at least 10% of the total run
// mass, sorted by descending weight.
func dominantBins(bins []bin) []bin {
	var total int
	for _, b := range bins {
		total += b.totalWeight
	}
	if total == 0 {
		return nil
	}

	var dominant []bin
	for _, b := range bins {
		if float64(b.totalWeight)/float64(total) >= 0.10 {
			dominant = append(dominant, b)
		}
	}
	sort.Slice(dominant, func(i, j int) bool { return dominant[i].totalWeight > dominant[j].totalWeight })
	return dominant
}

// fuzzyGCD returns the largest integer g such that every centroid is
// within tolerance of an integer multiple of g, or 0 if none qualifies.
func fuzzyGCD(centroids []float64, tolerance float64) int {
	minCentroid := centroids[0]
	for _, c := range centroids[1:] {
		if c < minCentroid {
			minCentroid = c
		}
	}

	maxG := int(math.Floor(minCentroid))
	for g := maxG; g >= 2; g-- {
		if allMultiplesOf(centroids, g, tolerance) {
			return g
		}
	}
	return 0
}

func allMultiplesOf(centroids []float64, g int, tolerance float64) bool {
	for _, c := range centroids {
		k := math.Round(c / float64(g))
		if k < 1 {
			return false
		}
		if math.Abs(c-k*float64(g))/c > tolerance {
			return false
		}
	}
	return true
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
