package symbolrate

import (
	"testing"

	"github.com/sigproto/awre/internal/segment"
)

func squareWave(runLength, periods int) []float64 {
	x := make([]float64, 0, runLength*2*periods)
	for p := 0; p < periods; p++ {
		for i := 0; i < runLength; i++ {
			x = append(x, 1)
		}
		for i := 0; i < runLength; i++ {
			x = append(x, -1)
		}
	}
	return x
}

func TestEstimate_DominantRunLength(t *testing.T) {
	stream := squareWave(8, 10)
	plateaus := []segment.Plateau{{Start: 0, End: len(stream), Pause: 0}}

	got, ok := Estimate(stream, plateaus, 0.1)
	if !ok {
		t.Fatal("Estimate() ok = false, want true")
	}
	if got != 8 {
		t.Errorf("Estimate() = %d, want 8", got)
	}
}

func TestEstimate_HarmonicRunLengthsStillResolveBaseUnit(t *testing.T) {
	// Mix of 8-sample and 16-sample runs (two symbols back to back):
	// the fuzzy GCD should still land on the 8-sample base unit.
	stream := append(squareWave(8, 6), squareWave(16, 3)...)
	plateaus := []segment.Plateau{{Start: 0, End: len(stream), Pause: 0}}

	got, ok := Estimate(stream, plateaus, 0.1)
	if !ok {
		t.Fatal("Estimate() ok = false, want true")
	}
	if got != 8 {
		t.Errorf("Estimate() = %d, want 8", got)
	}
}

func TestEstimate_NoPlateaus(t *testing.T) {
	if _, ok := Estimate([]float64{1, 2, 3}, nil, 0.1); ok {
		t.Error("Estimate() with no plateaus should report ok = false")
	}
}

func TestEstimate_DegenerateBelowMinimum(t *testing.T) {
	// A single sample per plateau can never yield a run length >= 2.
	plateaus := []segment.Plateau{{Start: 0, End: 1, Pause: 0}, {Start: 1, End: 2, Pause: 0}}
	if _, ok := Estimate([]float64{1, -1}, plateaus, 0.1); ok {
		t.Error("Estimate() on single-sample plateaus should report ok = false")
	}
}
