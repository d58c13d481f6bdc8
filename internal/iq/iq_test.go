package iq

import "testing"

func TestFromComplex_LengthMismatch(t *testing.T) {
	_, err := FromComplex([]float64{1, 2}, []float64{1})
	if err == nil {
		t.Fatal("expected an error for mismatched I/Q lengths")
	}
}

func TestFromComplex_Len(t *testing.T) {
	b, err := FromComplex([]float64{1, 2, 3}, []float64{4, 5, 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}
	if b.RealOnly {
		t.Error("RealOnly should be false for a complex buffer")
	}
}

func TestFromInterleaved(t *testing.T) {
	b, err := FromInterleaved([]float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantI := []float64{1, 3, 5}
	wantQ := []float64{2, 4, 6}
	for i := range wantI {
		if b.I[i] != wantI[i] || b.Q[i] != wantQ[i] {
			t.Errorf("sample %d = (%f, %f), want (%f, %f)", i, b.I[i], b.Q[i], wantI[i], wantQ[i])
		}
	}
}

func TestFromInterleaved_OddLength(t *testing.T) {
	if _, err := FromInterleaved([]float64{1, 2, 3}); err == nil {
		t.Fatal("expected an error for odd-length interleaved input")
	}
}

func TestFromReal(t *testing.T) {
	src := []float64{0.1, 0.2, 0.3}
	b := FromReal(src)
	if !b.RealOnly {
		t.Error("RealOnly should be true")
	}
	if len(b.Q) != 0 {
		t.Error("Q should be empty for a real-only buffer")
	}
	src[0] = 99
	if b.I[0] == 99 {
		t.Error("FromReal should copy its input, not alias it")
	}
}
