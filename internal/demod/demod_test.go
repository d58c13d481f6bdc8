package demod

import (
	"testing"

	"github.com/sigproto/awre/internal/segment"
)

func TestHexView_PadsToNibbleBoundary(t *testing.T) {
	if got := HexView("1010101"); got != "aa" {
		t.Errorf("HexView(%q) = %q, want %q", "1010101", got, "aa")
	}
}

func TestHexView_Exact(t *testing.T) {
	if got := HexView("11111111"); got != "ff" {
		t.Errorf("HexView(%q) = %q, want %q", "11111111", got, "ff")
	}
}

func TestASCIIView_PrintableAndNonPrintable(t *testing.T) {
	// 'A' = 0x41 = 01000001, followed by 00000000 (non-printable).
	bits := "0100000100000000"
	if got := ASCIIView(bits); got != "A." {
		t.Errorf("ASCIIView(%q) = %q, want %q", bits, got, "A.")
	}
}

func TestASCIIView_IgnoresTrailingPartialByte(t *testing.T) {
	if got := ASCIIView("010000010101"); got != "A" {
		t.Errorf("ASCIIView(...) = %q, want %q", got, "A")
	}
}

func TestNew_DerivedViewsArePure(t *testing.T) {
	m := New("11111111", 7)
	if m.Bits != "11111111" {
		t.Errorf("Bits = %q, want %q", m.Bits, "11111111")
	}
	if m.Hex != "ff" {
		t.Errorf("Hex = %q, want %q", m.Hex, "ff")
	}
	if m.ASCII != "." {
		// 0xff is outside the printable range, so it renders as '.'.
		t.Errorf("ASCII = %q, want %q", m.ASCII, ".")
	}
	if m.Pause != 7 {
		t.Errorf("Pause = %d, want 7", m.Pause)
	}
}

func buildSymbolStream(symbols []int, bitLength int, low, high float64) []float64 {
	var stream []float64
	for _, bit := range symbols {
		v := low
		if bit == 1 {
			v = high
		}
		for i := 0; i < bitLength; i++ {
			stream = append(stream, v)
		}
	}
	return stream
}

func TestDemodulate_CleanSymbols(t *testing.T) {
	stream := buildSymbolStream([]int{1, 0, 1, 1, 0, 0, 1, 0}, 4, 0.1, 0.9)
	plateaus := []segment.Plateau{{Start: 0, End: len(stream), Pause: 3}}

	messages := Demodulate(stream, plateaus, 0.5, 4, 1, 0.1)
	if len(messages) != 1 {
		t.Fatalf("Demodulate() returned %d messages, want 1", len(messages))
	}
	if messages[0].Bits != "10110010" {
		t.Errorf("Bits = %q, want %q", messages[0].Bits, "10110010")
	}
	if messages[0].Pause != 3 {
		t.Errorf("Pause = %d, want 3", messages[0].Pause)
	}
}

func TestDemodulate_TooNoisyPlateauIsDropped(t *testing.T) {
	// Every symbol window has an even split at the decision center, which
	// always exceeds tolerance 0 and so always counts as ambiguous.
	stream := make([]float64, 32)
	for i := range stream {
		if i%2 == 0 {
			stream[i] = 0.9
		} else {
			stream[i] = 0.1
		}
	}
	plateaus := []segment.Plateau{{Start: 0, End: len(stream), Pause: 0}}

	messages := Demodulate(stream, plateaus, 0.5, 4, 0, 0.1)
	if len(messages) != 0 {
		t.Errorf("Demodulate() returned %d messages, want 0 (ambiguity above tolerance)", len(messages))
	}
}

func TestDemodulate_EmptyPlateauSkipped(t *testing.T) {
	messages := Demodulate([]float64{1, 2, 3}, []segment.Plateau{{Start: 5, End: 5, Pause: 0}}, 0.5, 4, 1, 0.1)
	if len(messages) != 0 {
		t.Errorf("Demodulate() on an empty plateau span = %d messages, want 0", len(messages))
	}
}
