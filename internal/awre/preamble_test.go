package awre

import (
	"testing"

	"github.com/sigproto/awre/internal/demod"
)

func TestFindPreamble_RepeatingPrefix(t *testing.T) {
	members := []demod.Message{
		demod.New("1010101011110000", 0),
		demod.New("1010101000001111", 0),
		demod.New("1010101001010101", 0),
	}

	field, ok := findPreamble(members, 16)
	if !ok {
		t.Fatal("findPreamble() ok = false, want true")
	}
	if field.Start != 0 || field.End != 8 {
		t.Errorf("preamble = [%d, %d), want [0, 8)", field.Start, field.End)
	}
	if field.Label != LabelPreamble {
		t.Errorf("Label = %q, want %q", field.Label, LabelPreamble)
	}
}

func TestFindPreamble_TooShortToQualify(t *testing.T) {
	// The two messages disagree on their very first bit, so no candidate
	// period can produce even a single matching period across both.
	members := []demod.Message{
		demod.New("1100110011001100", 0),
		demod.New("0100110011001100", 0),
	}
	if _, ok := findPreamble(members, 16); ok {
		t.Error("findPreamble() found a preamble shorter than the 8-bit minimum")
	}
}
