package awre

import (
	"testing"

	"github.com/sigproto/awre/internal/checksum"
	"github.com/sigproto/awre/internal/demod"
)

func TestFindChecksum_Sum8TrailingByte(t *testing.T) {
	// Each message is one data byte followed by a checksum byte equal to
	// it (sum-8 of a single byte is the byte itself), chosen so that
	// CRC-8 of the same byte never collides with it.
	members := []demod.Message{
		demod.New("0000000100000001", 0), // 0x01, 0x01
		demod.New("0000001000000010", 0), // 0x02, 0x02
		demod.New("0000001100000011", 0), // 0x03, 0x03
	}

	field, ok := findChecksum(members, 16, checksum.DefaultCatalogue())
	if !ok {
		t.Fatal("findChecksum() ok = false, want true")
	}
	if field.Start != 8 || field.End != 16 {
		t.Errorf("checksum field = [%d, %d), want [8, 16)", field.Start, field.End)
	}
	if field.Label != LabelChecksum {
		t.Errorf("Label = %q, want %q", field.Label, LabelChecksum)
	}
}

func TestFindChecksum_MismatchedLengthsFail(t *testing.T) {
	members := []demod.Message{
		demod.New("0000000100000001", 0),
		demod.New("000000100000001", 0), // 15 bits, not equal length
	}
	if _, ok := findChecksum(members, 16, checksum.DefaultCatalogue()); ok {
		t.Error("findChecksum() should fail when message lengths disagree")
	}
}

func TestFindChecksum_NoMatchingAlgorithm(t *testing.T) {
	members := []demod.Message{
		demod.New("0000000100000000", 0),
		demod.New("0000001000000000", 0),
	}
	if _, ok := findChecksum(members, 16, checksum.DefaultCatalogue()); ok {
		t.Error("findChecksum() should fail when no catalogue entry reproduces the trailing bits")
	}
}
