// Package iq defines the normalized in-phase/quadrature sample buffer that
// every pipeline stage downstream operates on (spec §3 IQSample, §4.A IQ
// Container, §9 tagged IqInput variant). The container itself is a small
// data type in the style of internal/sdr.SweepResult: plain fields plus a
// couple of derived accessor methods, no behavior beyond normalization.
package iq

import "fmt"

// Buffer is the normalized shape-(N,2) sample buffer. When RealOnly is
// true the samples were supplied already-demodulated (§4.A shortcut) and
// Q is empty; callers should read I directly as a DemodStream.
type Buffer struct {
	I        []float64
	Q        []float64
	RealOnly bool
}

// Len returns the number of samples in the buffer.
func (b Buffer) Len() int {
	return len(b.I)
}

// FromComplex builds a Buffer from separate in-phase/quadrature slices.
func FromComplex(i, q []float64) (Buffer, error) {
	if len(i) != len(q) {
		return Buffer{}, fmt.Errorf("iq: I/Q length mismatch: %d != %d", len(i), len(q))
	}
	return Buffer{I: i, Q: q}, nil
}

// FromInterleaved builds a Buffer from an interleaved real-valued slice of
// length 2N: [I0, Q0, I1, Q1, ...].
func FromInterleaved(samples []float64) (Buffer, error) {
	if len(samples)%2 != 0 {
		return Buffer{}, fmt.Errorf("iq: interleaved buffer must have even length, got %d", len(samples))
	}
	n := len(samples) / 2
	i := make([]float64, n)
	q := make([]float64, n)
	for n0 := 0; n0 < n; n0++ {
		i[n0] = samples[2*n0]
		q[n0] = samples[2*n0+1]
	}
	return Buffer{I: i, Q: q}, nil
}

// FromReal builds a real-only Buffer: the pipeline shortcuts directly to
// demodulation (§4.A) using samples as the demod stream.
func FromReal(samples []float64) Buffer {
	cp := make([]float64, len(samples))
	copy(cp, samples)
	return Buffer{I: cp, RealOnly: true}
}
