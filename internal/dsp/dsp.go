// Package dsp computes the derived numeric series a modulation needs: the
// magnitude envelope, unwrapped instantaneous phase, and instantaneous
// frequency (spec §4.B). Series are memoized lazily on first access, in the
// spirit of the teacher's design notes on restartable finite sequences
// (spec §9): a Streams value can be asked for any of the three and only
// pays for the ones actually touched.
package dsp

import "math"

// Streams lazily computes and caches the derived series for one IQ buffer.
// A Streams value is not safe for concurrent use; callers that need the
// same buffer from multiple goroutines should build the series once and
// share the resulting slices, which are immutable after Magnitude/Phase/
// Frequency return them.
type Streams struct {
	I, Q []float64

	magnitude []float64
	phase     []float64
	frequency []float64
}

// New builds a Streams over the given in-phase/quadrature slices.
func New(i, q []float64) *Streams {
	return &Streams{I: i, Q: q}
}

// Magnitude returns m[n] = sqrt(I[n]^2 + Q[n]^2).
func (s *Streams) Magnitude() []float64 {
	if s.magnitude != nil {
		return s.magnitude
	}
	m := make([]float64, len(s.I))
	for n := range s.I {
		m[n] = math.Hypot(s.I[n], s.Q[n])
	}
	s.magnitude = m
	return m
}

// Phase returns the unwrapped instantaneous phase phi[n] = atan2(Q, I),
// corrected so that consecutive samples never jump by more than pi.
func (s *Streams) Phase() []float64 {
	if s.phase != nil {
		return s.phase
	}
	p := make([]float64, len(s.I))
	if len(s.I) == 0 {
		s.phase = p
		return p
	}
	p[0] = math.Atan2(s.Q[0], s.I[0])
	var unwrap float64
	for n := 1; n < len(s.I); n++ {
		raw := math.Atan2(s.Q[n], s.I[n])
		delta := raw - (p[n-1] - unwrap)
		for delta > math.Pi {
			unwrap -= 2 * math.Pi
			delta -= 2 * math.Pi
		}
		for delta < -math.Pi {
			unwrap += 2 * math.Pi
			delta += 2 * math.Pi
		}
		p[n] = raw + unwrap
	}
	s.phase = p
	return p
}

// Frequency returns the instantaneous frequency f[n] = phi[n+1] - phi[n],
// defined on [0, N-1).
func (s *Streams) Frequency() []float64 {
	if s.frequency != nil {
		return s.frequency
	}
	p := s.Phase()
	if len(p) < 2 {
		s.frequency = []float64{}
		return s.frequency
	}
	f := make([]float64, len(p)-1)
	for n := 0; n < len(f); n++ {
		f[n] = p[n+1] - p[n]
	}
	s.frequency = f
	return f
}

// Len returns the sample count of the underlying IQ buffer.
func (s *Streams) Len() int {
	return len(s.I)
}

// AutocorrelationPeriod returns a rough period estimate for x: the lag of
// the first positive local maximum of the autocorrelation, searched over
// lags 2 through len(x)/2-1. Used as the initial bit-length guess that
// feeds §4.E's per-symbol phase-difference feature and the PSK demod
// stream (spec §4.F note). Returns fallback if no local maximum is found.
func AutocorrelationPeriod(x []float64, fallback int) int {
	n := len(x)
	if n < 4 {
		return fallback
	}

	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	maxLag := n / 2
	if maxLag < 2 {
		return fallback
	}

	ac := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		var sum float64
		for i := 0; i < n-lag; i++ {
			sum += (x[i] - mean) * (x[i+lag] - mean)
		}
		ac[lag] = sum
	}

	for lag := 2; lag < maxLag; lag++ {
		if ac[lag] > ac[lag-1] && ac[lag] >= ac[lag+1] && ac[lag] > 0 {
			return lag
		}
	}
	return fallback
}

// PhaseRotation returns the instantaneous phase rotation normalized to a
// one-symbol hop: rot[n] = phi[n+hop] - phi[n], defined on [0, N-hop). This
// is the PSK demod stream of spec §3, materialized once hop (an initial
// bit-length estimate) is known.
func (s *Streams) PhaseRotation(hop int) []float64 {
	if hop <= 0 {
		hop = 1
	}
	p := s.Phase()
	if len(p) <= hop {
		return []float64{}
	}
	rot := make([]float64, len(p)-hop)
	for n := range rot {
		rot[n] = p[n+hop] - p[n]
	}
	return rot
}
