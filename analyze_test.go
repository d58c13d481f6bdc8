package awre

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/sigproto/awre/internal/config"
	"github.com/sigproto/awre/internal/iq"
	"github.com/sigproto/awre/internal/modulation"
)

// assertBottomResult checks the §3/§6 ⊥ shape: null parameters, empty
// message and message-type lists, num_messages = 0.
func assertBottomResult(t *testing.T, result *AnalysisResult) {
	t.Helper()
	if result.Parameters != nil {
		t.Errorf("Parameters = %+v, want nil (⊥)", result.Parameters)
	}
	if len(result.Messages) != 0 {
		t.Errorf("Messages = %v, want empty", result.Messages)
	}
	if len(result.MessageTypes) != 0 {
		t.Errorf("MessageTypes = %v, want empty", result.MessageTypes)
	}
	if result.NumMessages != 0 {
		t.Errorf("NumMessages = %d, want 0", result.NumMessages)
	}
}

func TestAnalyzeIQ_EmptyInput(t *testing.T) {
	result, err := AnalyzeIQ(iq.Buffer{}, 1e6)
	if err != nil {
		t.Fatalf("AnalyzeIQ(empty) = %v, want a null result and no error (§7 empty_input is non-fatal)", err)
	}
	assertBottomResult(t, result)
}

func TestAnalyzeIQ_NegativeNoiseOverrideRejected(t *testing.T) {
	buf := iq.FromReal(make([]float64, minAnalyzableSamples))
	_, err := AnalyzeIQ(buf, 1e6, WithNoise(-1))
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Kind != KindBadOverride {
		t.Fatalf("AnalyzeIQ(negative noise) error = %v, want Kind %q", err, KindBadOverride)
	}
}

func TestAnalyzeIQ_InvalidModulationOverrideRejected(t *testing.T) {
	buf := iq.FromReal(make([]float64, minAnalyzableSamples))
	_, err := AnalyzeIQ(buf, 1e6, WithModulation(modulation.Modulation("QAM")))
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Kind != KindBadOverride {
		t.Fatalf("AnalyzeIQ(bad modulation) error = %v, want Kind %q", err, KindBadOverride)
	}
}

func TestAnalyzeIQ_NoiseDominatedCapture(t *testing.T) {
	stream := make([]float64, 200)
	for i := range stream {
		stream[i] = 0.5
	}
	buf := iq.FromReal(stream)
	// Force the noise floor above the capture's peak magnitude (1.0 vs
	// 0.5): IsNoiseDominated always trips.
	result, err := AnalyzeIQ(buf, 1e6, WithNoise(1.0))
	if err != nil {
		t.Fatalf("AnalyzeIQ(noise-dominated) = %v, want a null result and no error (§7 noise_dominated is non-fatal)", err)
	}
	assertBottomResult(t, result)
}

// buildAmplitudeKeyedMessage stretches each bit of pattern into
// samplesPerBit samples, using high for '1' and low for '0'.
func buildAmplitudeKeyedMessage(pattern string, samplesPerBit int, low, high float64) []float64 {
	var out []float64
	for _, c := range pattern {
		v := low
		if c == '1' {
			v = high
		}
		for i := 0; i < samplesPerBit; i++ {
			out = append(out, v)
		}
	}
	return out
}

func TestAnalyzeIQ_RealShortcutRecoversTwoIdenticalMessages(t *testing.T) {
	const pattern = "10110010"
	msg := buildAmplitudeKeyedMessage(pattern, 4, 0.3, 1.0)
	gap := make([]float64, 10)
	for i := range gap {
		gap[i] = 0.01
	}

	stream := append(append(append([]float64{}, msg...), gap...), msg...)
	buf := iq.FromReal(stream)

	cfg := config.Default()
	cfg.MinPause = 5
	cfg.MinPlateau = 4
	cfg.PauseMultiple = 2
	cfg.HysteresisIn = 0.5
	cfg.HysteresisOut = 0.3

	result, err := AnalyzeIQ(buf, 1e6, WithConfig(cfg), WithNoise(0.1))
	if err != nil {
		t.Fatalf("AnalyzeIQ() = %v, want nil error", err)
	}

	if result.Parameters.BitLength != 4 {
		t.Errorf("BitLength = %d, want 4", result.Parameters.BitLength)
	}
	if math.Abs(result.Parameters.Center-0.65) > 1e-9 {
		t.Errorf("Center = %f, want 0.65", result.Parameters.Center)
	}
	if result.Parameters.NoiseFloor != 0.1 {
		t.Errorf("NoiseFloor = %f, want the override 0.1", result.Parameters.NoiseFloor)
	}

	if len(result.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(result.Messages))
	}
	for i, m := range result.Messages {
		if m.Bits != pattern {
			t.Errorf("Messages[%d].Bits = %q, want %q", i, m.Bits, pattern)
		}
	}
	if result.Messages[0].Pause != 10 {
		t.Errorf("Messages[0].Pause = %d, want 10", result.Messages[0].Pause)
	}
	if result.Messages[1].Pause != 0 {
		t.Errorf("Messages[1].Pause = %d, want 0", result.Messages[1].Pause)
	}

	if len(result.MessageTypes) != 1 {
		t.Fatalf("got %d message types, want 1", len(result.MessageTypes))
	}
	mt := result.MessageTypes[0]
	if mt.ID != "Default" {
		t.Errorf("MessageType ID = %q, want %q", mt.ID, "Default")
	}
	if len(mt.Fields) != 1 || mt.Fields[0].Start != 0 || mt.Fields[0].End != 8 {
		t.Errorf("Fields = %+v, want a single [0,8) field (two identical messages induce only a preamble)", mt.Fields)
	}
}

type stubDecoder struct {
	samples Samples
	err     error
}

func (d stubDecoder) Open(ctx context.Context, source string) (Samples, error) {
	return d.samples, d.err
}

func TestAnalyzeFromSource_DecoderFailureWrapped(t *testing.T) {
	dec := stubDecoder{err: errors.New("boom")}
	_, err := AnalyzeFromSource(context.Background(), dec, "whatever")
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Kind != KindDecoderFailure {
		t.Fatalf("AnalyzeFromSource() error = %v, want Kind %q", err, KindDecoderFailure)
	}
}

func TestAnalyzeFromSource_DelegatesToDecoder(t *testing.T) {
	dec := stubDecoder{samples: Samples{Buffer: iq.FromReal(make([]float64, minAnalyzableSamples)), SampleRateHz: 2e6}}
	_, err := AnalyzeFromSource(context.Background(), dec, "whatever", WithNoise(-1))
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Kind != KindBadOverride {
		t.Fatalf("AnalyzeFromSource() error = %v, want the override validated after a successful decode", err)
	}
}

// buildFSKBurst generates a frequency-shift-keyed burst: bit '1' advances
// the cumulative carrier phase by pi/2 each sample, bit '0' holds it flat.
// The leading sample anchors phase at 0, so the len(bits)*samplesPerBit
// steps of the returned Frequency() stream line up exactly with the bits.
func buildFSKBurst(bits string, samplesPerBit int) (i, q []float64) {
	phase := 0.0
	i = append(i, math.Cos(phase))
	q = append(q, math.Sin(phase))
	for _, c := range bits {
		inc := 0.0
		if c == '1' {
			inc = math.Pi / 2
		}
		for s := 0; s < samplesPerBit; s++ {
			phase += inc
			i = append(i, math.Cos(phase))
			q = append(q, math.Sin(phase))
		}
	}
	return i, q
}

// buildPSKBurst generates a phase-shift-keyed burst: each bit holds the
// carrier at phase 0 ('0') or pi ('1') for samplesPerBit samples flat, with
// no ramp between windows.
func buildPSKBurst(bits string, samplesPerBit int) (i, q []float64) {
	for _, c := range bits {
		iv, qv := 1.0, 0.0
		if c == '1' {
			iv = -1.0
		}
		for s := 0; s < samplesPerBit; s++ {
			i = append(i, iv)
			q = append(q, qv)
		}
	}
	return i, q
}

// repeatIQ builds n samples of a constant (iv, qv) pair, used as silence
// around a burst.
func repeatIQ(n int, iv, qv float64) (i, q []float64) {
	i = make([]float64, n)
	q = make([]float64, n)
	for k := range i {
		i[k] = iv
		q[k] = qv
	}
	return i, q
}

// burstConfig relaxes the pause/plateau minimums so a short synthetic
// burst, surrounded by a modest silence run, segments cleanly.
func burstConfig() config.Config {
	cfg := config.Default()
	cfg.MinPause = 5
	cfg.MinPlateau = 4
	cfg.PauseMultiple = 2
	return cfg
}

func fskBuffer(bits string, samplesPerBit int) iq.Buffer {
	gi, gq := repeatIQ(50, 0.01, 0)
	bi, bq := buildFSKBurst(bits, samplesPerBit)
	i := append(append(append([]float64{}, gi...), bi...), gi...)
	q := append(append(append([]float64{}, gq...), bq...), gq...)
	buf, err := iq.FromComplex(i, q)
	if err != nil {
		panic(err)
	}
	return buf
}

func TestRoundTrip_P1_FSK(t *testing.T) {
	const bits = "10010"
	const samplesPerBit = 20

	result, err := AnalyzeIQ(fskBuffer(bits, samplesPerBit), 1e6,
		WithConfig(burstConfig()), WithNoise(0.05), WithModulation(modulation.FSK))
	if err != nil {
		t.Fatalf("AnalyzeIQ() = %v, want nil error", err)
	}

	if result.Parameters.Modulation != modulation.FSK {
		t.Errorf("Modulation = %v, want %v", result.Parameters.Modulation, modulation.FSK)
	}
	if result.Parameters.ModulationAmbiguous {
		t.Error("ModulationAmbiguous = true, want false (forced by the override)")
	}
	if result.Parameters.BitLength != samplesPerBit {
		t.Errorf("BitLength = %d, want %d", result.Parameters.BitLength, samplesPerBit)
	}
	if math.Abs(result.Parameters.Center-math.Pi/4) > 1e-6 {
		t.Errorf("Center = %f, want pi/4", result.Parameters.Center)
	}

	if len(result.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(result.Messages))
	}
	if result.Messages[0].Bits != bits {
		t.Errorf("Messages[0].Bits = %q, want %q (a clean round trip)", result.Messages[0].Bits, bits)
	}
	if len(result.MessageTypes) != 0 {
		t.Errorf("got %d message types, want 0 (a single message never clusters)", len(result.MessageTypes))
	}
}

func TestRoundTrip_P1_PSK(t *testing.T) {
	const bits = "10010"
	const samplesPerBit = 16

	gi, gq := repeatIQ(50, 0.01, 0)
	bi, bq := buildPSKBurst(bits, samplesPerBit)
	i := append(append(append([]float64{}, gi...), bi...), gi...)
	q := append(append(append([]float64{}, gq...), bq...), gq...)
	buf, err := iq.FromComplex(i, q)
	if err != nil {
		t.Fatalf("iq.FromComplex() = %v", err)
	}

	result, err := AnalyzeIQ(buf, 1e6,
		WithConfig(burstConfig()), WithNoise(0.05), WithModulation(modulation.PSK))
	if err != nil {
		t.Fatalf("AnalyzeIQ() = %v, want nil error", err)
	}

	if result.Parameters.Modulation != modulation.PSK {
		t.Errorf("Modulation = %v, want %v", result.Parameters.Modulation, modulation.PSK)
	}
	if result.Parameters.BitLength != samplesPerBit {
		t.Errorf("BitLength = %d, want %d", result.Parameters.BitLength, samplesPerBit)
	}
	if math.Abs(result.Parameters.Center-math.Pi/4) > 1e-6 {
		t.Errorf("Center = %f, want pi/4", result.Parameters.Center)
	}

	if len(result.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(result.Messages))
	}
	// The PSK demod stream is phase rotation, which marks transitions, not
	// absolute symbols: a decoded '1' is a 0->pi rising edge, so the
	// recovered bits are the edge pattern of "10010", not "10010" itself.
	const wantBits = "00100"
	if result.Messages[0].Bits != wantBits {
		t.Errorf("Messages[0].Bits = %q, want %q", result.Messages[0].Bits, wantBits)
	}
}

func TestDeterministic_P3(t *testing.T) {
	run := func() *AnalysisResult {
		result, err := AnalyzeIQ(fskBuffer("10010", 20), 1e6,
			WithConfig(burstConfig()), WithNoise(0.05), WithModulation(modulation.FSK))
		if err != nil {
			t.Fatalf("AnalyzeIQ() = %v, want nil error", err)
		}
		return result
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("AnalyzeIQ() is not deterministic on identical input:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestNoiseOnly_P7(t *testing.T) {
	// A flat capture just above the noise-dominated cutoff but below the
	// rise threshold never forms a plateau: it reads as noise throughout,
	// not as one oversized noise-dominated burst. Per §7, no_plateaus does
	// not raise: it returns a null result.
	stream := make([]float64, 200)
	for i := range stream {
		stream[i] = 0.053
	}
	buf := iq.FromReal(stream)

	result, err := AnalyzeIQ(buf, 1e6, WithNoise(0.05))
	if err != nil {
		t.Fatalf("AnalyzeIQ(noise-only) = %v, want a null result and no error", err)
	}
	assertBottomResult(t, result)
}
