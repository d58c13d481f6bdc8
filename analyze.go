// Package awre implements the automated radio-signal reverse-engineering
// pipeline: IQ parameter estimation (noise floor, modulation class,
// symbol rate, decision center), demodulation into bit-level messages,
// and protocol-field induction across two or more messages of the same
// type (internal/awre's AWRE format finder).
//
// AnalyzeIQ and AnalyzeFromSource are the two entry points (spec §6):
// the former takes an already-loaded IQ buffer, the latter delegates
// loading to a pluggable Decoder and runs the same pipeline on what it
// returns.
package awre

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/sigproto/awre/internal/awre"
	"github.com/sigproto/awre/internal/center"
	"github.com/sigproto/awre/internal/classify"
	"github.com/sigproto/awre/internal/config"
	"github.com/sigproto/awre/internal/demod"
	"github.com/sigproto/awre/internal/dsp"
	"github.com/sigproto/awre/internal/iq"
	"github.com/sigproto/awre/internal/modulation"
	"github.com/sigproto/awre/internal/noise"
	"github.com/sigproto/awre/internal/segment"
	"github.com/sigproto/awre/internal/symbolrate"
)

// AnalyzeIQ runs the full pipeline over an already-loaded IQ buffer.
func AnalyzeIQ(buf iq.Buffer, sampleRateHz float64, opts ...AnalyzeOption) (*AnalysisResult, error) {
	o := defaultAnalyzeOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return analyzeBuffer(buf, sampleRateHz, o)
}

// AnalyzeFromSource opens source with dec and runs the full pipeline on
// the samples it returns.
func AnalyzeFromSource(ctx context.Context, dec Decoder, source string, opts ...AnalyzeOption) (*AnalysisResult, error) {
	o := defaultAnalyzeOptions()
	for _, opt := range opts {
		opt(&o)
	}

	samples, err := dec.Open(ctx, source)
	if err != nil {
		return nil, newError(KindDecoderFailure, "decoder failed to open "+source, err)
	}

	return analyzeBuffer(samples.Buffer, samples.SampleRateHz, o)
}

// minAnalyzableSamples is the §7 empty_input threshold: fewer than
// 2*bitLengthMin samples can't carry even one full symbol transition at
// the shortest bit length the pipeline will consider.
const minAnalyzableSamples = 16

// bottomResult is the §3/§6 ⊥ result: a well-formed AnalysisResult with
// null signal parameters and empty message/field lists, returned for
// every non-fatal failure (empty_input, noise_dominated, no_plateaus,
// symbol_rate_undetectable). Only bad_override and decoder_failure are
// fatal and returned as an *Error (§7's policy table).
func bottomResult() *AnalysisResult {
	return &AnalysisResult{Messages: []demod.Message{}, MessageTypes: []MessageType{}}
}

func analyzeBuffer(buf iq.Buffer, sampleRateHz float64, o analyzeOptions) (*AnalysisResult, error) {
	if o.noiseOverride != nil && *o.noiseOverride < 0 {
		return nil, newError(KindBadOverride, "noise floor override must be non-negative", nil)
	}
	if o.modulationOverride != nil && !o.modulationOverride.Valid() {
		return nil, newError(KindBadOverride, "modulation override is not one of ASK, FSK, PSK", nil)
	}

	if buf.Len() < minAnalyzableSamples {
		o.logger.Warn("buffer has fewer than the minimum analyzable sample count, returning a null result",
			slog.String("kind", string(KindEmptyInput)))
		return bottomResult(), nil
	}

	cfg := o.cfg
	logger := o.logger

	if buf.RealOnly {
		return analyzeRealStream(buf.I, sampleRateHz, cfg, logger, o)
	}
	return analyzeIQStream(buf, sampleRateHz, cfg, logger, o)
}

// analyzeRealStream implements the §4.A shortcut: an already-demodulated
// real-valued capture skips straight to plateau detection and
// demodulation on the samples themselves, with no modulation class to
// decide.
func analyzeRealStream(stream []float64, sampleRateHz float64, cfg config.Config, logger *slog.Logger, o analyzeOptions) (*AnalysisResult, error) {
	m := absAll(stream)

	eta := resolveNoise(o, m, cfg)
	if noise.IsNoiseDominated(eta, m, cfg.NoiseDominatedFraction) {
		logger.Warn("noise floor dominates the capture, returning a null result",
			slog.String("kind", string(KindNoiseDominated)))
		return bottomResult(), nil
	}

	plateaus, ok := findPlateaus(m, eta, cfg, logger)
	if !ok {
		return bottomResult(), nil
	}

	bitLenGuess := dsp.AutocorrelationPeriod(sliceClamp(stream, longestPlateau(plateaus)), 16)

	modVal := modulation.Modulation("")
	if o.modulationOverride != nil {
		modVal = *o.modulationOverride
	}

	return finishPipeline(finishParams{
		m:            m,
		stream:       stream,
		eta:          eta,
		bitLenGuess:  bitLenGuess,
		modulation:   modVal,
		ambiguous:    false,
		plateaus:     plateaus,
		cfg:          cfg,
		logger:       logger,
		sampleRateHz: sampleRateHz,
	})
}

func analyzeIQStream(buf iq.Buffer, sampleRateHz float64, cfg config.Config, logger *slog.Logger, o analyzeOptions) (*AnalysisResult, error) {
	streams := dsp.New(buf.I, buf.Q)
	m := streams.Magnitude()

	eta := resolveNoise(o, m, cfg)
	if noise.IsNoiseDominated(eta, m, cfg.NoiseDominatedFraction) {
		logger.Warn("noise floor dominates the capture, returning a null result",
			slog.String("kind", string(KindNoiseDominated)))
		return bottomResult(), nil
	}

	plateaus, ok := findPlateaus(m, eta, cfg, logger)
	if !ok {
		return bottomResult(), nil
	}

	cls := classify.Classify(streams, plateaus, cfg.ModulationAmbiguityMargin)

	modVal, ambiguous := cls.Modulation, cls.Ambiguous
	if o.modulationOverride != nil {
		modVal, ambiguous = *o.modulationOverride, false
	} else if ambiguous {
		logger.Warn("modulation classification ambiguous, defaulting to FSK tie-break",
			slog.String("modulation", string(modVal)))
	}

	stream := selectStream(modVal, streams, cls.BitLenGuess)

	return finishPipeline(finishParams{
		m:            m,
		stream:       stream,
		eta:          eta,
		bitLenGuess:  cls.BitLenGuess,
		modulation:   modVal,
		ambiguous:    ambiguous,
		plateaus:     plateaus,
		cfg:          cfg,
		logger:       logger,
		sampleRateHz: sampleRateHz,
		streams:      streams,
	})
}

// finishParams bundles the state the rest of the pipeline shares past
// the point where the IQ and real-valued paths converge.
type finishParams struct {
	m            []float64
	stream       []float64
	eta          float64
	bitLenGuess  int
	modulation   modulation.Modulation
	ambiguous    bool
	plateaus     []segment.Plateau
	cfg          config.Config
	logger       *slog.Logger
	sampleRateHz float64
	streams      *dsp.Streams // nil for the real-valued shortcut
}

// finishPipeline runs §4.F through §4.I: symbol-rate estimation, the
// refined second-pass segmentation, center estimation, demodulation and
// format finding.
func finishPipeline(p finishParams) (*AnalysisResult, error) {
	bitLength, ok := symbolrate.Estimate(p.stream, p.plateaus, p.cfg.RunLengthTolerance)
	if !ok {
		p.logger.Warn("no consistent run-length GCD of at least 2 samples/symbol, returning a null result",
			slog.String("kind", string(KindSymbolRateUndetectable)))
		return bottomResult(), nil
	}

	refinedMinPause := p.cfg.PauseMultiple * bitLength
	refined := segment.Find(p.m, p.eta, p.cfg.HysteresisIn, p.cfg.HysteresisOut, refinedMinPause, p.cfg.MinPlateau)
	if len(refined) == 0 {
		p.logger.Warn("refined segmentation pass found no plateaus, keeping the first pass",
			slog.Int("bitLength", bitLength))
		refined = p.plateaus
	}

	stream := p.stream
	if p.streams != nil && p.modulation == modulation.PSK {
		stream = p.streams.PhaseRotation(bitLength)
	}

	centerVal, ok := center.Estimate(stream, refined, p.cfg.MinClusterFraction)
	if !ok {
		centerVal = medianOf(gatherPlateauSamples(stream, refined))
		p.logger.Warn("two-means clustering degenerate, falling back to median center")
	}

	tol := center.Tolerance(bitLength, p.cfg.ToleranceFraction)
	messages := demod.Demodulate(stream, refined, centerVal, bitLength, tol, p.cfg.MaxAmbiguousSymbolFraction)

	messageTypes := awre.Find(messages, awre.Config{ChecksumCatalogue: p.cfg.ChecksumCatalogue})

	return &AnalysisResult{
		Parameters: &SignalParameters{
			Modulation:          p.modulation,
			ModulationAmbiguous: p.ambiguous,
			BitLength:           bitLength,
			Center:              centerVal,
			NoiseFloor:          p.eta,
			SampleRateHz:        p.sampleRateHz,
		},
		Messages:     messages,
		MessageTypes: messageTypes,
		NumMessages:  len(messages),
	}, nil
}

// selectStream picks the modulation-appropriate demod stream (spec §3):
// magnitude for ASK, instantaneous frequency for FSK, phase rotation
// normalized to the initial bit-length guess for PSK.
func selectStream(m modulation.Modulation, streams *dsp.Streams, bitLenGuess int) []float64 {
	switch m {
	case modulation.ASK:
		return streams.Magnitude()
	case modulation.PSK:
		return streams.PhaseRotation(bitLenGuess)
	default:
		return streams.Frequency()
	}
}

func resolveNoise(o analyzeOptions, m []float64, cfg config.Config) float64 {
	if o.noiseOverride != nil {
		return *o.noiseOverride
	}
	return noise.Estimate(m, cfg.NoiseWindow, cfg.NoiseQuantile, cfg.NoiseFloor)
}

func findPlateaus(m []float64, eta float64, cfg config.Config, logger *slog.Logger) ([]segment.Plateau, bool) {
	plateaus := segment.Find(m, eta, cfg.HysteresisIn, cfg.HysteresisOut, cfg.MinPause, cfg.MinPlateau)
	if len(plateaus) == 0 {
		logger.Warn("no plateaus found above the noise floor, returning a null result",
			slog.String("kind", string(KindNoPlateaus)))
		return nil, false
	}
	return plateaus, true
}

func longestPlateau(plateaus []segment.Plateau) segment.Plateau {
	longest := plateaus[0]
	for _, p := range plateaus[1:] {
		if p.Len() > longest.Len() {
			longest = p
		}
	}
	return longest
}

func sliceClamp(x []float64, p segment.Plateau) []float64 {
	end := p.End
	if end > len(x) {
		end = len(x)
	}
	if p.Start >= end {
		return nil
	}
	return x[p.Start:end]
}

func absAll(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Abs(v)
	}
	return out
}

func gatherPlateauSamples(stream []float64, plateaus []segment.Plateau) []float64 {
	var out []float64
	for _, p := range plateaus {
		out = append(out, sliceClamp(stream, p)...)
	}
	return out
}

func medianOf(x []float64) float64 {
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
