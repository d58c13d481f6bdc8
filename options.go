package awre

import (
	"io"
	"log/slog"

	"github.com/sigproto/awre/internal/config"
	"github.com/sigproto/awre/internal/modulation"
)

// analyzeOptions collects what an AnalyzeOption can override, in the
// same functional-options shape as the teacher's sdr.NewDevice.
type analyzeOptions struct {
	cfg                config.Config
	logger             *slog.Logger
	noiseOverride      *float64
	modulationOverride *modulation.Modulation
}

func defaultAnalyzeOptions() analyzeOptions {
	return analyzeOptions{
		cfg:    config.Default(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// AnalyzeOption configures one run of AnalyzeFromSource or AnalyzeIQ.
type AnalyzeOption func(*analyzeOptions)

// WithConfig replaces the pipeline's tunables wholesale.
func WithConfig(cfg config.Config) AnalyzeOption {
	return func(o *analyzeOptions) {
		o.cfg = cfg
	}
}

// WithLogger attaches a logger for pipeline-stage diagnostics,
// including the modulation_ambiguous log-only notice (§7).
func WithLogger(logger *slog.Logger) AnalyzeOption {
	return func(o *analyzeOptions) {
		o.logger = logger
	}
}

// WithNoise overrides the noise-floor estimate, skipping §4.C entirely.
func WithNoise(floor float64) AnalyzeOption {
	return func(o *analyzeOptions) {
		o.noiseOverride = &floor
	}
}

// WithModulation overrides the classifier's decision, skipping §4.E.
// bit_length/center estimation still run against the stream the
// override implies.
func WithModulation(m modulation.Modulation) AnalyzeOption {
	return func(o *analyzeOptions) {
		o.modulationOverride = &m
	}
}
