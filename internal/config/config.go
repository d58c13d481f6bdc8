// Package config holds the immutable tunables threaded through every stage
// of the analysis pipeline. There is no global mutable state: callers build
// a Config value (or accept the defaults) and pass it down explicitly.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sigproto/awre/internal/checksum"
)

// Config collects the tunable parameters of the estimator, segmenter,
// classifier and format finder. The zero value is not valid; use
// Default or Load.
type Config struct {
	// Noise estimation (§4.C)
	NoiseWindow   int     `yaml:"noiseWindow"`   // W, window length in samples
	NoiseQuantile float64 `yaml:"noiseQuantile"` // q, quantile of window means
	NoiseFloor    float64 `yaml:"noiseFloor"`    // clamp floor to avoid zero-threshold hazards

	// Segmentation (§4.D)
	HysteresisIn  float64 `yaml:"hysteresisIn"`  // h_in
	HysteresisOut float64 `yaml:"hysteresisOut"` // h_out
	MinPause      int     `yaml:"minPause"`      // samples of silence separating plateaus, first-pass default
	MinPlateau    int     `yaml:"minPlateau"`    // glitch rejection threshold
	PauseMultiple int     `yaml:"pauseMultiple"` // min_pause = PauseMultiple * bit_length once known

	// Classification (§4.E)
	ModulationAmbiguityMargin float64 `yaml:"modulationAmbiguityMargin"` // §7 modulation_ambiguous trigger

	// Symbol rate (§4.F)
	RunLengthTolerance float64 `yaml:"runLengthTolerance"` // ±10% GCD tolerance

	// Center & tolerance (§4.G)
	MinClusterFraction float64 `yaml:"minClusterFraction"` // each 2-means cluster must hold >= this fraction
	ToleranceFraction  float64 `yaml:"toleranceFraction"`  // t = round(bit_length * ToleranceFraction)

	// Demodulation (§4.H)
	MaxAmbiguousSymbolFraction float64 `yaml:"maxAmbiguousSymbolFraction"` // drop plateau above this

	// Noise-dominated guard (§7)
	NoiseDominatedFraction float64 `yaml:"noiseDominatedFraction"`

	// Format finder (§4.I)
	ChecksumCatalogue []checksum.Algorithm `yaml:"-"` // not YAML-serializable; set via code
}

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		NoiseWindow:   64,
		NoiseQuantile: 0.05,
		NoiseFloor:    1e-6,

		HysteresisIn:  0.10,
		HysteresisOut: 0.05,
		MinPause:      1000,
		MinPlateau:    10,
		PauseMultiple: 8,

		ModulationAmbiguityMargin: 0.10,

		RunLengthTolerance: 0.10,

		MinClusterFraction: 0.05,
		ToleranceFraction:  0.05,

		MaxAmbiguousSymbolFraction: 0.25,

		NoiseDominatedFraction: 0.95,

		ChecksumCatalogue: checksum.DefaultCatalogue(),
	}
}

// Load reads a YAML configuration file and overlays it on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the configuration describes a usable pipeline.
func (c Config) Validate() error {
	if c.NoiseWindow <= 0 {
		return fmt.Errorf("config: noiseWindow must be positive: %d", c.NoiseWindow)
	}
	if c.NoiseQuantile <= 0 || c.NoiseQuantile >= 1 {
		return fmt.Errorf("config: noiseQuantile must be in (0,1): %f", c.NoiseQuantile)
	}
	if c.HysteresisIn < 0 || c.HysteresisOut < 0 {
		return fmt.Errorf("config: hysteresis margins must be non-negative")
	}
	if c.MinPlateau <= 0 {
		return fmt.Errorf("config: minPlateau must be positive: %d", c.MinPlateau)
	}
	if c.PauseMultiple <= 0 {
		return fmt.Errorf("config: pauseMultiple must be positive: %d", c.PauseMultiple)
	}
	if c.MinClusterFraction <= 0 || c.MinClusterFraction >= 0.5 {
		return fmt.Errorf("config: minClusterFraction must be in (0,0.5): %f", c.MinClusterFraction)
	}
	if c.ToleranceFraction <= 0 || c.ToleranceFraction >= 0.5 {
		return fmt.Errorf("config: toleranceFraction must be in (0,0.5): %f", c.ToleranceFraction)
	}
	if c.MaxAmbiguousSymbolFraction <= 0 || c.MaxAmbiguousSymbolFraction >= 1 {
		return fmt.Errorf("config: maxAmbiguousSymbolFraction must be in (0,1): %f", c.MaxAmbiguousSymbolFraction)
	}
	if len(c.ChecksumCatalogue) == 0 {
		return fmt.Errorf("config: checksum catalogue must not be empty")
	}
	return nil
}
