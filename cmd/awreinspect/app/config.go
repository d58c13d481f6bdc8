// Package app implements awreinspect, a small command-line harness for
// running the analysis pipeline against a capture file on disk —
// grounded on the teacher's cmd/heatmap/app: a flag.FlagSet-backed
// Config plus a Run entry point main.go calls into.
package app

import (
	"errors"
	"flag"
	"fmt"
)

// Config holds awreinspect's command-line options.
type Config struct {
	Source       string
	SampleRateHz float64
	ConfigPath   string
	OutputJSON   string
	PlotPath     string
	ProfileDB    string
	Fingerprint  string
	Verbose      bool
}

// NewConfigFromCLI parses os.Args (via the flag package's default
// FlagSet) into a Config, the same one-shot parse-then-validate shape
// as the teacher's app.NewConfigFromCLI.
func NewConfigFromCLI() (*Config, error) {
	c := &Config{}

	flag.StringVar(&c.Source, "source", "", "Path to the capture file")
	flag.Float64Var(&c.SampleRateHz, "rate", 0, "Sample rate in Hz")
	flag.StringVar(&c.ConfigPath, "config", "", "Path to a pipeline config YAML file (optional)")
	flag.StringVar(&c.OutputJSON, "o", "", "Path to write the JSON analysis result (default: stdout)")
	flag.StringVar(&c.PlotPath, "plot", "", "Path to write a debug PNG of the magnitude trace (optional)")
	flag.StringVar(&c.ProfileDB, "profile-db", "", "Path to a SQLite profile cache (optional)")
	flag.StringVar(&c.Fingerprint, "fingerprint", "", "Cache key to use with -profile-db (defaults to -source)")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable debug logging")
	flag.Parse()

	var err error
	switch {
	case c.Source == "":
		err = errors.New("source is required")
	case c.SampleRateHz <= 0:
		err = fmt.Errorf("rate must be positive, got %f", c.SampleRateHz)
	}
	if err != nil {
		flag.Usage()
		return nil, err
	}

	if c.Fingerprint == "" {
		c.Fingerprint = c.Source
	}
	return c, nil
}
