package app

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sigproto/awre"
	"github.com/sigproto/awre/internal/config"
	"github.com/sigproto/awre/internal/decoder"
	"github.com/sigproto/awre/internal/dsp"
	"github.com/sigproto/awre/internal/noise"
	"github.com/sigproto/awre/internal/plot"
	"github.com/sigproto/awre/internal/profilestore"
	"github.com/sigproto/awre/internal/segment"
)

// Run executes one end-to-end analysis: load cfg's pipeline tunables,
// check the profile cache, run the analysis, write the JSON result and
// an optional debug PNG, and update the cache.
func Run(ctx context.Context, c *Config, logger *slog.Logger) error {
	pipelineCfg := config.Default()
	if c.ConfigPath != "" {
		var err error
		if pipelineCfg, err = config.Load(c.ConfigPath); err != nil {
			return fmt.Errorf("loading pipeline config: %w", err)
		}
	}

	var store *profilestore.Store
	if c.ProfileDB != "" {
		store = profilestore.New(c.ProfileDB)
		defer store.Close()

		var cached awre.AnalysisResult
		var cachedTypes []awre.MessageType
		if ok, err := store.Get(ctx, c.Fingerprint, &cached.Parameters, &cachedTypes); err != nil {
			logger.Warn("profile cache lookup failed", slog.String("error", err.Error()))
		} else if ok {
			logger.Info("profile cache hit", slog.String("fingerprint", c.Fingerprint))
		}
	}

	result, err := awre.AnalyzeFromSource(ctx, awre.FileDecoder{SampleRateHz: c.SampleRateHz}, c.Source,
		awre.WithConfig(pipelineCfg),
		awre.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", c.Source, err)
	}

	if err := writeJSON(c.OutputJSON, result); err != nil {
		return err
	}

	if c.PlotPath != "" {
		if err := writePlot(c.Source, c.PlotPath, result, logger); err != nil {
			logger.Warn("plot rendering failed", slog.String("error", err.Error()))
		}
	}

	if store != nil {
		if err := store.Put(ctx, c.Fingerprint, result.Parameters, result.MessageTypes); err != nil {
			logger.Warn("profile cache update failed", slog.String("error", err.Error()))
		}
	}

	return nil
}

func writeJSON(path string, result *awre.AnalysisResult) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

// writePlot recomputes the magnitude trace and first-pass plateaus
// directly from the capture — awreinspect's own lightweight slice of
// the pipeline, independent of the library's internal state — and
// renders them plus the first message type's field layout to a PNG.
func writePlot(source, plotPath string, result *awre.AnalysisResult, logger *slog.Logger) error {
	format, ok := decoder.DetectFormat(filepath.Ext(source))
	if !ok {
		return fmt.Errorf("no known decoder for %s", source)
	}
	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("opening %s: %w", source, err)
	}
	defer f.Close()

	buf, err := decoder.Decode(f, format)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", source, err)
	}

	var m []float64
	if buf.RealOnly {
		m = absAll(buf.I)
	} else {
		m = dsp.New(buf.I, buf.Q).Magnitude()
	}

	cfg := config.Default()
	eta := noise.Estimate(m, cfg.NoiseWindow, cfg.NoiseQuantile, cfg.NoiseFloor)
	plateaus := segment.Find(m, eta, cfg.HysteresisIn, cfg.HysteresisOut, cfg.MinPause, cfg.MinPlateau)

	bitLength := 0
	if result.Parameters != nil {
		bitLength = result.Parameters.BitLength
	}

	var fields []plot.Field
	fieldPlateau := -1
	if len(result.MessageTypes) > 0 && len(result.MessageTypes[0].Fields) > 0 {
		fieldPlateau = 0
		for _, fld := range result.MessageTypes[0].Fields {
			fields = append(fields, plot.Field{Name: fld.Name, Start: fld.Start * bitLength, End: fld.End * bitLength})
		}
	}

	img := plot.Magnitude(m, plateaus, fields, fieldPlateau, plot.DefaultConfig())

	annotator, err := plot.NewAnnotator(nil)
	if err != nil {
		return fmt.Errorf("building annotator: %w", err)
	}
	annotator.Caption(img, 4, 14, plot.SummaryLine(len(m), bitLength), color.White)

	out, err := os.Create(plotPath)
	if err != nil {
		return fmt.Errorf("creating plot file %s: %w", plotPath, err)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("encoding plot png: %w", err)
	}

	logger.Info("wrote debug plot", slog.String("path", plotPath))
	return nil
}

func absAll(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if v < 0 {
			v = -v
		}
		out[i] = v
	}
	return out
}
