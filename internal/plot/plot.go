// Package plot renders a debug PNG of one analysis run: the magnitude
// trace, the plateaus found on it, and the induced field boundaries
// overlaid on whichever plateau the caller picks. Grounded on the
// teacher's cmd/heatmap/app (image.go/color.go/render.go): a
// fixed-palette raster built by direct pixel Set calls, scaled with
// golang.org/x/image/draw the way the heatmap renderer composites its
// spectrogram tiles, annotated with golang/freetype the way
// cmd/heatmap/app/annotate.go labels its axes.
package plot

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/sigproto/awre/internal/segment"
)

// Field is the minimal field-boundary shape the renderer needs to draw
// a label; callers convert their own field type into this one field by
// field, so this package never needs to import the format finder.
// Start and End are sample offsets from the start of the plateau the
// field is drawn on.
type Field struct {
	Name  string
	Start int
	End   int
}

// Config controls the raster's dimensions and palette.
type Config struct {
	Width, Height int
	TraceColor    color.Color
	PlateauColor  color.Color
	FieldColor    color.Color
	Background    color.Color
}

// DefaultConfig returns a legible default palette at a common debug
// image size.
func DefaultConfig() Config {
	return Config{
		Width:        1200,
		Height:       300,
		TraceColor:   color.RGBA{0x30, 0xb0, 0xf0, 0xff},
		PlateauColor: color.RGBA{0x40, 0x40, 0x40, 0xff},
		FieldColor:   color.RGBA{0xf0, 0x90, 0x20, 0xff},
		Background:   color.Black,
	}
}

// Magnitude renders the magnitude envelope m, shading the sample ranges
// covered by plateaus and, within fieldPlateau (an index into plateaus,
// or -1 to skip), the induced field boundaries.
func Magnitude(m []float64, plateaus []segment.Plateau, fields []Field, fieldPlateau int, cfg Config) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	fillBackground(img, cfg.Background)

	trace := traceColumns(m, cfg.Width)
	drawTrace(img, trace, cfg)

	inPlateau := make([]bool, cfg.Width)
	for _, p := range plateaus {
		markRange(inPlateau, columnOf(p.Start, len(m), cfg.Width), columnOf(p.End, len(m), cfg.Width))
	}
	shadeTop(img, inPlateau, cfg.PlateauColor)

	if fieldPlateau >= 0 && fieldPlateau < len(plateaus) {
		p := plateaus[fieldPlateau]
		l := p.Len()
		for _, f := range fields {
			start := p.Start + f.Start*l/maxInt(l, 1)
			end := p.Start + f.End*l/maxInt(l, 1)
			startCol := columnOf(start, len(m), cfg.Width)
			endCol := columnOf(end, len(m), cfg.Width)
			drawFieldMarker(img, startCol, endCol, cfg.FieldColor)
		}
	}

	return img
}

// traceColumns resamples m to width columns using golang.org/x/image/
// draw's Catmull-Rom scaler over a 1-row, 8-bit grayscale intermediate
// image; each column is an interpolated magnitude, not the maximum of
// the samples it covers. This is the same "build a small image, let the scaler do
// the resampling" approach the heatmap renderer uses when a spectrum
// tile doesn't line up pixel-for-pixel with the display width.
func traceColumns(m []float64, width int) []float64 {
	if len(m) == 0 || width <= 0 {
		return make([]float64, width)
	}

	maxV := m[0]
	for _, v := range m[1:] {
		if v > maxV {
			maxV = v
		}
	}
	if maxV <= 0 {
		maxV = 1
	}

	src := image.NewGray(image.Rect(0, 0, len(m), 1))
	for i, v := range m {
		level := v / maxV * 255
		if level > 255 {
			level = 255
		}
		if level < 0 {
			level = 0
		}
		src.SetGray(i, 0, color.Gray{Y: uint8(level)})
	}

	dst := image.NewGray(image.Rect(0, 0, width, 1))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	out := make([]float64, width)
	for i := 0; i < width; i++ {
		out[i] = float64(dst.GrayAt(i, 0).Y) / 255 * maxV
	}
	return out
}

func drawTrace(img *image.RGBA, trace []float64, cfg Config) {
	maxV := trace[0]
	for _, v := range trace[1:] {
		if v > maxV {
			maxV = v
		}
	}
	if maxV <= 0 {
		maxV = 1
	}

	plotHeight := cfg.Height - 20
	for x, v := range trace {
		h := int(v / maxV * float64(plotHeight))
		for y := 0; y < h; y++ {
			img.Set(x, cfg.Height-1-y, cfg.TraceColor)
		}
	}
}

func shadeTop(img *image.RGBA, inPlateau []bool, c color.Color) {
	for x, on := range inPlateau {
		if !on {
			continue
		}
		for y := 0; y < 6; y++ {
			img.Set(x, y, c)
		}
	}
}

func drawFieldMarker(img *image.RGBA, startCol, endCol int, c color.Color) {
	if endCol <= startCol {
		endCol = startCol + 1
	}
	for x := startCol; x < endCol && x < img.Bounds().Dx(); x++ {
		for y := 6; y < 12; y++ {
			img.Set(x, y, c)
		}
	}
}

func fillBackground(img *image.RGBA, c color.Color) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

func markRange(flags []bool, start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(flags) {
		end = len(flags)
	}
	for i := start; i < end; i++ {
		flags[i] = true
	}
}

func columnOf(sampleIndex, totalSamples, width int) int {
	if totalSamples <= 0 {
		return 0
	}
	col := sampleIndex * width / totalSamples
	if col < 0 {
		col = 0
	}
	if col >= width {
		col = width - 1
	}
	return col
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
