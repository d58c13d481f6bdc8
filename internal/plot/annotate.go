package plot

import (
	"fmt"
	"image"
	"image/color"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Annotator draws text captions onto a rendered image. With a TrueType
// font it uses golang/freetype for scalable text, the same as the
// teacher's cmd/heatmap/app.Annotator; without one (no bundled font
// ships with this package) it falls back to x/image's fixed-width
// basicfont, so debug rendering never depends on an external asset.
type Annotator struct {
	ctx *freetype.Context
}

// NewAnnotator builds an Annotator. fontBytes may be nil, in which case
// Caption uses the basicfont fallback.
func NewAnnotator(fontBytes []byte) (*Annotator, error) {
	if len(fontBytes) == 0 {
		return &Annotator{}, nil
	}

	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("plot: parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(parsed)
	ctx.SetFontSize(12)
	ctx.SetHinting(font.HintingFull)

	return &Annotator{ctx: ctx}, nil
}

// Caption draws s at (x, y) in c.
func (a *Annotator) Caption(img *image.RGBA, x, y int, s string, c color.Color) {
	if a.ctx != nil {
		a.ctx.SetClip(img.Bounds())
		a.ctx.SetDst(img)
		a.ctx.SetSrc(image.NewUniform(c))
		_, _ = a.ctx.DrawString(s, freetype.Pt(x, y))
		return
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// SummaryLine formats a human-readable one-liner describing a trace —
// sample count and bit length — the way the teacher's drawInfo composes
// a "1 pixel = ..." caption with go-humanize.
func SummaryLine(numSamples, bitLength int) string {
	return fmt.Sprintf("%s samples, %d samples/symbol", humanize.Comma(int64(numSamples)), bitLength)
}
