package awre

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sigproto/awre/internal/decoder"
)

// FileDecoder is the built-in Decoder for the raw interleaved IQ
// formats internal/decoder understands, selected by file extension. Its
// sample rate isn't recoverable from these headerless formats, so
// callers supply it directly.
type FileDecoder struct {
	SampleRateHz float64
}

// Open implements Decoder.
func (d FileDecoder) Open(ctx context.Context, source string) (Samples, error) {
	if err := ctx.Err(); err != nil {
		return Samples{}, err
	}

	format, ok := decoder.DetectFormat(filepath.Ext(source))
	if !ok {
		return Samples{}, NewDecoderError(DecoderUnknownFormat, source, nil)
	}

	f, err := os.Open(source)
	if err != nil {
		return Samples{}, NewDecoderError(DecoderCorruptHeader, source, err)
	}
	defer f.Close()

	buf, err := decoder.Decode(f, format)
	if err != nil {
		return Samples{}, NewDecoderError(DecoderCorruptHeader, source, err)
	}

	return Samples{Buffer: buf, SampleRateHz: d.SampleRateHz}, nil
}
