package awre

import (
	"context"
	"fmt"

	"github.com/sigproto/awre/internal/iq"
)

// Samples is what a Decoder hands back after opening a capture: a
// normalized IQ buffer and the sample rate it was captured at.
type Samples struct {
	Buffer       iq.Buffer
	SampleRateHz float64
}

// Decoder opens a capture file format and returns its samples, the
// pluggable counterpart of the teacher's sdr.Handler: AnalyzeFromSource
// knows nothing about any particular container format, it only calls
// Open and runs the returned buffer through the pipeline.
type Decoder interface {
	Open(ctx context.Context, source string) (Samples, error)
}

// DecoderKind classifies why a Decoder failed to open a source.
type DecoderKind string

const (
	DecoderUnknownFormat      DecoderKind = "unknown_format"
	DecoderCorruptHeader      DecoderKind = "corrupt_header"
	DecoderUnsupportedVariant DecoderKind = "unsupported_variant"
)

// DecoderError is returned by a Decoder's Open method.
type DecoderError struct {
	Kind DecoderKind
	Path string
	err  error
}

func NewDecoderError(kind DecoderKind, path string, err error) *DecoderError {
	return &DecoderError{Kind: kind, Path: path, err: err}
}

func (e *DecoderError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("decoder: %s: %s: %v", e.Kind, e.Path, e.err)
	}
	return fmt.Sprintf("decoder: %s: %s", e.Kind, e.Path)
}

func (e *DecoderError) Unwrap() error {
	return e.err
}
