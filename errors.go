package awre

import "fmt"

// Kind classifies why analysis failed (spec §7). modulation_ambiguous is
// deliberately absent here since it is not fatal — it's reported on
// SignalParameters.ModulationAmbiguous and only logged.
//
// Only KindBadOverride and KindDecoderFailure are ever returned as an
// *Error: the other four are non-fatal per §7's policy table and surface
// as a well-formed AnalysisResult with ⊥ parameters and empty message
// lists instead. They stay in this enum because the pipeline still logs
// which one fired on the way to that ⊥ result.
type Kind string

const (
	KindEmptyInput             Kind = "empty_input"
	KindNoiseDominated         Kind = "noise_dominated"
	KindNoPlateaus             Kind = "no_plateaus"
	KindSymbolRateUndetectable Kind = "symbol_rate_undetectable"
	KindBadOverride            Kind = "bad_override"
	KindDecoderFailure         Kind = "decoder_failure"
)

// Error is the error type AnalyzeFromSource/AnalyzeIQ's two fatal
// failures are returned as, grounded on the teacher's
// driver.ConfigError/RuntimeError split: a small typed wrapper callers
// can switch on via Kind, rather than matching error strings.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, msg: msg, err: err}
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("awre: %s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("awre: %s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error {
	return e.err
}
