package awre

import (
	"github.com/sigproto/awre/internal/awre"
	"github.com/sigproto/awre/internal/demod"
	"github.com/sigproto/awre/internal/modulation"
)

// SignalParameters is the estimated IQ parameter set of spec §3: the
// modulation class, bit length, decision center and noise floor a
// capture was analyzed with. AnalysisResult.Parameters is a pointer so a
// failed estimate can be represented as ⊥ (nil) rather than a zero value.
type SignalParameters struct {
	Modulation          modulation.Modulation `json:"modulation"`
	ModulationAmbiguous bool                  `json:"modulationAmbiguous"`
	BitLength           int                   `json:"bitLength"`
	Center              float64               `json:"center"`
	NoiseFloor          float64               `json:"noiseFloor"`
	SampleRateHz        float64               `json:"sampleRateHz"`
}

// Field is a re-export of the format finder's induced field, so callers
// of this package never need to import internal/awre directly.
type Field = awre.Field

// MessageType is a re-export of the format finder's message cluster.
type MessageType = awre.MessageType

// AnalysisResult is the full output of one analysis run (spec §3): the
// estimated signal parameters, the demodulated messages, and — when two
// or more messages were recovered — the induced protocol field layout
// per message type. Parameters is ⊥ (nil) when estimation failed for a
// non-fatal reason (§7): empty input, a noise-dominated capture, no
// plateaus, or an undetectable symbol rate. Messages and MessageTypes
// are empty in that case rather than nil, matching §6's "empty lists".
type AnalysisResult struct {
	Parameters   *SignalParameters `json:"parameters"`
	Messages     []demod.Message   `json:"messages"`
	MessageTypes []MessageType     `json:"messageTypes,omitempty"`
	NumMessages  int               `json:"num_messages"`
}
