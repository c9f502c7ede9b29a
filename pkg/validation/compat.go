package validation

import (
	"fmt"

	"github.com/dd0wney/cluso-patchbay/pkg/ports"
)

// CheckPorts applies the direction, signal-type and channel checks to a
// resolved pair of ports. It returns CodeNone when the pair is compatible.
func CheckPorts(src, dst ports.Port) (Code, string) {
	if src.Direction != ports.Output {
		return CodeSourceDirection, ReasonSourceDirection
	}
	if dst.Direction != ports.Input {
		return CodeTargetDirection, ReasonTargetDirection
	}

	if !SignalCompatible(src.Signal, dst.Signal) {
		return CodeSignalMismatch, fmt.Sprintf("Signal type mismatch: %s → %s", src.Signal, dst.Signal)
	}

	if src.Signal == ports.Audio && dst.Signal == ports.Audio {
		cs, ct := src.ChannelCount(), dst.ChannelCount()
		if cs > ct {
			return CodeChannelMismatch, fmt.Sprintf("Channel mismatch: %d → %d", cs, ct)
		}
	}

	return CodeNone, ""
}

// SignalCompatible reports whether a src signal may feed a dst input:
// identical types always, plus audio-rate modulation of control inputs.
func SignalCompatible(src, dst ports.SignalType) bool {
	return src == dst || (src == ports.Audio && dst == ports.Control)
}
