package ao

// Signal discriminates Event payloads. The button classifier consumes
// SigRawEdge and emits the cooked gesture signals; the LED actor
// consumes the SigLed commands.
type Signal uint8

const (
	SigNone Signal = iota
	SigRawEdge
	SigButtonPressed
	SigButtonReleased
	SigButtonSingleClick
	SigButtonDoubleClick
	SigButtonLongPress
	SigLedOn
	SigLedOff
	SigLedToggle

	// SigPollTick re-enters a classifier during its double-click wait.
	// It never leaves the instance that posted it; Param carries the
	// wait generation token instead of a hold duration.
	SigPollTick
)

// Event is a fixed-size notification queued by value: constructed at
// the post site, copied into the queue, discarded after dispatch.
// Param is the hold duration in milliseconds for SigButtonReleased and
// SigButtonLongPress, and 0 for every other exported signal.
type Event struct {
	Signal Signal
	Param  uint32
}

// String returns a short signal name for debug output.
func (s Signal) String() string {
	switch s {
	case SigNone:
		return "none"
	case SigRawEdge:
		return "raw_edge"
	case SigButtonPressed:
		return "pressed"
	case SigButtonReleased:
		return "released"
	case SigButtonSingleClick:
		return "single_click"
	case SigButtonDoubleClick:
		return "double_click"
	case SigButtonLongPress:
		return "long_press"
	case SigLedOn:
		return "led_on"
	case SigLedOff:
		return "led_off"
	case SigLedToggle:
		return "led_toggle"
	case SigPollTick:
		return "poll_tick"
	default:
		return "unknown"
	}
}
