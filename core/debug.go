package core

import (
	"sync/atomic"
	"time"

	"tinyao/ao"
)

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TraceEvent captures one classifier-path event for post-mortem analysis
type TraceEvent struct {
	Code uint8  // Trace code
	Line uint8  // Interrupt line / actor id
	At   uint32 // Milliseconds since start
	A    uint32 // Context-dependent value
	B    uint32 // Context-dependent value
}

// Trace codes
const (
	TraceEdge    = 1 // raw edge dispatched to a classifier
	TraceSample  = 2 // settled pin sample taken (A = pressed 0/1)
	TraceGesture = 3 // cooked gesture emitted (A = signal, B = param)
	TraceWait    = 4 // double-click wait armed (A = window ms)
	TraceDrop    = 5 // queue overflow observed (A = drop count)
	TraceScript  = 6 // host-side script marker
)

const (
	TraceRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Trace capture ring (non-blocking, for post-mortem)
	traceRing    [TraceRingSize]TraceEvent
	traceHead    uint32
	traceEnabled bool = true // Always capture trace events

	// traceEpoch anchors TraceEvent.At
	traceEpoch = time.Now()
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, a logger, etc.
func SetDebugWriter(writer DebugWriter) {
	if writer == nil {
		writer = func(string) {}
	}
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled {
		debugPrintln(msg)
	}
}

// nowMillis returns milliseconds since the trace epoch for ring entries
func nowMillis() uint32 {
	d := time.Since(traceEpoch)
	if d < 0 {
		return 0
	}
	return uint32(d / time.Millisecond)
}

// RecordTrace captures a trace event in the ring buffer.
// Always non-blocking; the head moves atomically so interrupt-context
// and task-context writers never share a slot.
func RecordTrace(code, line uint8, a, b uint32) {
	if !traceEnabled {
		return
	}
	idx := atomic.AddUint32(&traceHead, 1) - 1
	traceRing[idx%TraceRingSize] = TraceEvent{
		Code: code,
		Line: line,
		At:   nowMillis(),
		A:    a,
		B:    b,
	}
}

// traceCodeName returns a short label for a trace code
func traceCodeName(code uint8) string {
	switch code {
	case TraceEdge:
		return "EDGE"
	case TraceSample:
		return "SAMPLE"
	case TraceGesture:
		return "GESTURE"
	case TraceWait:
		return "WAIT"
	case TraceDrop:
		return "DROP"
	case TraceScript:
		return "SCRIPT"
	default:
		return "UNKNOWN"
	}
}

// DumpTraceRing outputs the trace ring through the debug writer, oldest
// entry first. Call it from a command handler or after stopping the
// actors under investigation.
func DumpTraceRing() {
	debugPrintln("[TRACE] === Trace Ring Dump ===")
	head := atomic.LoadUint32(&traceHead)
	start := head % TraceRingSize
	for i := uint32(0); i < TraceRingSize; i++ {
		evt := &traceRing[(start+i)%TraceRingSize]
		if evt.Code == 0 {
			continue // Empty slot
		}
		line := "[TRACE] " + traceCodeName(evt.Code) +
			" line=" + utoa(uint32(evt.Line)) +
			" at=" + utoa(evt.At) + "ms"
		if evt.Code == TraceGesture {
			line += " sig=" + ao.Signal(evt.A).String() + " param=" + utoa(evt.B)
		} else {
			line += " a=" + utoa(evt.A) + " b=" + utoa(evt.B)
		}
		debugPrintln(line)
	}
	debugPrintln("[TRACE] === End Dump ===")
}

// ClearTraceRing clears the trace buffer
func ClearTraceRing() {
	for i := range traceRing {
		traceRing[i] = TraceEvent{}
	}
	atomic.StoreUint32(&traceHead, 0)
}

// GestureText formats one cooked gesture as a console line, without fmt
// so firmware builds stay small. Hold durations are appended for the
// signals that carry one.
func GestureText(name string, sig ao.Signal, param uint32) string {
	s := name + ": " + sig.String()
	if sig == ao.SigButtonReleased || sig == ao.SigButtonLongPress {
		s += " held=" + utoa(param) + "ms"
	}
	return s
}

// debugGesture reports an emitted gesture through the debug writer
func debugGesture(name string, sig ao.Signal, param uint32) {
	if debugEnabled {
		debugPrintln("[BTN] " + GestureText(name, sig, param))
	}
}
