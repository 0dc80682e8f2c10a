package core

import (
	"time"

	"tinyao/ao"
)

// Default gesture timings. Each can be overridden per button.
const (
	DefaultDebounce          = 20 * time.Millisecond
	DefaultLongPress         = 1000 * time.Millisecond
	DefaultDoubleClickWindow = 300 * time.Millisecond
	DefaultPollInterval      = 10 * time.Millisecond
)

// Classifier states. The state only ever advances on positive evidence:
// an edge whose settled sample does not match the expected transition
// leaves it unchanged.
type buttonState uint8

const (
	stateIdle buttonState = iota
	statePressedFirst
	stateWaitSecond
	statePressedSecond
)

// NotifyFunc receives cooked gestures directly, bypassing any queue.
// It runs on the classifier's goroutine and must not block. Param is
// the hold duration in milliseconds for released and long-press.
type NotifyFunc func(sig ao.Signal, pin Pin, param uint32)

// ButtonConfig describes one physical button: exactly one config per
// button, supplied at Init and never mutated afterwards.
type ButtonConfig struct {
	Name string
	Pin  Pin
	// Line is the interrupt line the registry services for this button.
	Line uint8

	// ActiveLow marks a button wired to ground behind a pull-up; the
	// pressed level is electrical low. The zero value means pressed is
	// high, behind a pull-down.
	ActiveLow bool

	Debounce          time.Duration
	LongPress         time.Duration
	DoubleClickWindow time.Duration
	// PollInterval paces the re-check ticks of the double-click wait.
	PollInterval time.Duration

	QueueDepth int

	// Gesture sinks. Either or both may be nil; nil sinks are skipped,
	// not an error.
	Notify NotifyFunc
	Sink   ao.Poster
}

// Button turns raw GPIO edges into debounced gesture events: pressed,
// released(held), single-click, double-click, long-press(held).
//
// A long press resolves immediately on release; single versus double
// click can only be decided by waiting out the double-click window, so
// a single click is reported one window after the release, never
// instantly. The wait is an explicit sub-state serviced by scheduled
// re-check ticks; the dispatch loop itself never blocks between events,
// and raw edges arriving during the wait are queued and handled
// normally.
//
// All state below the config is owned by the classifier's own dispatch
// goroutine. No other code may touch it, which is what makes the
// instance lock-free.
type Button struct {
	ao  ao.ActiveObject
	cfg ButtonConfig

	state      buttonState
	pressedAt  time.Time // press confirm time
	releasedAt time.Time // first release confirm time, anchors the window
	deadline   time.Time // double-click window expiry
	waitGen    uint32    // invalidates poll ticks from expired waits
}

// Init validates the config, claims the pin, registers the interrupt
// line and starts the classifier's execution context. Call it once per
// button during single-threaded bring-up, before edge interrupts are
// enabled.
func (b *Button) Init(cfg ButtonConfig) error {
	if cfg.Name == "" {
		cfg.Name = "BTN" + utoa(uint32(cfg.Line))
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.LongPress <= 0 {
		cfg.LongPress = DefaultLongPress
	}
	if cfg.DoubleClickWindow <= 0 {
		cfg.DoubleClickWindow = DefaultDoubleClickWindow
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	b.cfg = cfg

	gpio := MustGPIO()
	var err error
	if cfg.ActiveLow {
		err = gpio.ConfigureInputPullUp(cfg.Pin)
	} else {
		err = gpio.ConfigureInputPullDown(cfg.Pin)
	}
	if err != nil {
		return err
	}
	if err := RegisterButton(cfg.Line, b); err != nil {
		return err
	}
	b.ao.Init(cfg.Name, b, cfg.QueueDepth)
	return nil
}

// Name returns the button name.
func (b *Button) Name() string { return b.cfg.Name }

// Line returns the interrupt line this button is registered on.
func (b *Button) Line() uint8 { return b.cfg.Line }

// OnISR is the interrupt entry point for this button's line: bounded
// and non-blocking, it only queues a raw-edge event for the
// classifier's own context. Debouncing never happens here.
func (b *Button) OnISR() {
	if !b.ao.PostFromISR(ao.Event{Signal: ao.SigRawEdge}) {
		RecordTrace(TraceDrop, b.cfg.Line, b.ao.Drops(), 0)
	}
}

// HandleEvent dispatches one queued event. It runs on the classifier's
// goroutine, the only writer of the state fields.
func (b *Button) HandleEvent(e ao.Event) {
	switch e.Signal {
	case ao.SigRawEdge:
		b.handleEdge()
	case ao.SigPollTick:
		b.handlePollTick(e.Param)
	}
}

// handleEdge settles and samples the pin, then advances the state
// machine. The settle delay suspends this goroutine only; other
// buttons' classifiers keep running.
func (b *Button) handleEdge() {
	edgeAt := ao.Now()
	RecordTrace(TraceEdge, b.cfg.Line, 0, 0)

	ao.Sleep(b.cfg.Debounce)
	pressed := b.isPressed()
	RecordTrace(TraceSample, b.cfg.Line, boolBit(pressed), 0)

	switch b.state {
	case stateIdle:
		if !pressed {
			return // contact noise, not a settled press
		}
		b.pressedAt = ao.Now()
		b.state = statePressedFirst
		b.emit(ao.SigButtonPressed, 0)

	case statePressedFirst:
		if pressed {
			return // bounce while held
		}
		held := edgeAt.Sub(b.pressedAt)
		b.emit(ao.SigButtonReleased, durMillis(held))
		if held >= b.cfg.LongPress {
			// Unambiguous: a hold past the threshold cannot also be
			// the first half of a double click.
			b.state = stateIdle
			b.emit(ao.SigButtonLongPress, durMillis(held))
			return
		}
		b.releasedAt = ao.Now()
		b.enterWaitSecond()

	case stateWaitSecond:
		if pressed {
			b.confirmSecondPress()
			return
		}
		// A settled released read is no evidence of a second press.
		// The wait is serviced from here too: re-check the deadline and
		// re-arm the ticks so the window always closes.
		if !ao.Now().Before(b.deadline) {
			b.state = stateIdle
			b.emit(ao.SigButtonSingleClick, 0)
			return
		}
		b.scheduleTick()

	case statePressedSecond:
		if pressed {
			return
		}
		b.state = stateIdle
		b.emit(ao.SigButtonDoubleClick, 0)
	}
}

// handlePollTick services one re-check of the double-click wait. Ticks
// from a wait that already ended carry a stale generation and are
// ignored.
func (b *Button) handlePollTick(gen uint32) {
	if b.state != stateWaitSecond || gen != b.waitGen {
		return
	}
	if b.isPressed() {
		// Candidate second press seen by polling; settle before
		// trusting it.
		ao.Sleep(b.cfg.Debounce)
		if b.isPressed() {
			b.confirmSecondPress()
			return
		}
	}
	if !ao.Now().Before(b.deadline) {
		b.state = stateIdle
		b.emit(ao.SigButtonSingleClick, 0)
		return
	}
	b.scheduleTick()
}

// enterWaitSecond arms the double-click window. The deadline anchors at
// the release confirm time; a fresh generation orphans any tick still
// in flight from a previous wait.
func (b *Button) enterWaitSecond() {
	b.state = stateWaitSecond
	b.deadline = b.releasedAt.Add(b.cfg.DoubleClickWindow)
	b.waitGen++
	RecordTrace(TraceWait, b.cfg.Line, uint32(b.cfg.DoubleClickWindow/time.Millisecond), 0)
	b.scheduleTick()
}

// scheduleTick posts the next wait re-check to this classifier's own
// queue after the poll interval. The self-post must not be lost to a
// full queue or the wait would never close, so a refused post re-arms
// the callback instead of dropping the tick.
func (b *Button) scheduleTick() {
	gen := b.waitGen
	var fire func()
	fire = func() {
		if b.ao.PostFromISR(ao.Event{Signal: ao.SigPollTick, Param: gen}) {
			return
		}
		RecordTrace(TraceDrop, b.cfg.Line, b.ao.Drops(), 0)
		ao.After(b.cfg.PollInterval, fire)
	}
	ao.After(b.cfg.PollInterval, fire)
}

// confirmSecondPress moves a settled second press into PRESSED_SECOND.
func (b *Button) confirmSecondPress() {
	b.pressedAt = ao.Now()
	b.state = statePressedSecond
	b.emit(ao.SigButtonPressed, 0)
}

// isPressed samples the pin with the configured polarity applied.
func (b *Button) isPressed() bool {
	return MustGPIO().ReadPin(b.cfg.Pin) != b.cfg.ActiveLow
}

// emit delivers one cooked gesture to the configured sinks. Delivery to
// an ActiveObject sink is an independent asynchronous hop through that
// actor's own queue.
func (b *Button) emit(sig ao.Signal, param uint32) {
	RecordTrace(TraceGesture, b.cfg.Line, uint32(sig), param)
	debugGesture(b.cfg.Name, sig, param)
	if b.cfg.Notify != nil {
		b.cfg.Notify(sig, b.cfg.Pin, param)
	}
	if b.cfg.Sink != nil {
		b.cfg.Sink.Post(ao.Event{Signal: sig, Param: param})
	}
}

// durMillis clamps a duration to whole milliseconds for event payloads.
func durMillis(d time.Duration) uint32 {
	if d < 0 {
		return 0
	}
	return uint32(d / time.Millisecond)
}

// boolBit packs a sample into a trace value.
func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
