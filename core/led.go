package core

import "tinyao/ao"

// LEDConfig describes one LED output.
type LEDConfig struct {
	Name string
	Pin  Pin
	// ActiveLow marks an LED that lights when the pin is driven low.
	ActiveLow  bool
	QueueDepth int
}

// LED is a thin consumer actor: it maps on/off/toggle commands and
// cooked gestures to one GPIO output. The last commanded state is
// tracked locally because toggle needs it and the GPIO read-back is not
// authoritative on open-drain style outputs.
//
// Gesture mapping: single-click toggles, double-click forces off,
// long-press forces on.
type LED struct {
	ao  ao.ActiveObject
	cfg LEDConfig
	on  bool
}

// Init claims the pin, drives it to the off state and starts the
// actor. Call once during bring-up.
func (l *LED) Init(cfg LEDConfig) error {
	if cfg.Name == "" {
		cfg.Name = "LED"
	}
	l.cfg = cfg
	if err := MustGPIO().ConfigureOutput(cfg.Pin); err != nil {
		return err
	}
	l.set(false)
	l.ao.Init(cfg.Name, l, cfg.QueueDepth)
	return nil
}

// Post queues one event for the actor; it is the sink a Button config
// points at.
func (l *LED) Post(e ao.Event) {
	l.ao.Post(e)
}

// HandleEvent runs on the actor's own goroutine, the only writer of the
// cached state.
func (l *LED) HandleEvent(e ao.Event) {
	switch e.Signal {
	case ao.SigLedOn:
		l.set(true)
	case ao.SigLedOff:
		l.set(false)
	case ao.SigLedToggle:
		l.set(!l.on)
	case ao.SigButtonSingleClick:
		l.set(!l.on)
	case ao.SigButtonDoubleClick:
		l.set(false)
	case ao.SigButtonLongPress:
		l.set(true)
	}
}

// set caches the logical state and writes the output with polarity
// applied.
func (l *LED) set(on bool) {
	l.on = on
	MustGPIO().SetPin(l.cfg.Pin, on != l.cfg.ActiveLow)
}
