package core

import "errors"

// MaxIRQLines bounds the interrupt line space the registry can service.
// Sized for EXTI-style controllers with one flag per line.
const MaxIRQLines = 16

// buttons maps interrupt line -> owning classifier. Written only during
// single-threaded bring-up and read from interrupt context afterwards,
// so lookups take no lock.
var buttons [MaxIRQLines]*Button

// RegisterButton records the classifier owning an interrupt line.
// Called once per button during its Init; registering a line twice is a
// configuration defect.
func RegisterButton(line uint8, b *Button) error {
	if line >= MaxIRQLines {
		return errors.New("interrupt line out of range")
	}
	if b == nil {
		return errors.New("nil classifier")
	}
	if buttons[line] != nil {
		return errors.New("interrupt line already registered")
	}
	buttons[line] = b
	return nil
}

// FindButton returns the classifier registered for line, or nil.
func FindButton(line uint8) *Button {
	if line >= MaxIRQLines {
		return nil
	}
	return buttons[line]
}

// ServiceIRQ fans one line's interrupt into its classifier. Safe from
// interrupt context; lines nobody registered are ignored. Ports that
// deliver per-pin callbacks (TinyGo SetInterrupt, gpiod edge handlers)
// call this directly.
func ServiceIRQ(line uint8) {
	if b := FindButton(line); b != nil {
		b.OnISR()
	}
}

// IRQController exposes per-line pending flags for ports whose
// interrupt vectors are shared between several lines. Both methods must
// be callable from interrupt context.
type IRQController interface {
	Pending(line uint8) bool
	ClearPending(line uint8)
}

// Global controller used by ServiceIRQSpan.
var irqController IRQController

// SetIRQController registers the platform interrupt controller during
// bring-up.
func SetIRQController(c IRQController) {
	irqController = c
}

// ServiceIRQSpan services one shared vector covering lines first..last
// inclusive. Each line's pending flag is checked and cleared
// individually: a single vector can report several lines at once, and
// clearing them wholesale would lose edges.
func ServiceIRQSpan(first, last uint8) {
	c := irqController
	if c == nil {
		return
	}
	if last >= MaxIRQLines {
		last = MaxIRQLines - 1
	}
	for line := first; line <= last; line++ {
		if c.Pending(line) {
			c.ClearPending(line)
			ServiceIRQ(line)
		}
	}
}
