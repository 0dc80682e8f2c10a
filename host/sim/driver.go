// Package sim provides an in-memory pin fabric so the whole actor
// stack runs on a development host: the same classifiers, registry and
// consumer actors as the firmware build, driven from a command loop
// instead of real pin edges.
package sim

import (
	"sync"

	"tinyao/core"
)

// Driver implements core.GPIODriver and core.IRQController against
// plain memory. Lines and pins share one number space here.
type Driver struct {
	mu      sync.Mutex
	levels  map[core.Pin]bool
	pending uint32
	onWrite func(pin core.Pin, level bool)
}

func New() *Driver {
	return &Driver{levels: make(map[core.Pin]bool)}
}

// SetWriteHook registers an observer for output writes, used to render
// the LED state. The hook runs on the writing actor's goroutine.
func (d *Driver) SetWriteHook(fn func(pin core.Pin, level bool)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onWrite = fn
}

func (d *Driver) ConfigureOutput(pin core.Pin) error {
	d.setLevel(pin, false)
	return nil
}

func (d *Driver) ConfigureInputPullUp(pin core.Pin) error {
	d.setLevel(pin, true)
	return nil
}

func (d *Driver) ConfigureInputPullDown(pin core.Pin) error {
	d.setLevel(pin, false)
	return nil
}

func (d *Driver) SetPin(pin core.Pin, level bool) {
	d.mu.Lock()
	d.levels[pin] = level
	fn := d.onWrite
	d.mu.Unlock()
	if fn != nil {
		fn(pin, level)
	}
}

func (d *Driver) ReadPin(pin core.Pin) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.levels[pin]
}

func (d *Driver) setLevel(pin core.Pin, level bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.levels[pin] = level
}

// Edge drives a line to a new level and latches its pending flag, the
// way a pin interrupt controller would. A following ServiceIRQSpan
// fans the latched lines into the registry.
func (d *Driver) Edge(line uint8, level bool) {
	d.mu.Lock()
	d.levels[core.Pin(line)] = level
	if line < core.MaxIRQLines {
		d.pending |= 1 << line
	}
	d.mu.Unlock()
}

func (d *Driver) Pending(line uint8) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending&(1<<line) != 0
}

func (d *Driver) ClearPending(line uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending &^= 1 << line
}
