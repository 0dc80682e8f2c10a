//go:build rp2040 || rp2350

package main

import (
	"errors"

	"machine"

	"tinyao/core"
)

// picoGPIO implements core.GPIODriver on RP2040-class parts. Pins map
// one to one onto machine GPIO numbers.
type picoGPIO struct {
	// Track configured pins so repeat configuration is a no-op
	configured map[core.Pin]machine.Pin
}

func newPicoGPIO() *picoGPIO {
	return &picoGPIO{configured: make(map[core.Pin]machine.Pin)}
}

func (d *picoGPIO) configure(pin core.Pin, mode machine.PinMode) machine.Pin {
	if mp, ok := d.configured[pin]; ok {
		return mp
	}
	mp := machine.Pin(pin)
	mp.Configure(machine.PinConfig{Mode: mode})
	d.configured[pin] = mp
	return mp
}

func (d *picoGPIO) ConfigureOutput(pin core.Pin) error {
	d.configure(pin, machine.PinOutput)
	return nil
}

func (d *picoGPIO) ConfigureInputPullUp(pin core.Pin) error {
	d.configure(pin, machine.PinInputPullup)
	return nil
}

func (d *picoGPIO) ConfigureInputPullDown(pin core.Pin) error {
	d.configure(pin, machine.PinInputPulldown)
	return nil
}

func (d *picoGPIO) SetPin(pin core.Pin, level bool) {
	mp, ok := d.configured[pin]
	if !ok {
		mp = d.configure(pin, machine.PinOutput)
	}
	mp.Set(level)
}

func (d *picoGPIO) ReadPin(pin core.Pin) bool {
	mp, ok := d.configured[pin]
	if !ok {
		return false
	}
	return mp.Get()
}

// attachEdgeIRQ routes both edges of an already configured input into
// the interrupt registry. The callback runs in interrupt context; the
// registry hands it straight to the owning classifier.
func (d *picoGPIO) attachEdgeIRQ(pin core.Pin) error {
	mp, ok := d.configured[pin]
	if !ok {
		return errors.New("pin not configured as input")
	}
	return mp.SetInterrupt(machine.PinToggle, func(p machine.Pin) {
		core.ServiceIRQ(uint8(p))
	})
}
