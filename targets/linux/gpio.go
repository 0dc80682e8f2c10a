//go:build linux && !tinygo

package main

import (
	"github.com/warthog618/gpiod"

	"tinyao/core"
)

// gpiodDriver implements core.GPIODriver over Linux character-device
// GPIO. Inputs are requested with edge detection; gpiod delivers the
// events on its own goroutine, which plays the interrupt context here.
type gpiodDriver struct {
	chip  *gpiod.Chip
	lines map[core.Pin]*gpiod.Line
}

func newGpiodDriver(chipName string) (*gpiodDriver, error) {
	chip, err := gpiod.NewChip(chipName, gpiod.WithConsumer("tinyao"))
	if err != nil {
		return nil, err
	}
	return &gpiodDriver{chip: chip, lines: make(map[core.Pin]*gpiod.Line)}, nil
}

func (d *gpiodDriver) ConfigureOutput(pin core.Pin) error {
	line, err := d.chip.RequestLine(int(pin), gpiod.AsOutput(0))
	if err != nil {
		return err
	}
	d.lines[pin] = line
	return nil
}

func (d *gpiodDriver) ConfigureInputPullUp(pin core.Pin) error {
	return d.requestInput(pin, gpiod.WithPullUp)
}

func (d *gpiodDriver) ConfigureInputPullDown(pin core.Pin) error {
	return d.requestInput(pin, gpiod.WithPullDown)
}

func (d *gpiodDriver) requestInput(pin core.Pin, bias gpiod.LineReqOption) error {
	line, err := d.chip.RequestLine(int(pin),
		gpiod.AsInput,
		bias,
		gpiod.WithBothEdges,
		gpiod.WithEventHandler(func(evt gpiod.LineEvent) {
			core.ServiceIRQ(uint8(evt.Offset))
		}))
	if err != nil {
		return err
	}
	d.lines[pin] = line
	return nil
}

func (d *gpiodDriver) SetPin(pin core.Pin, level bool) {
	line, ok := d.lines[pin]
	if !ok {
		return
	}
	v := 0
	if level {
		v = 1
	}
	line.SetValue(v)
}

func (d *gpiodDriver) ReadPin(pin core.Pin) bool {
	line, ok := d.lines[pin]
	if !ok {
		return false
	}
	v, err := line.Value()
	return err == nil && v != 0
}

func (d *gpiodDriver) Close() {
	for _, line := range d.lines {
		line.Close()
	}
	d.chip.Close()
}
