//go:build rp2040 || rp2350

package main

import (
	"machine"

	"tinygo.org/x/drivers/hd44780i2c"
)

// picoDisplay adapts the HD44780-over-I2C driver to core.DisplayDriver.
// The stock wiring is a PCF8574 backpack at 0x27 on I2C0 (GP4/GP5).
type picoDisplay struct {
	dev  hd44780i2c.Device
	addr uint8
}

func newPicoDisplay(addr uint8) *picoDisplay {
	return &picoDisplay{addr: addr}
}

// Configure brings the bus and the panel up. The LCD actor calls this
// on its retry timer, so a missing panel is retried rather than fatal.
func (d *picoDisplay) Configure(cols, rows uint8) error {
	if err := machine.I2C0.Configure(machine.I2CConfig{}); err != nil {
		return err
	}
	d.dev = hd44780i2c.New(machine.I2C0, d.addr)
	return d.dev.Configure(hd44780i2c.Config{
		Width:  cols,
		Height: rows,
	})
}

// The driver's display calls report nothing; only Configure can fail.

func (d *picoDisplay) Clear() error {
	d.dev.ClearDisplay()
	return nil
}

func (d *picoDisplay) SetCursor(col, row uint8) error {
	d.dev.SetCursor(col, row)
	return nil
}

func (d *picoDisplay) Print(text []byte) error {
	d.dev.Print(text)
	return nil
}
