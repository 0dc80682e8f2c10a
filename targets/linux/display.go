//go:build linux && !tinygo

package main

import (
	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/all"
	"tinygo.org/x/drivers/hd44780i2c"
)

// embdBus adapts embd's I2C bus to the transaction contract the
// HD44780 driver expects, so the same panel driver serves both the
// firmware and the Linux build.
type embdBus struct {
	bus embd.I2CBus
}

func (b *embdBus) Tx(addr uint16, w, r []byte) error {
	a := byte(addr)
	if len(w) > 0 {
		if err := b.bus.WriteBytes(a, w); err != nil {
			return err
		}
	}
	if len(r) > 0 {
		data, err := b.bus.ReadBytes(a, len(r))
		if err != nil {
			return err
		}
		copy(r, data)
	}
	return nil
}

// linuxDisplay drives the panel through /dev/i2c-N.
type linuxDisplay struct {
	dev  hd44780i2c.Device
	bus  byte
	addr uint8
	open bool
}

func newLinuxDisplay(bus byte, addr uint8) *linuxDisplay {
	return &linuxDisplay{bus: bus, addr: addr}
}

func (d *linuxDisplay) Configure(cols, rows uint8) error {
	if !d.open {
		if err := embd.InitI2C(); err != nil {
			return err
		}
		d.dev = hd44780i2c.New(&embdBus{bus: embd.NewI2CBus(d.bus)}, d.addr)
		d.open = true
	}
	return d.dev.Configure(hd44780i2c.Config{
		Width:  cols,
		Height: rows,
	})
}

// The driver's display calls report nothing; only Configure can fail.

func (d *linuxDisplay) Clear() error {
	d.dev.ClearDisplay()
	return nil
}

func (d *linuxDisplay) SetCursor(col, row uint8) error {
	d.dev.SetCursor(col, row)
	return nil
}

func (d *linuxDisplay) Print(text []byte) error {
	d.dev.Print(text)
	return nil
}
