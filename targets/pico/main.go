//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"tinyao/ao"
	"tinyao/core"
)

const (
	ledPin     = core.Pin(25) // on-board LED
	buttonAPin = core.Pin(15) // wired to ground, active low
	buttonBPin = core.Pin(14)
	lcdAddr    = 0x27
)

var (
	gpio    *picoGPIO
	led     core.LED
	lcd     core.LCD
	buttonA core.Button
	buttonB core.Button
)

// ledBlink flashes the on-board LED for boot diagnostics, before the
// LED actor claims the pin.
func ledBlink(count int) {
	p := machine.LED
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for i := 0; i < count; i++ {
		p.High()
		time.Sleep(150 * time.Millisecond)
		p.Low()
		time.Sleep(150 * time.Millisecond)
	}
}

func main() {
	// Give USB CDC a moment to enumerate so early prints are visible
	time.Sleep(2 * time.Second)
	ledBlink(2)

	core.SetDebugWriter(func(s string) { println(s) })
	core.SetDebugEnabled(true)

	gpio = newPicoGPIO()
	core.SetGPIODriver(gpio)
	core.SetDisplayDriver(newPicoDisplay(lcdAddr))

	if err := led.Init(core.LEDConfig{Name: "LED", Pin: ledPin}); err != nil {
		core.DebugPrintln("[INIT] LED failed: " + err.Error())
	}
	lcd.Init(core.LCDConfig{})

	if err := setupButton(&buttonA, "BTN_A", buttonAPin); err != nil {
		core.DebugPrintln("[INIT] BTN_A failed: " + err.Error())
	}
	if err := setupButton(&buttonB, "BTN_B", buttonBPin); err != nil {
		core.DebugPrintln("[INIT] BTN_B failed: " + err.Error())
	}

	core.DebugPrintln("[INIT] active objects running")
	for {
		time.Sleep(time.Hour)
	}
}

// setupButton wires one classifier: gestures drive the LED actor and
// the panel's second row, raw edges come from the pin interrupt.
func setupButton(b *core.Button, name string, pin core.Pin) error {
	err := b.Init(core.ButtonConfig{
		Name:      name,
		Pin:       pin,
		Line:      uint8(pin),
		ActiveLow: true,
		Sink:      &led,
		Notify:    showGesture,
	})
	if err != nil {
		return err
	}
	return gpio.attachEdgeIRQ(pin)
}

func showGesture(sig ao.Signal, pin core.Pin, param uint32) {
	name := "BTN"
	if b := core.FindButton(uint8(pin)); b != nil {
		name = b.Name()
	}
	lcd.Post(core.Message{Row: 1, Text: core.GestureText(name, sig, param)})
}
