//go:build linux && !tinygo

package main

import (
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"tinyao/ao"
	"tinyao/core"
)

var (
	chipName  = flag.String("chip", "gpiochip0", "GPIO character device to open")
	buttonPin = flag.Int("button", 5, "button line offset, active low (must be below 16)")
	ledPin    = flag.Int("led", 6, "LED line offset")
	lcdBus    = flag.Int("lcd-bus", 1, "I2C bus carrying the panel")
	lcdAddr   = flag.Int("lcd-addr", 0x27, "panel I2C address")
	verbose   = flag.Bool("v", false, "debug output on stderr")
)

var (
	led    core.LED
	lcd    core.LCD
	button core.Button
)

func fatal(msg string) {
	os.Stderr.WriteString(msg + "\n")
	os.Exit(1)
}

func main() {
	flag.Parse()
	if *buttonPin >= core.MaxIRQLines {
		fatal("button line must be below " + strconv.Itoa(core.MaxIRQLines))
	}

	core.SetDebugWriter(func(s string) { os.Stderr.WriteString(s + "\n") })
	core.SetDebugEnabled(*verbose)

	gpio, err := newGpiodDriver(*chipName)
	if err != nil {
		fatal("open " + *chipName + ": " + err.Error())
	}
	defer gpio.Close()
	core.SetGPIODriver(gpio)
	core.SetDisplayDriver(newLinuxDisplay(byte(*lcdBus), uint8(*lcdAddr)))

	if err := led.Init(core.LEDConfig{Pin: core.Pin(*ledPin)}); err != nil {
		fatal("LED init: " + err.Error())
	}
	lcd.Init(core.LCDConfig{})

	err = button.Init(core.ButtonConfig{
		Name:      "BTN0",
		Pin:       core.Pin(*buttonPin),
		Line:      uint8(*buttonPin),
		ActiveLow: true,
		Sink:      &led,
		Notify: func(sig ao.Signal, pin core.Pin, param uint32) {
			lcd.Post(core.Message{Row: 1, Text: core.GestureText("BTN0", sig, param)})
		},
	})
	if err != nil {
		fatal("button init: " + err.Error())
	}

	core.DebugPrintln("[INIT] active objects running, ctrl-c to exit")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	if *verbose {
		core.DumpTraceRing()
	}
}
