package core

import (
	"testing"

	"tinyao/ao"
)

func TestLEDCommandSequence(t *testing.T) {
	gpio := newFakeGPIO()
	SetGPIODriver(gpio)

	var led LED
	if err := led.Init(LEDConfig{Pin: 25}); err != nil {
		t.Fatalf("LED Init failed: %v", err)
	}

	led.Post(ao.Event{Signal: ao.SigLedOn})
	led.Post(ao.Event{Signal: ao.SigLedToggle})
	led.Post(ao.Event{Signal: ao.SigLedToggle})
	led.Post(ao.Event{Signal: ao.SigLedOff})
	gpio.awaitWrites(t, 5)

	// initial off plus the four commands
	want := []bool{false, true, false, true, false}
	writes := gpio.writesSnapshot()
	if len(writes) != len(want) {
		t.Fatalf("Expected %d writes, got %d", len(want), len(writes))
	}
	for i, level := range want {
		if writes[i].pin != 25 {
			t.Errorf("Write %d: expected pin 25, got %d", i, writes[i].pin)
		}
		if writes[i].level != level {
			t.Errorf("Write %d: expected level %v, got %v", i, level, writes[i].level)
		}
	}
}

func TestLEDGestureMapping(t *testing.T) {
	gpio := newFakeGPIO()
	SetGPIODriver(gpio)

	var led LED
	if err := led.Init(LEDConfig{Pin: 25}); err != nil {
		t.Fatalf("LED Init failed: %v", err)
	}

	led.Post(ao.Event{Signal: ao.SigButtonSingleClick}) // toggle: off -> on
	led.Post(ao.Event{Signal: ao.SigButtonSingleClick}) // toggle: on -> off
	led.Post(ao.Event{Signal: ao.SigButtonLongPress})   // force on
	led.Post(ao.Event{Signal: ao.SigButtonDoubleClick}) // force off
	led.Post(ao.Event{Signal: ao.SigButtonPressed})     // not mapped, no write
	led.Post(ao.Event{Signal: ao.SigLedOn})
	gpio.awaitWrites(t, 6)

	want := []bool{false, true, false, true, false, true}
	writes := gpio.writesSnapshot()
	if len(writes) != len(want) {
		t.Fatalf("Expected %d writes, got %d", len(want), len(writes))
	}
	for i, level := range want {
		if writes[i].level != level {
			t.Errorf("Write %d: expected level %v, got %v", i, level, writes[i].level)
		}
	}
}

func TestLEDActiveLowPolarity(t *testing.T) {
	gpio := newFakeGPIO()
	SetGPIODriver(gpio)

	var led LED
	if err := led.Init(LEDConfig{Pin: 6, ActiveLow: true}); err != nil {
		t.Fatalf("LED Init failed: %v", err)
	}
	led.Post(ao.Event{Signal: ao.SigLedOn})
	gpio.awaitWrites(t, 2)

	writes := gpio.writesSnapshot()
	if !writes[0].level {
		t.Error("Expected the off state to drive the pin high")
	}
	if writes[1].level {
		t.Error("Expected the on state to drive the pin low")
	}
}
