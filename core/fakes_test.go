package core

import (
	"errors"
	"sync"
	"testing"
	"time"

	"tinyao/ao"
)

// clearRegistry resets the package-global interrupt wiring between
// tests.
func clearRegistry() {
	buttons = [MaxIRQLines]*Button{}
	irqController = nil
}

// fakeGPIO is an in-memory pin fabric recording every output write.
type fakeGPIO struct {
	mu     sync.Mutex
	levels map[Pin]bool
	writes []pinWrite
}

type pinWrite struct {
	pin   Pin
	level bool
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{levels: make(map[Pin]bool)}
}

func (g *fakeGPIO) ConfigureOutput(pin Pin) error {
	g.setLevel(pin, false)
	return nil
}

func (g *fakeGPIO) ConfigureInputPullUp(pin Pin) error {
	g.setLevel(pin, true) // pulled idle level
	return nil
}

func (g *fakeGPIO) ConfigureInputPullDown(pin Pin) error {
	g.setLevel(pin, false)
	return nil
}

func (g *fakeGPIO) SetPin(pin Pin, level bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.levels[pin] = level
	g.writes = append(g.writes, pinWrite{pin: pin, level: level})
}

func (g *fakeGPIO) ReadPin(pin Pin) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.levels[pin]
}

func (g *fakeGPIO) setLevel(pin Pin, level bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.levels[pin] = level
}

func (g *fakeGPIO) writeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.writes)
}

func (g *fakeGPIO) writesSnapshot() []pinWrite {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]pinWrite, len(g.writes))
	copy(out, g.writes)
	return out
}

// awaitWrites blocks until at least n output writes were recorded.
func (g *fakeGPIO) awaitWrites(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if g.writeCount() >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %d pin writes, have %d", n, g.writeCount())
}

// fakeClock is a manual timebase: Sleep parks the caller until Advance
// walks logical time past its deadline, AfterFunc callbacks fire the
// same way. Tests advance time explicitly, so gesture timelines come
// out exact.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []*fakeWaiter
	timers []*fakeTimer
}

type fakeWaiter struct {
	at time.Time
	ch chan struct{}
}

type fakeTimer struct {
	at time.Time
	fn func()
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	w := &fakeWaiter{at: c.now.Add(d), ch: make(chan struct{})}
	c.sleeps = append(c.sleeps, w)
	c.mu.Unlock()
	<-w.ch
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) {
	c.mu.Lock()
	c.timers = append(c.timers, &fakeTimer{at: c.now.Add(d), fn: fn})
	c.mu.Unlock()
}

// Advance moves logical time to now+d, releasing sleeps and firing
// timers in deadline order along the way. Timer callbacks run without
// the lock so they may schedule follow-up timers; anything they arm at
// or before the target fires in the same sweep.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		idx, isTimer, at := c.nextDue(target)
		if idx < 0 {
			break
		}
		c.now = at
		if isTimer {
			fn := c.timers[idx].fn
			c.timers = append(c.timers[:idx], c.timers[idx+1:]...)
			c.mu.Unlock()
			fn()
			c.mu.Lock()
		} else {
			ch := c.sleeps[idx].ch
			c.sleeps = append(c.sleeps[:idx], c.sleeps[idx+1:]...)
			close(ch)
		}
	}
	c.now = target
	c.mu.Unlock()
}

// nextDue finds the earliest sleeper or timer at or before target.
// Must be called with the lock held.
func (c *fakeClock) nextDue(target time.Time) (idx int, isTimer bool, at time.Time) {
	idx = -1
	for i, w := range c.sleeps {
		if !w.at.After(target) && (idx < 0 || w.at.Before(at)) {
			idx, isTimer, at = i, false, w.at
		}
	}
	for i, tm := range c.timers {
		if !tm.at.After(target) && (idx < 0 || tm.at.Before(at)) {
			idx, isTimer, at = i, true, tm.at
		}
	}
	return idx, isTimer, at
}

func (c *fakeClock) sleeperCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sleeps)
}

func (c *fakeClock) timerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// awaitSleepers blocks until at least n goroutines are parked in Sleep.
func (c *fakeClock) awaitSleepers(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if c.sleeperCount() >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %d parked settle delays", n)
}

// awaitTimers blocks until at least n callbacks are scheduled. Used
// after a release to let the wait tick arm before moving time.
func (c *fakeClock) awaitTimers(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if c.timerCount() >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %d scheduled callbacks", n)
}

// gesture is one recorded emission with its logical timestamp.
type gesture struct {
	sig   ao.Signal
	pin   Pin
	param uint32
	at    time.Time
}

// buttonHarness wires one Button to a fake clock, a fake pin fabric and
// a recording subscriber.
type buttonHarness struct {
	t    *testing.T
	fc   *fakeClock
	gpio *fakeGPIO
	btn  *Button
	cfg  ButtonConfig
	t0   time.Time
	got  chan gesture
}

// scenarioConfig is the timing set used throughout the acceptance
// scenarios: 20ms debounce, 1000ms long press, 300ms double-click
// window, 10ms wait poll.
func scenarioConfig(pin Pin, line uint8) ButtonConfig {
	return ButtonConfig{
		Name:              "BTN" + utoa(uint32(line)),
		Pin:               pin,
		Line:              line,
		ActiveLow:         true,
		Debounce:          20 * time.Millisecond,
		LongPress:         1000 * time.Millisecond,
		DoubleClickWindow: 300 * time.Millisecond,
		PollInterval:      10 * time.Millisecond,
	}
}

func newButtonHarness(t *testing.T, cfg ButtonConfig) *buttonHarness {
	t.Helper()
	clearRegistry()
	fc := newFakeClock()
	ao.SetClock(fc)
	t.Cleanup(func() { ao.SetClock(nil) })
	gpio := newFakeGPIO()
	SetGPIODriver(gpio)

	h := &buttonHarness{
		t:    t,
		fc:   fc,
		gpio: gpio,
		t0:   fc.Now(),
		got:  make(chan gesture, 32),
	}
	if cfg.Notify == nil {
		cfg.Notify = func(sig ao.Signal, pin Pin, param uint32) {
			h.got <- gesture{sig: sig, pin: pin, param: param, at: ao.Now()}
		}
	}
	h.btn = &Button{}
	if err := h.btn.Init(cfg); err != nil {
		t.Fatalf("Button Init failed: %v", err)
	}
	h.cfg = cfg
	return h
}

// start returns the harness clock's origin for timeline assertions.
func (h *buttonHarness) start() time.Time { return h.t0 }

// setPressed drives the pin to the pressed or released level for the
// configured polarity, without firing an edge.
func (h *buttonHarness) setPressed(p bool) {
	h.gpio.setLevel(h.cfg.Pin, p != h.cfg.ActiveLow)
}

// press fires a press edge, release a release edge.
func (h *buttonHarness) press() {
	h.setPressed(true)
	h.btn.OnISR()
}

func (h *buttonHarness) release() {
	h.setPressed(false)
	h.btn.OnISR()
}

// settle waits for the classifier to park in its debounce delay, then
// advances past it.
func (h *buttonHarness) settle() {
	h.t.Helper()
	h.fc.awaitSleepers(h.t, 1)
	h.fc.Advance(h.cfg.Debounce)
}

// expect pulls the next recorded gesture and checks its signal.
func (h *buttonHarness) expect(sig ao.Signal) gesture {
	h.t.Helper()
	select {
	case g := <-h.got:
		if g.sig != sig {
			h.t.Fatalf("Expected gesture %v, got %v", sig, g.sig)
		}
		return g
	case <-time.After(2 * time.Second):
		h.t.Fatalf("Timed out waiting for gesture %v", sig)
		return gesture{}
	}
}

// expectNone asserts no gesture arrives within a short grace period.
func (h *buttonHarness) expectNone() {
	h.t.Helper()
	select {
	case g := <-h.got:
		h.t.Fatalf("Unexpected gesture %v (param=%d)", g.sig, g.param)
	case <-time.After(50 * time.Millisecond):
	}
}

// pump drives the double-click wait: it advances logical time one poll
// interval at a time whenever the classifier has a tick or settle delay
// outstanding, until a gesture arrives.
func (h *buttonHarness) pump() gesture {
	h.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case g := <-h.got:
			return g
		default:
		}
		if h.fc.timerCount() > 0 || h.fc.sleeperCount() > 0 {
			h.fc.Advance(h.cfg.PollInterval)
		} else {
			time.Sleep(time.Millisecond)
		}
	}
	h.t.Fatal("No gesture arrived while pumping the wait")
	return gesture{}
}

// sinceStart converts a recorded timestamp to the scenario timeline.
func (h *buttonHarness) sinceStart(g gesture) time.Duration {
	return g.at.Sub(h.start())
}

// fakeDisplay records panel operations and can refuse bring-up a set
// number of times.
type fakeDisplay struct {
	mu       sync.Mutex
	failLeft int
	ops      []string
}

func (d *fakeDisplay) Configure(cols, rows uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failLeft > 0 {
		d.failLeft--
		d.ops = append(d.ops, "configure_fail")
		return errors.New("display did not acknowledge")
	}
	d.ops = append(d.ops, "configure "+utoa(uint32(cols))+"x"+utoa(uint32(rows)))
	return nil
}

func (d *fakeDisplay) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = append(d.ops, "clear")
	return nil
}

func (d *fakeDisplay) SetCursor(col, row uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = append(d.ops, "cursor "+utoa(uint32(col))+","+utoa(uint32(row)))
	return nil
}

func (d *fakeDisplay) Print(text []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = append(d.ops, "print "+string(text))
	return nil
}

func (d *fakeDisplay) opsSnapshot() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.ops))
	copy(out, d.ops)
	return out
}

// awaitOp blocks until an op equal to want was recorded.
func (d *fakeDisplay) awaitOp(t *testing.T, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, op := range d.opsSnapshot() {
			if op == want {
				return
			}
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Timed out waiting for display op %q, have %v", want, d.opsSnapshot())
}

// fakeIRQController is an EXTI-style pending flag bank.
type fakeIRQController struct {
	mu      sync.Mutex
	pending map[uint8]bool
	cleared []uint8
}

func newFakeIRQController() *fakeIRQController {
	return &fakeIRQController{pending: make(map[uint8]bool)}
}

func (c *fakeIRQController) raise(line uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[line] = true
}

func (c *fakeIRQController) Pending(line uint8) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[line]
}

func (c *fakeIRQController) ClearPending(line uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[line] = false
	c.cleared = append(c.cleared, line)
}
