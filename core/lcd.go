package core

import (
	"sync/atomic"
	"time"

	"tinyao/ao"
)

// MaxTextLen caps one message's text; longer text is truncated at post
// time.
const MaxTextLen = 32

// DefaultRetryInterval paces display bring-up attempts.
const DefaultRetryInterval = 2 * time.Second

// Message is one positioned text write.
type Message struct {
	Row  uint8
	Col  uint8
	Text string
}

// LCDConfig describes the panel and the actor in front of it.
type LCDConfig struct {
	Name       string
	Cols       uint8 // 16 when zero
	Rows       uint8 // 2 when zero
	QueueDepth int
	// RetryInterval is how long to wait between bring-up attempts while
	// the panel does not acknowledge.
	RetryInterval time.Duration
	// Banner is written once after the panel comes up.
	Banner string
}

// LCD is the second consumer actor. Its payload does not fit an Event,
// so it carries the queue+goroutine shape itself with a Message queue:
// same posting policy, same isolation. Bring-up retries on a timer
// until the display acknowledges, then the banner is shown and the
// queue drains forever.
type LCD struct {
	cfg   LCDConfig
	queue chan Message
	drops uint32
}

// Init starts the actor. Call once during bring-up; a second call
// panics. The display driver must be registered first.
func (l *LCD) Init(cfg LCDConfig) {
	if l.queue != nil {
		panic("lcd: Init called twice")
	}
	if cfg.Name == "" {
		cfg.Name = "LCD"
	}
	if cfg.Cols == 0 {
		cfg.Cols = 16
	}
	if cfg.Rows == 0 {
		cfg.Rows = 2
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = ao.DefaultQueueDepth
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if cfg.Banner == "" {
		cfg.Banner = "System Ready"
	}
	l.cfg = cfg
	l.queue = make(chan Message, cfg.QueueDepth)
	go l.run(MustDisplay())
}

// Post queues one message without blocking; a full queue drops it.
// Messages posted while the panel is still coming up are held in the
// queue and shown after the banner.
func (l *LCD) Post(m Message) {
	if len(m.Text) > MaxTextLen {
		m.Text = m.Text[:MaxTextLen]
	}
	select {
	case l.queue <- m:
	default:
		atomic.AddUint32(&l.drops, 1)
	}
}

// Drops returns how many messages were discarded on a full queue.
func (l *LCD) Drops() uint32 { return atomic.LoadUint32(&l.drops) }

// run is the actor's execution context. It keeps the driver resolved
// at Init for its whole life; re-registering a driver later does not
// redirect a running actor.
func (l *LCD) run(d DisplayDriver) {
	for {
		if err := d.Configure(l.cfg.Cols, l.cfg.Rows); err == nil {
			break
		}
		DebugPrintln("[LCD] no ack, retrying")
		ao.Sleep(l.cfg.RetryInterval)
	}
	d.Clear()
	d.SetCursor(0, 0)
	d.Print([]byte(l.cfg.Banner))
	for m := range l.queue {
		l.show(d, m)
	}
}

// show writes one message, clipped to the panel.
func (l *LCD) show(d DisplayDriver, m Message) {
	if m.Row >= l.cfg.Rows || m.Col >= l.cfg.Cols {
		return
	}
	text := m.Text
	if max := int(l.cfg.Cols) - int(m.Col); len(text) > max {
		text = text[:max]
	}
	if err := d.SetCursor(m.Col, m.Row); err != nil {
		return
	}
	d.Print([]byte(text))
}
