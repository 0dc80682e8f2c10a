package ao

import "sync/atomic"

// Handler consumes events dispatched by an ActiveObject. Each actor
// type implements it once; the runtime reaches the concrete actor
// through this interface rather than a function pointer paired with an
// opaque owner.
type Handler interface {
	HandleEvent(e Event)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(e Event)

// HandleEvent calls f(e).
func (f HandlerFunc) HandleEvent(e Event) { f(e) }

// Poster is the posting side of an ActiveObject. An actor hands it out
// as its gesture sink without exposing anything else.
type Poster interface {
	Post(e Event)
}

// DefaultQueueDepth is used when Init is given a depth <= 0.
const DefaultQueueDepth = 8

// ActiveObject owns a bounded FIFO event queue and a dedicated
// goroutine that pulls queued events one at a time and hands them to a
// Handler. Events are delivered in strict enqueue order per instance;
// there is no ordering across instances. Instances have static
// lifetime: there is no teardown path.
type ActiveObject struct {
	name    string
	queue   chan Event
	handler Handler
	drops   uint32
}

// Init allocates the queue and starts the dispatch goroutine. It must
// be called exactly once per instance, during single-threaded bring-up;
// a second call or a nil handler panics. A queueDepth <= 0 takes
// DefaultQueueDepth.
func (a *ActiveObject) Init(name string, h Handler, queueDepth int) {
	if a.queue != nil {
		panic("ao: Init called twice on " + name)
	}
	if h == nil {
		panic("ao: nil handler for " + name)
	}
	if queueDepth <= 0 {
		queueDepth = DefaultQueueDepth
	}
	a.name = name
	a.handler = h
	a.queue = make(chan Event, queueDepth)
	go a.loop()
}

// loop is the instance's dedicated execution context: blocking receive,
// dispatch, repeat.
func (a *ActiveObject) loop() {
	for e := range a.queue {
		a.handler.HandleEvent(e)
	}
}

// Post enqueues a copy of e without blocking. A full queue drops the
// event: at-most-once delivery, no backpressure to the caller. Events
// posted before Init are dropped the same way.
func (a *ActiveObject) Post(e Event) {
	select {
	case a.queue <- e:
	default:
		atomic.AddUint32(&a.drops, 1)
	}
}

// PostFromISR enqueues from interrupt context. The send never blocks,
// which keeps it legal inside a pin interrupt handler on the TinyGo
// ports. The return value reports whether the event was accepted and a
// waiting dispatcher may have been woken; ports with an explicit
// yield-from-interrupt primitive use it to request a reschedule on
// return.
func (a *ActiveObject) PostFromISR(e Event) bool {
	select {
	case a.queue <- e:
		return true
	default:
		atomic.AddUint32(&a.drops, 1)
		return false
	}
}

// Name returns the instance name given to Init.
func (a *ActiveObject) Name() string { return a.name }

// Pending returns the current queue occupancy. Debug use only; the
// value is stale by the time the caller sees it.
func (a *ActiveObject) Pending() int { return len(a.queue) }

// Drops returns how many events have been discarded on a full queue.
func (a *ActiveObject) Drops() uint32 { return atomic.LoadUint32(&a.drops) }
