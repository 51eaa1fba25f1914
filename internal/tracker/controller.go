package tracker

import (
	"fmt"
	"time"

	"github.com/sadopc/timekeeper/internal/clock"
)

// Forwarder receives every entry appended or edited through the
// controller. Implementations must not block; remote work happens in the
// background and reports its own outcome.
type Forwarder interface {
	Forward(e Entry)
}

// Recorder keeps a history of pomodoro sessions.
type Recorder interface {
	StartPomodoroSession(s Settings, at time.Time) (string, error)
	FinishPomodoroSession(id string, completed int, reason EndReason, at time.Time) error
}

// Options configures a Controller. Clock and Scheduler are required.
type Options struct {
	Clock     clock.Clock
	Scheduler clock.Scheduler
	Log       *EntryLog
	Settings  Settings
	Forwarder Forwarder
	Recorder  Recorder
	// OnEffect observes navigation and phase changes after they are applied.
	OnEffect func(Effect)
	// OnError reports persistence failures. Timer state is never rolled back.
	OnError func(error)
}

// Controller owns the timer state and performs the effects Apply asks for.
// It is not safe for concurrent use: all calls, including tick callbacks,
// must come from one event loop.
type Controller struct {
	clock  clock.Clock
	sched  clock.Scheduler
	cancel func()

	state     State
	log       *EntryLog
	fwd       Forwarder
	rec       Recorder
	sessionID string

	onEffect func(Effect)
	onError  func(error)
}

func NewController(o Options) *Controller {
	if o.Log == nil {
		o.Log = NewEntryLog(nil, nil)
	}
	return &Controller{
		clock:    o.Clock,
		sched:    o.Scheduler,
		state:    NewState(o.Settings),
		log:      o.Log,
		fwd:      o.Forwarder,
		rec:      o.Recorder,
		onEffect: o.OnEffect,
		onError:  o.OnError,
	}
}

func (c *Controller) State() State   { return c.state.clone() }
func (c *Controller) Log() *EntryLog { return c.log }
func (c *Controller) Ticking() bool  { return c.cancel != nil }
func (c *Controller) Now() time.Time { return c.clock.Now() }

// Dispatch applies ev and runs its effects to completion before returning.
func (c *Controller) Dispatch(ev Event) {
	now := c.clock.Now()
	next, fx := Apply(c.state, ev, now)
	c.state = next

	for _, f := range fx {
		c.perform(f, now)
	}

	_, restart := ev.(StartManual)
	if _, ok := ev.(StartFocus); ok {
		restart = true
	}
	c.syncTicker(restart)
}

// EditEntry rewrites an entry through the shared log and forwards it.
func (c *Controller) EditEntry(id string, ed EntryEdit) (Entry, bool) {
	e, ok, err := c.log.Edit(id, ed)
	if !ok {
		return Entry{}, false
	}
	if err != nil {
		c.report(err)
	}
	if c.fwd != nil {
		c.fwd.Forward(e)
	}
	return e, true
}

// AddEntry appends an entry created outside the timers.
func (c *Controller) AddEntry(e Entry) Entry {
	e, err := c.log.Append(e)
	if err != nil {
		c.report(err)
	}
	if c.fwd != nil {
		c.fwd.Forward(e)
	}
	return e
}

// Close cancels any armed tick unconditionally.
func (c *Controller) Close() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) perform(f Effect, now time.Time) {
	switch f := f.(type) {
	case LogEntry:
		c.AddEntry(f.Entry)
	case SessionStarted:
		if c.rec != nil {
			id, err := c.rec.StartPomodoroSession(f.Settings, now)
			if err != nil {
				c.report(fmt.Errorf("record pomodoro start: %w", err))
			}
			c.sessionID = id
		}
	case SessionEnded:
		if c.rec != nil && c.sessionID != "" {
			if err := c.rec.FinishPomodoroSession(c.sessionID, f.Completed, f.Reason, now); err != nil {
				c.report(fmt.Errorf("record pomodoro end: %w", err))
			}
		}
		c.sessionID = ""
	}
	if c.onEffect != nil {
		c.onEffect(f)
	}
}

// syncTicker keeps exactly one tick subscription armed while a timer runs.
// A restart tears down the old subscription before arming a new one.
func (c *Controller) syncTicker(restart bool) {
	want := c.state.Ticking()
	if c.cancel != nil && (!want || restart) {
		c.cancel()
		c.cancel = nil
	}
	if want && c.cancel == nil {
		c.cancel = c.sched.OnTick(c.tick)
	}
}

func (c *Controller) tick() {
	c.Dispatch(Tick{})
}

func (c *Controller) report(err error) {
	if c.onError != nil {
		c.onError(err)
	}
}
