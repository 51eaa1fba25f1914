package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler arms a repeating tick. The returned cancel func stops it and is
// safe to call more than once.
type Scheduler interface {
	OnTick(fn func()) (cancel func())
}

// Interval fires fn every Every. Each tick is handed to Post, which is
// expected to run it on the owner's event loop; with a nil Post the callback
// runs on the ticker goroutine.
type Interval struct {
	Every time.Duration
	Post  func(func())
}

func (s Interval) OnTick(fn func()) func() {
	every := s.Every
	if every <= 0 {
		every = time.Second
	}

	var stopped atomic.Bool
	ticker := time.NewTicker(every)
	done := make(chan struct{})

	run := func() {
		// A tick may already be queued on the loop when cancel runs.
		if stopped.Load() {
			return
		}
		fn()
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if s.Post != nil {
					s.Post(run)
				} else {
					run()
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stopped.Store(true)
			ticker.Stop()
			close(done)
		})
	}
}

// Manual is a Scheduler driven by hand. Tests call Fire to deliver one tick
// synchronously.
type Manual struct {
	mu    sync.Mutex
	next  int
	subs  map[int]func()
	armed int // total OnTick calls
}

func NewManual() *Manual {
	return &Manual{subs: make(map[int]func())}
}

func (m *Manual) OnTick(fn func()) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = fn
	m.armed++
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Fire delivers one tick to every live subscription.
func (m *Manual) Fire() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// FireN delivers n ticks.
func (m *Manual) FireN(n int) {
	for i := 0; i < n; i++ {
		m.Fire()
	}
}

// Live reports the number of subscriptions that have not been cancelled.
func (m *Manual) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Armed reports how many times OnTick has been called.
func (m *Manual) Armed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed
}
