package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced clock. Callbacks run synchronously inside
// Advance, in deadline order.
type Fake struct {
	mu      sync.Mutex
	cond    *sync.Cond
	now     time.Time
	nextID  int
	pending map[int]*fakeTimer
}

type fakeTimer struct {
	clock *Fake
	id    int
	at    time.Time
	f     func()
}

// NewFake returns a Fake that reads start.
func NewFake(start time.Time) *Fake {
	c := &Fake{
		now:     start,
		pending: make(map[int]*fakeTimer),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Fake) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	t := &fakeTimer{clock: c, id: c.nextID, at: c.now.Add(d), f: f}
	c.pending[t.id] = t
	c.cond.Broadcast()
	return t
}

func (t *fakeTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pending[t.id]; !ok {
		return false
	}
	delete(c.pending, t.id)
	c.cond.Broadcast()
	return true
}

// Advance moves the clock forward by d, firing every timer that comes due.
// Timers scheduled by those callbacks fire too when they fall inside d.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	end := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDue(end)
		if next == nil {
			c.now = end
			c.mu.Unlock()
			return
		}
		delete(c.pending, next.id)
		if next.at.After(c.now) {
			c.now = next.at
		}
		c.cond.Broadcast()
		c.mu.Unlock()

		next.f()
	}
}

// nextDue returns the earliest timer due at or before end. Callers hold mu.
func (c *Fake) nextDue(end time.Time) *fakeTimer {
	due := make([]*fakeTimer, 0, len(c.pending))
	for _, t := range c.pending {
		if !t.at.After(end) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].id < due[j].id
		}
		return due[i].at.Before(due[j].at)
	})
	return due[0]
}

// Pending returns the number of scheduled timers.
func (c *Fake) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// BlockUntil waits until at least n timers are scheduled. Tests use it to
// let goroutines reach their timer before advancing.
func (c *Fake) BlockUntil(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.pending) < n {
		c.cond.Wait()
	}
}
