// Package toasts is a single-slot notification queue.
//
// At most one toast is live at a time. A live toast is dismissed by its
// timer, by Close, or restarted by a Send with the same id. When a toast
// closes its closure is delivered at once, but the queue only moves on to
// the next toast after a settle delay.
package toasts

import (
	"context"
	"sync"
	"time"

	"github.com/jrazmi/todolist/client/clock"
)

// Default timings.
const (
	DefaultUnit   = 3 * time.Second
	DefaultSettle = 200 * time.Millisecond
)

// Toast is a user facing notification. ButtonText, when set, labels the
// toast's action.
type Toast struct {
	ID         string
	Message    string
	ButtonText string
	UseSpinner bool
}

// Closure reports how a toast ended. WithAction is true when the user
// pressed the toast's button.
type Closure struct {
	ID         string
	WithAction bool
}

// State is what a renderer needs to draw the toast area.
type State struct {
	Live    *Toast
	Closing bool
	Queued  int
}

type phase int

const (
	idle phase = iota
	live
	closing
)

// Option overrides a default at construction.
type Option func(*Queue)

// WithUnit sets the lifetime unit. A toast lives one unit when others are
// waiting or it shows a spinner, two units otherwise.
func WithUnit(d time.Duration) Option {
	return func(q *Queue) {
		q.unit = d
	}
}

// WithSettle sets the delay between a closure and the next toast.
func WithSettle(d time.Duration) Option {
	return func(q *Queue) {
		q.settle = d
	}
}

// Queue serializes toasts. The zero value is not usable; call New.
type Queue struct {
	clock  clock.Clock
	unit   time.Duration
	settle time.Duration

	mu      sync.Mutex
	entries []Toast
	phase   phase
	gen     uint64
	timer   clock.Timer
	// graced is set once the live toast has had its first unit.
	graced  bool
	waiters map[string][]chan Closure
	updates chan struct{}
}

func New(clk clock.Clock, opts ...Option) *Queue {
	q := &Queue{
		clock:   clk,
		unit:    DefaultUnit,
		settle:  DefaultSettle,
		waiters: make(map[string][]chan Closure),
		updates: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Send enqueues t. A queued toast with the same id is replaced in place; a
// live one restarts its lifetime with the new content and no closure.
func (q *Queue) Send(t Toast) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.sendLocked(t)
}

// Notify sends t and waits for its closure.
func (q *Queue) Notify(ctx context.Context, t Toast) (Closure, error) {
	ch := make(chan Closure, 1)

	q.mu.Lock()
	q.waiters[t.ID] = append(q.waiters[t.ID], ch)
	q.sendLocked(t)
	q.mu.Unlock()

	return q.wait(ctx, t.ID, ch)
}

// Await waits for the next closure of the toast with id.
func (q *Queue) Await(ctx context.Context, id string) (Closure, error) {
	ch := make(chan Closure, 1)

	q.mu.Lock()
	q.waiters[id] = append(q.waiters[id], ch)
	q.mu.Unlock()

	return q.wait(ctx, id, ch)
}

// Close ends the live toast if its id matches. It reports whether a toast
// was closed.
func (q *Queue) Close(id string, withAction bool) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.phase != live || q.entries[0].ID != id {
		return false
	}
	q.closeLocked(withAction)
	return true
}

// State returns a snapshot of the queue.
func (q *Queue) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()

	var s State
	if len(q.entries) > 0 {
		head := q.entries[0]
		s.Live = &head
		s.Closing = q.phase == closing
		s.Queued = len(q.entries) - 1
	}
	return s
}

// Entries returns a copy of the queue, live toast first.
func (q *Queue) Entries() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	return append([]Toast(nil), q.entries...)
}

// Updates is signalled after every change. Signals coalesce.
func (q *Queue) Updates() <-chan struct{} {
	return q.updates
}

func (q *Queue) sendLocked(t Toast) {
	defer q.changed()

	if i := q.index(t.ID); i >= 0 {
		q.entries[i] = t
		if i == 0 {
			q.startLocked()
		}
		return
	}

	q.entries = append(q.entries, t)
	switch {
	case q.phase == idle:
		q.startLocked()
	case q.phase == live && q.graced:
		q.closeLocked(false)
	}
}

// index finds id among the entries that can still be replaced. A closing
// head is finished and is skipped.
func (q *Queue) index(id string) int {
	start := 0
	if q.phase == closing {
		start = 1
	}
	for i := start; i < len(q.entries); i++ {
		if q.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (q *Queue) startLocked() {
	q.stopTimerLocked()
	q.phase = live
	q.graced = false

	gen := q.gen
	q.timer = q.clock.AfterFunc(q.unit, func() { q.firstUnit(gen) })
}

func (q *Queue) firstUnit(gen uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if gen != q.gen || q.phase != live {
		return
	}

	if len(q.entries) > 1 || q.entries[0].UseSpinner {
		q.closeLocked(false)
		return
	}

	q.graced = true
	q.timer = q.clock.AfterFunc(q.unit, func() { q.expire(gen) })
}

func (q *Queue) expire(gen uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if gen != q.gen || q.phase != live {
		return
	}
	q.closeLocked(false)
}

func (q *Queue) closeLocked(withAction bool) {
	defer q.changed()

	q.stopTimerLocked()
	q.phase = closing

	head := q.entries[0]
	c := Closure{ID: head.ID, WithAction: withAction}
	for _, ch := range q.waiters[head.ID] {
		ch <- c
	}
	delete(q.waiters, head.ID)

	gen := q.gen
	q.timer = q.clock.AfterFunc(q.settle, func() { q.shift(gen) })
}

func (q *Queue) shift(gen uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if gen != q.gen || q.phase != closing {
		return
	}
	defer q.changed()

	q.entries = q.entries[1:]
	if len(q.entries) == 0 {
		q.stopTimerLocked()
		q.phase = idle
		return
	}
	q.startLocked()
}

func (q *Queue) stopTimerLocked() {
	q.gen++
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}

func (q *Queue) changed() {
	select {
	case q.updates <- struct{}{}:
	default:
	}
}

func (q *Queue) wait(ctx context.Context, id string, ch chan Closure) (Closure, error) {
	select {
	case c := <-ch:
		return c, nil
	case <-ctx.Done():
		q.mu.Lock()
		defer q.mu.Unlock()

		select {
		case c := <-ch:
			return c, nil
		default:
		}

		waiters := q.waiters[id]
		for i, w := range waiters {
			if w == ch {
				q.waiters[id] = append(waiters[:i], waiters[i+1:]...)
				break
			}
		}
		if len(q.waiters[id]) == 0 {
			delete(q.waiters, id)
		}
		return Closure{}, ctx.Err()
	}
}
