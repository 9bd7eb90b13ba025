// Package tasksync keeps a client side copy of the user's task list in step
// with the server. Edits apply locally first and are rolled back when the
// server refuses them.
//
// All state changes go through Reduce, one event at a time, on the Engine's
// Run loop. Network work happens in Commands on their own goroutines; their
// outcomes come back as further events.
package tasksync

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrStopped is returned by Dispatch once Run has exited.
var ErrStopped = errors.New("engine stopped")

// Engine owns a State and runs the commands Reduce asks for.
type Engine struct {
	deps   Deps
	events chan Event
	done   chan struct{}

	mu       sync.RWMutex
	state    State
	lastTemp int64
	updates  chan struct{}
}

func NewEngine(deps Deps) *Engine {
	if deps.Log == nil {
		deps.Log = Deps{}.log()
	}
	return &Engine{
		deps:    deps,
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
		state:   NewState(),
		updates: make(chan struct{}, 1),
	}
}

// Run processes events until ctx is done, then waits for running commands.
func (e *Engine) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	defer close(e.done)

	for {
		select {
		case <-ctx.Done():
			_ = g.Wait()
			return ctx.Err()

		case ev := <-e.events:
			e.mu.Lock()
			next, cmds := Reduce(e.state, ev)
			e.state = next
			e.mu.Unlock()
			e.changed()

			for _, cmd := range cmds {
				g.Go(func() error {
					for _, out := range cmd.Run(gctx, e.deps) {
						e.dispatch(gctx, out)
					}
					return nil
				})
			}
		}
	}
}

// Dispatch queues ev for the Run loop.
func (e *Engine) Dispatch(ev Event) error {
	select {
	case <-e.done:
		return ErrStopped
	default:
	}

	select {
	case e.events <- ev:
		return nil
	case <-e.done:
		return ErrStopped
	}
}

func (e *Engine) dispatch(ctx context.Context, ev Event) {
	select {
	case e.events <- ev:
	case <-ctx.Done():
	case <-e.done:
	}
}

// State returns a snapshot of the current state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.clone()
}

// Updates signals after every event. Signals coalesce.
func (e *Engine) Updates() <-chan struct{} {
	return e.updates
}

// NewTemporaryID returns a temporary id unique within this engine.
func (e *Engine) NewTemporaryID() ID {
	now := e.deps.Clock.Now().UnixNano()

	e.mu.Lock()
	defer e.mu.Unlock()
	if now <= e.lastTemp {
		now = e.lastTemp + 1
	}
	e.lastTemp = now
	return ID{temporary: true, nanos: now}
}

func (e *Engine) changed() {
	select {
	case e.updates <- struct{}{}:
	default:
	}
}
