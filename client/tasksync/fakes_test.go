package tasksync_test

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/jrazmi/todolist/client/clock"
	"github.com/jrazmi/todolist/client/session"
	"github.com/jrazmi/todolist/client/taskapi"
	"github.com/jrazmi/todolist/client/tasksync"
	"github.com/jrazmi/todolist/client/toasts"
)

const refreshRefused = "token expired too long ago to refresh"

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeAPI is an in-memory task service. Tokens in valid are accepted; any
// other token, including "", gets a 401.
type fakeAPI struct {
	mu      sync.Mutex
	valid   map[string]bool
	expired map[string]bool
	tasks   []taskapi.Task
	nextID  int
	fail    error
	calls   []string
	tokens  []string
}

func newFakeAPI(valid ...string) *fakeAPI {
	f := &fakeAPI{valid: map[string]bool{}, expired: map[string]bool{}}
	for _, tok := range valid {
		f.valid[tok] = true
	}
	return f
}

func (f *fakeAPI) record(call, token string) error {
	f.calls = append(f.calls, call)
	f.tokens = append(f.tokens, token)
	if f.expired[token] {
		return &taskapi.StatusError{StatusCode: http.StatusUnauthorized, Code: "token_expired"}
	}
	if !f.valid[token] {
		return &taskapi.StatusError{StatusCode: http.StatusUnauthorized, Code: "unauthenticated"}
	}
	return f.fail
}

func (f *fakeAPI) List(_ context.Context, token, cursor string, _ int) (taskapi.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list", token); err != nil {
		return taskapi.Page{}, err
	}
	return taskapi.Page{Tasks: slices.Clone(f.tasks)}, nil
}

func (f *fakeAPI) Create(_ context.Context, token, text string, isComplete bool) (taskapi.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create", token); err != nil {
		return taskapi.Task{}, err
	}
	f.nextID++
	t := taskapi.Task{ID: fmt.Sprintf("id%02d", f.nextID), Text: text, IsComplete: isComplete}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeAPI) Update(_ context.Context, token, id string, _ taskapi.Changes) (taskapi.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("update "+id, token); err != nil {
		return taskapi.Task{}, err
	}
	return taskapi.Task{ID: id}, nil
}

func (f *fakeAPI) Delete(_ context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("delete "+id, token)
}

func (f *fakeAPI) Refresh(_ context.Context, token string) (taskapi.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "refresh")
	f.tokens = append(f.tokens, token)
	if !f.expired[token] {
		return taskapi.Token{}, &taskapi.StatusError{StatusCode: http.StatusUnauthorized, Code: "unauthenticated", Message: refreshRefused}
	}
	fresh := token + "-fresh"
	f.valid[fresh] = true
	return taskapi.Token{Token: fresh, ExpiresAt: epoch.Add(time.Hour)}, nil
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// fakeToasts closes every Notify with the configured outcome.
type fakeToasts struct {
	mu       sync.Mutex
	sent     []toasts.Toast
	notified []toasts.Toast
	undo     bool
}

func (f *fakeToasts) Send(t toasts.Toast) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, t)
}

func (f *fakeToasts) Notify(_ context.Context, t toasts.Toast) (toasts.Closure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, t)
	return toasts.Closure{ID: t.ID, WithAction: f.undo}, nil
}

func (f *fakeToasts) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, t := range f.sent {
		out = append(out, t.Message)
	}
	return out
}

func newDeps(api *fakeAPI, tok *session.Token) (tasksync.Deps, *fakeToasts, *clock.Fake) {
	store := session.NewMemory()
	if tok != nil {
		if err := store.Save(*tok); err != nil {
			panic(err)
		}
	}
	ts := &fakeToasts{}
	clk := clock.NewFake(epoch)
	return tasksync.Deps{API: api, Tokens: store, Toasts: ts, Clock: clk}, ts, clk
}
