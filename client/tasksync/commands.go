package tasksync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jrazmi/todolist/client/clock"
	"github.com/jrazmi/todolist/client/session"
	"github.com/jrazmi/todolist/client/taskapi"
	"github.com/jrazmi/todolist/client/toasts"
)

// Messages shown to the user.
const (
	MsgAuthFailed     = "Couldn't authenticate."
	MsgSignInToAdd    = "Sign in to add tasks."
	MsgCreateFailed   = "Couldn't create task."
	MsgEditFailed     = "Couldn't save changes."
	MsgDeleteFailed   = "Couldn't delete task."
	MsgDeleting       = "Deleting task…"
	UndoButton        = "Undo"
	signInToastID     = "sign-in"
	createToastID     = "create-failed"
	editToastID       = "edit-failed"
	deleteFailToastID = "delete-failed"
)

// API is the part of the task service the engine talks to.
type API interface {
	List(ctx context.Context, token, cursor string, pageSize int) (taskapi.Page, error)
	Create(ctx context.Context, token, text string, isComplete bool) (taskapi.Task, error)
	Update(ctx context.Context, token, id string, changes taskapi.Changes) (taskapi.Task, error)
	Delete(ctx context.Context, token, id string) error
	Refresh(ctx context.Context, token string) (taskapi.Token, error)
}

// Toasts shows notifications.
type Toasts interface {
	Send(t toasts.Toast)
	Notify(ctx context.Context, t toasts.Toast) (toasts.Closure, error)
}

// Deps are the collaborators commands run against.
type Deps struct {
	API      API
	Tokens   session.Store
	Toasts   Toasts
	Clock    clock.Clock
	Log      *slog.Logger
	PageSize int
}

func (d Deps) log() *slog.Logger {
	if d.Log == nil {
		return slog.Default()
	}
	return d.Log
}

func (d Deps) token() string {
	tok, ok, err := d.Tokens.Load()
	if err != nil {
		d.log().Warn("load token", "err", err)
		return ""
	}
	if !ok {
		return ""
	}
	return tok.Value
}

// Command is work Reduce asks for. Run performs it and returns the events
// that report its outcome.
type Command interface {
	Run(ctx context.Context, d Deps) []Event
}

// LoadCommand fetches one page. When MinDuration is set the outcome is held
// back until that much time has passed. The outcome carries Generation so
// Reduce can tell results from before a sign out.
type LoadCommand struct {
	Cursor      string
	MinDuration time.Duration
	Generation  uint64
}

func (c LoadCommand) Run(ctx context.Context, d Deps) []Event {
	var ev Event

	g, gctx := errgroup.WithContext(ctx)
	if c.MinDuration > 0 {
		g.Go(func() error {
			clock.Sleep(d.Clock, c.MinDuration, gctx.Done())
			return nil
		})
	}
	g.Go(func() error {
		ev = c.fetch(gctx, d)
		return nil
	})
	_ = g.Wait()

	switch e := ev.(type) {
	case PageLoaded:
		e.Generation = c.Generation
		ev = e
	case LoadFailed:
		e.Generation = c.Generation
		ev = e
	}
	return []Event{ev}
}

func (c LoadCommand) fetch(ctx context.Context, d Deps) Event {
	tok, hasToken, err := d.Tokens.Load()
	if err != nil {
		return LoadFailed{Message: err.Error()}
	}

	page, err := d.API.List(ctx, tok.Value, c.Cursor, d.PageSize)
	switch {
	case err == nil:
		return pageLoaded(page)
	case !taskapi.IsUnauthorized(err):
		d.log().Warn("list tasks", "err", err)
		return LoadFailed{Message: err.Error()}
	case !hasToken:
		// Signed out users simply have no tasks.
		return PageLoaded{}
	case !tokenExpired(d, tok, err):
		return LoadFailed{Message: MsgAuthFailed}
	}

	fresh, err := d.API.Refresh(ctx, tok.Value)
	if err != nil {
		d.log().Info("refresh token", "err", err)
		return LoadFailed{Message: err.Error()}
	}
	if err := d.Tokens.Save(session.Token{Value: fresh.Token, ExpiresAt: fresh.ExpiresAt}); err != nil {
		return LoadFailed{Message: err.Error()}
	}

	page, err = d.API.List(ctx, fresh.Token, c.Cursor, d.PageSize)
	if err != nil {
		d.log().Warn("list tasks after refresh", "err", err)
		if taskapi.IsUnauthorized(err) {
			return LoadFailed{Message: MsgAuthFailed}
		}
		return LoadFailed{Message: err.Error()}
	}
	return pageLoaded(page)
}

// tokenExpired reports whether tok is known to be stale, either from its
// stored expiry or because the server said so.
func tokenExpired(d Deps, tok session.Token, err error) bool {
	if tok.Expired(d.Clock.Now()) {
		return true
	}
	var se *taskapi.StatusError
	return errors.As(err, &se) && se.Code == "token_expired"
}

func pageLoaded(p taskapi.Page) PageLoaded {
	return PageLoaded{Tasks: p.Tasks, Cursor: p.NextCursor}
}

// CreateCommand posts a new task.
type CreateCommand struct {
	TempID ID
	Text   string
}

func (c CreateCommand) Run(ctx context.Context, d Deps) []Event {
	task, err := d.API.Create(ctx, d.token(), c.Text, false)
	if err == nil {
		return []Event{Created{TempID: c.TempID, Task: task}}
	}

	d.log().Warn("create task", "err", err)
	if taskapi.IsUnauthorized(err) {
		d.Toasts.Send(toasts.Toast{ID: signInToastID, Message: MsgSignInToAdd})
		return []Event{CreateFailed{TempID: c.TempID, Unauthorized: true, Message: err.Error()}}
	}
	d.Toasts.Send(toasts.Toast{ID: createToastID, Message: MsgCreateFailed})
	return []Event{CreateFailed{TempID: c.TempID, Message: err.Error()}}
}

// EditCommand patches a task.
type EditCommand struct {
	ID       ID
	Changes  Changes
	Original Fields
}

func (c EditCommand) Run(ctx context.Context, d Deps) []Event {
	if _, err := d.API.Update(ctx, d.token(), c.ID.Token(), toAPIChanges(c.Changes)); err != nil {
		d.log().Warn("update task", "id", c.ID, "err", err)
		d.Toasts.Send(toasts.Toast{ID: editToastID, Message: MsgEditFailed})
		return []Event{EditFailed{ID: c.ID, Original: c.Original}}
	}
	return nil
}

func toAPIChanges(c Changes) taskapi.Changes {
	return taskapi.Changes{Text: c.Text, IsComplete: c.IsComplete}
}

// DeleteCommand holds a delete open behind an undo toast and sends it once
// the toast closes on its own.
type DeleteCommand struct {
	Record Record
}

// DeleteToastID names the undo toast for a record.
func DeleteToastID(id ID) string {
	return "delete-" + id.String()
}

func (c DeleteCommand) Run(ctx context.Context, d Deps) []Event {
	closure, err := d.Toasts.Notify(ctx, toasts.Toast{
		ID:         DeleteToastID(c.Record.ID),
		Message:    MsgDeleting,
		ButtonText: UndoButton,
		UseSpinner: true,
	})
	if err != nil || closure.WithAction {
		return []Event{DeleteUndone{Record: c.Record}}
	}

	err = d.API.Delete(ctx, d.token(), c.Record.ID.Token())
	if err != nil && !taskapi.IsNotFound(err) {
		d.log().Warn("delete task", "id", c.Record.ID, "err", err)
		d.Toasts.Send(toasts.Toast{ID: deleteFailToastID, Message: MsgDeleteFailed})
		return []Event{DeleteFailed{Record: c.Record, Message: err.Error()}}
	}
	return []Event{Deleted{ID: c.Record.ID}}
}

// SignOutCommand forgets the stored token.
type SignOutCommand struct{}

func (SignOutCommand) Run(_ context.Context, d Deps) []Event {
	if err := d.Tokens.Clear(); err != nil {
		d.log().Warn("clear token", "err", err)
	}
	return nil
}
