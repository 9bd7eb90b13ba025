package tasksync_test

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"testing"
	"time"

	"github.com/jrazmi/todolist/client/session"
	"github.com/jrazmi/todolist/client/taskapi"
	"github.com/jrazmi/todolist/client/tasksync"
)

func runOne(t *testing.T, cmd tasksync.Command, d tasksync.Deps) tasksync.Event {
	t.Helper()
	evs := cmd.Run(context.Background(), d)
	if len(evs) != 1 {
		t.Fatalf("events = %v, want one", evs)
	}
	return evs[0]
}

func TestLoadWithoutTokenIsEmpty(t *testing.T) {
	api := newFakeAPI()
	d, _, _ := newDeps(api, nil)

	ev := runOne(t, tasksync.LoadCommand{}, d)
	page, ok := ev.(tasksync.PageLoaded)
	if !ok || len(page.Tasks) != 0 || page.Cursor != "" {
		t.Fatalf("event = %#v, want empty page", ev)
	}

	s, _ := tasksync.Reduce(tasksync.NewState(), tasksync.ReloadRequested{})
	s, _ = tasksync.Reduce(s, ev)
	if s.Status != tasksync.Loaded || len(s.Records) != 0 {
		t.Errorf("state = %+v", s)
	}
}

func TestLoadOutcomeCarriesGeneration(t *testing.T) {
	api := newFakeAPI()
	d, _, _ := newDeps(api, nil)

	ev := runOne(t, tasksync.LoadCommand{Generation: 3}, d)
	if page, ok := ev.(tasksync.PageLoaded); !ok || page.Generation != 3 {
		t.Errorf("event = %#v, want generation 3", ev)
	}

	d, _, _ = newDeps(api, &session.Token{Value: "revoked", ExpiresAt: epoch.Add(time.Hour)})
	ev = runOne(t, tasksync.LoadCommand{Generation: 4}, d)
	if failed, ok := ev.(tasksync.LoadFailed); !ok || failed.Generation != 4 {
		t.Errorf("event = %#v, want generation 4", ev)
	}
}

func TestLoadWithRejectedLiveToken(t *testing.T) {
	api := newFakeAPI()
	d, _, _ := newDeps(api, &session.Token{Value: "revoked", ExpiresAt: epoch.Add(time.Hour)})

	ev := runOne(t, tasksync.LoadCommand{}, d)
	if failed, ok := ev.(tasksync.LoadFailed); !ok || failed.Message != tasksync.MsgAuthFailed {
		t.Fatalf("event = %#v", ev)
	}
	if calls := api.Calls(); !slices.Equal(calls, []string{"list"}) {
		t.Errorf("calls = %v, want no refresh", calls)
	}
}

func TestLoadRefreshesExpiredTokenOnce(t *testing.T) {
	api := newFakeAPI()
	api.expired["stale"] = true
	api.tasks = []taskapi.Task{{ID: "a", Text: "one"}}
	d, _, _ := newDeps(api, &session.Token{Value: "stale", ExpiresAt: epoch.Add(-time.Minute)})

	ev := runOne(t, tasksync.LoadCommand{}, d)
	page, ok := ev.(tasksync.PageLoaded)
	if !ok || len(page.Tasks) != 1 {
		t.Fatalf("event = %#v", ev)
	}

	if calls := api.Calls(); !slices.Equal(calls, []string{"list", "refresh", "list"}) {
		t.Errorf("calls = %v", calls)
	}
	if got := api.tokens[2]; got != "stale-fresh" {
		t.Errorf("retry used token %q", got)
	}

	tok, ok, err := d.Tokens.Load()
	if err != nil || !ok || tok.Value != "stale-fresh" {
		t.Errorf("stored token = %+v, %v, %v", tok, ok, err)
	}
}

func TestLoadGivesUpWhenRefreshFails(t *testing.T) {
	api := newFakeAPI()
	d, _, _ := newDeps(api, &session.Token{Value: "unknown", ExpiresAt: epoch.Add(-time.Minute)})

	ev := runOne(t, tasksync.LoadCommand{}, d)
	if failed, ok := ev.(tasksync.LoadFailed); !ok || failed.Message != refreshRefused {
		t.Fatalf("event = %#v", ev)
	}
	if calls := api.Calls(); !slices.Equal(calls, []string{"list", "refresh"}) {
		t.Errorf("calls = %v", calls)
	}
}

func TestLoadReportsServerErrors(t *testing.T) {
	api := newFakeAPI("good")
	api.fail = &taskapi.StatusError{StatusCode: http.StatusInternalServerError, Message: "database down"}
	d, _, _ := newDeps(api, &session.Token{Value: "good"})

	ev := runOne(t, tasksync.LoadCommand{}, d)
	if failed, ok := ev.(tasksync.LoadFailed); !ok || failed.Message != "database down" {
		t.Fatalf("event = %#v", ev)
	}
}

func TestLoadHoldsForMinDuration(t *testing.T) {
	api := newFakeAPI("good")
	d, _, clk := newDeps(api, &session.Token{Value: "good"})

	out := make(chan []tasksync.Event, 1)
	go func() {
		out <- tasksync.LoadCommand{MinDuration: tasksync.MinReloadDuration}.Run(context.Background(), d)
	}()

	clk.BlockUntil(1)
	for len(api.Calls()) == 0 {
		time.Sleep(time.Millisecond)
	}
	select {
	case evs := <-out:
		t.Fatalf("load finished early with %v", evs)
	case <-time.After(20 * time.Millisecond):
	}

	clk.Advance(tasksync.MinReloadDuration)
	select {
	case evs := <-out:
		if _, ok := evs[0].(tasksync.PageLoaded); !ok {
			t.Errorf("event = %#v", evs[0])
		}
	case <-time.After(time.Second):
		t.Fatal("load did not finish after the minimum duration")
	}
}

func TestCreateUnauthorized(t *testing.T) {
	api := newFakeAPI()
	d, ts, _ := newDeps(api, nil)
	tmp := tasksync.Temporary(epoch)

	ev := runOne(t, tasksync.CreateCommand{TempID: tmp, Text: "x"}, d)
	failed, ok := ev.(tasksync.CreateFailed)
	if !ok || !failed.Unauthorized || failed.TempID != tmp {
		t.Fatalf("event = %#v", ev)
	}
	if sent := ts.Sent(); !slices.Equal(sent, []string{tasksync.MsgSignInToAdd}) {
		t.Errorf("toasts = %v", sent)
	}
}

func TestCreateReturnsServerTask(t *testing.T) {
	api := newFakeAPI("good")
	d, _, _ := newDeps(api, &session.Token{Value: "good"})
	tmp := tasksync.Temporary(epoch)

	ev := runOne(t, tasksync.CreateCommand{TempID: tmp, Text: "buy milk"}, d)
	created, ok := ev.(tasksync.Created)
	if !ok || created.TempID != tmp || created.Task.Text != "buy milk" {
		t.Fatalf("event = %#v", ev)
	}
}

func TestEditFailureReverts(t *testing.T) {
	api := newFakeAPI("good")
	api.fail = errors.New("offline")
	d, ts, _ := newDeps(api, &session.Token{Value: "good"})

	done := true
	orig := tasksync.Fields{Text: "a"}
	ev := runOne(t, tasksync.EditCommand{ID: tasksync.Persistent("a"), Changes: tasksync.Changes{IsComplete: &done}, Original: orig}, d)
	if failed, ok := ev.(tasksync.EditFailed); !ok || failed.Original != orig {
		t.Fatalf("event = %#v", ev)
	}
	if sent := ts.Sent(); !slices.Equal(sent, []string{tasksync.MsgEditFailed}) {
		t.Errorf("toasts = %v", sent)
	}
}

func TestEditSuccessIsSilent(t *testing.T) {
	api := newFakeAPI("good")
	d, _, _ := newDeps(api, &session.Token{Value: "good"})

	done := true
	evs := tasksync.EditCommand{ID: tasksync.Persistent("a"), Changes: tasksync.Changes{IsComplete: &done}}.Run(context.Background(), d)
	if len(evs) != 0 {
		t.Errorf("events = %v", evs)
	}
	if calls := api.Calls(); !slices.Equal(calls, []string{"update a"}) {
		t.Errorf("calls = %v", calls)
	}
}

func TestDeleteUndoSkipsServer(t *testing.T) {
	api := newFakeAPI("good")
	d, ts, _ := newDeps(api, &session.Token{Value: "good"})
	ts.undo = true
	rec := tasksync.Record{ID: tasksync.Persistent("a"), Text: "keep"}

	ev := runOne(t, tasksync.DeleteCommand{Record: rec}, d)
	if undone, ok := ev.(tasksync.DeleteUndone); !ok || undone.Record != rec {
		t.Fatalf("event = %#v", ev)
	}
	if calls := api.Calls(); len(calls) != 0 {
		t.Errorf("calls = %v, want none", calls)
	}

	toast := ts.notified[0]
	if toast.Message != tasksync.MsgDeleting || toast.ButtonText != tasksync.UndoButton || !toast.UseSpinner {
		t.Errorf("toast = %+v", toast)
	}
}

func TestDeleteAfterToastCloses(t *testing.T) {
	api := newFakeAPI("good")
	d, _, _ := newDeps(api, &session.Token{Value: "good"})

	ev := runOne(t, tasksync.DeleteCommand{Record: tasksync.Record{ID: tasksync.Persistent("a")}}, d)
	if deleted, ok := ev.(tasksync.Deleted); !ok || deleted.ID != tasksync.Persistent("a") {
		t.Fatalf("event = %#v", ev)
	}
	if calls := api.Calls(); !slices.Equal(calls, []string{"delete a"}) {
		t.Errorf("calls = %v", calls)
	}
}

func TestDeleteFailureRestores(t *testing.T) {
	api := newFakeAPI("good")
	api.fail = &taskapi.StatusError{StatusCode: http.StatusInternalServerError}
	d, ts, _ := newDeps(api, &session.Token{Value: "good"})
	rec := tasksync.Record{ID: tasksync.Persistent("a"), Text: "keep"}

	ev := runOne(t, tasksync.DeleteCommand{Record: rec}, d)
	if failed, ok := ev.(tasksync.DeleteFailed); !ok || failed.Record != rec {
		t.Fatalf("event = %#v", ev)
	}
	if sent := ts.Sent(); !slices.Equal(sent, []string{tasksync.MsgDeleteFailed}) {
		t.Errorf("toasts = %v", sent)
	}
}

func TestDeleteOfMissingTaskCounts(t *testing.T) {
	api := newFakeAPI("good")
	api.fail = &taskapi.StatusError{StatusCode: http.StatusNotFound}
	d, _, _ := newDeps(api, &session.Token{Value: "good"})

	ev := runOne(t, tasksync.DeleteCommand{Record: tasksync.Record{ID: tasksync.Persistent("a")}}, d)
	if _, ok := ev.(tasksync.Deleted); !ok {
		t.Fatalf("event = %#v", ev)
	}
}

func TestSignOutClearsToken(t *testing.T) {
	d, _, _ := newDeps(newFakeAPI(), &session.Token{Value: "good"})

	tasksync.SignOutCommand{}.Run(context.Background(), d)
	if _, ok, _ := d.Tokens.Load(); ok {
		t.Error("token still stored")
	}
}
