package tasksync

import "github.com/jrazmi/todolist/client/taskapi"

// Event is an input to Reduce. UI code dispatches the *Requested events and
// NewTextChanged; commands produce the rest.
type Event interface {
	event()
}

// ReloadRequested fetches the first page again.
type ReloadRequested struct{}

// NextPageRequested fetches the page after the stored cursor.
type NextPageRequested struct{}

// PageLoaded carries a fetched page.
type PageLoaded struct {
	Tasks      []taskapi.Task
	Cursor     string
	Generation uint64
}

// LoadFailed ends a load with a message for the user.
type LoadFailed struct {
	Message    string
	Generation uint64
}

// NewTextChanged updates the text of the task being composed.
type NewTextChanged struct {
	Text string
}

// CreateRequested turns the composed text into a task under TempID.
type CreateRequested struct {
	TempID ID
}

// Created promotes the record under TempID to the server's task.
type Created struct {
	TempID ID
	Task   taskapi.Task
}

// CreateFailed drops the record under TempID.
type CreateFailed struct {
	TempID       ID
	Unauthorized bool
	Message      string
}

// EditRequested applies Changes to a record. Original holds the values to
// restore if the server rejects the edit.
type EditRequested struct {
	ID       ID
	Changes  Changes
	Original Fields
}

// EditFailed restores Original.
type EditFailed struct {
	ID       ID
	Original Fields
}

// DeleteRequested starts the undo window for a record.
type DeleteRequested struct {
	ID ID
}

// DeleteUndone puts Record back exactly as it was before the delete.
type DeleteUndone struct {
	Record Record
}

// Deleted removes a record for good.
type Deleted struct {
	ID ID
}

// DeleteFailed restores Record after the server refused the delete.
type DeleteFailed struct {
	Record  Record
	Message string
}

// SignedOut forgets every record and the stored token.
type SignedOut struct{}

func (ReloadRequested) event()   {}
func (NextPageRequested) event() {}
func (PageLoaded) event()        {}
func (LoadFailed) event()        {}
func (NewTextChanged) event()    {}
func (CreateRequested) event()   {}
func (Created) event()           {}
func (CreateFailed) event()      {}
func (EditRequested) event()     {}
func (EditFailed) event()        {}
func (DeleteRequested) event()   {}
func (DeleteUndone) event()      {}
func (Deleted) event()           {}
func (DeleteFailed) event()      {}
func (SignedOut) event()         {}
