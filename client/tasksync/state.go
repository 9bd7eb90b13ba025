package tasksync

import (
	"maps"
	"slices"
)

// Status is the state of the task list as a whole.
type Status int

const (
	Unloaded Status = iota
	Loading
	Loaded
	Error
)

func (s Status) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Record is the client's copy of a task.
type Record struct {
	ID         ID
	Text       string
	IsComplete bool

	// TemporaryID is the id the record had before the server confirmed it.
	TemporaryID *ID

	// PendingDelete hides the record while its undo window is open.
	PendingDelete bool
}

// Fields are the user editable parts of a record.
type Fields struct {
	Text       string
	IsComplete bool
}

// Changes is a partial edit; nil fields are left alone.
type Changes struct {
	Text       *string
	IsComplete *bool
}

func (c Changes) apply(r Record) Record {
	if c.Text != nil {
		r.Text = *c.Text
	}
	if c.IsComplete != nil {
		r.IsComplete = *c.IsComplete
	}
	return r
}

// State is everything the client knows about the list. Reduce never
// mutates a State it is given.
type State struct {
	Status  Status
	Err     string
	Records map[ID]Record
	Cursor  string

	// NewText is the text of the task being composed.
	NewText string

	// Generation counts sign outs. Load results from an earlier generation
	// are dropped.
	Generation uint64

	// inFlight is set while a LoadCommand of any generation is running.
	// queued is a load held back until that one reports.
	inFlight bool
	queued   *LoadCommand
}

// NewState returns an empty, unloaded state.
func NewState() State {
	return State{Records: map[ID]Record{}}
}

// HasMore reports whether another page can be requested.
func (s State) HasMore() bool {
	return s.Cursor != ""
}

// Ordered returns the visible records, newest first.
func (s State) Ordered() []Record {
	out := make([]Record, 0, len(s.Records))
	for _, r := range s.Records {
		if !r.PendingDelete {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b Record) int { return Compare(a.ID, b.ID) })
	return out
}

// Record returns the record with id, including one pending deletion.
func (s State) Record(id ID) (Record, bool) {
	r, ok := s.Records[id]
	return r, ok
}

func (s State) clone() State {
	s.Records = maps.Clone(s.Records)
	if s.Records == nil {
		s.Records = map[ID]Record{}
	}
	return s
}
