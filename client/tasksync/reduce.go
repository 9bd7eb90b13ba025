package tasksync

import "time"

// MinReloadDuration is the shortest time a reload, or a retry after an
// error, keeps the list in Loading.
const MinReloadDuration = 500 * time.Millisecond

// Reduce applies ev to s and returns the next state along with the commands
// the engine must run. It does not modify s.
func Reduce(s State, ev Event) (State, []Command) {
	s = s.clone()

	switch ev := ev.(type) {
	case ReloadRequested:
		return load(s, true)

	case NextPageRequested:
		if s.Status == Loaded && s.Cursor == "" {
			return s, nil
		}
		return load(s, false)

	case PageLoaded:
		if stale, cmds := settle(&s, ev.Generation); stale {
			return s, cmds
		}
		for _, t := range ev.Tasks {
			id := Persistent(t.ID)
			rec := Record{ID: id, Text: t.Text, IsComplete: t.IsComplete}
			if old, ok := s.Records[id]; ok {
				rec.TemporaryID = old.TemporaryID
				rec.PendingDelete = old.PendingDelete
			}
			s.Records[id] = rec
		}
		s.Cursor = ev.Cursor
		s.Status = Loaded
		s.Err = ""
		return s, nil

	case LoadFailed:
		if stale, cmds := settle(&s, ev.Generation); stale {
			return s, cmds
		}
		s.Status = Error
		s.Err = ev.Message
		return s, nil

	case NewTextChanged:
		s.NewText = ev.Text
		return s, nil

	case CreateRequested:
		if s.NewText == "" {
			return s, nil
		}
		if _, taken := s.Records[ev.TempID]; taken {
			return s, nil
		}
		text := s.NewText
		s.NewText = ""
		s.Records[ev.TempID] = Record{ID: ev.TempID, Text: text}
		return s, []Command{CreateCommand{TempID: ev.TempID, Text: text}}

	case Created:
		tmp, ok := s.Records[ev.TempID]
		if !ok {
			return s, nil
		}
		delete(s.Records, ev.TempID)
		tempID := tmp.ID
		s.Records[Persistent(ev.Task.ID)] = Record{
			ID:          Persistent(ev.Task.ID),
			Text:        ev.Task.Text,
			IsComplete:  ev.Task.IsComplete,
			TemporaryID: &tempID,
		}
		return s, nil

	case CreateFailed:
		delete(s.Records, ev.TempID)
		return s, nil

	case EditRequested:
		rec, ok := s.Records[ev.ID]
		if !ok || ev.ID.IsTemporary() || rec.PendingDelete {
			return s, nil
		}
		s.Records[ev.ID] = ev.Changes.apply(rec)
		return s, []Command{EditCommand{ID: ev.ID, Changes: ev.Changes, Original: ev.Original}}

	case EditFailed:
		rec, ok := s.Records[ev.ID]
		if !ok {
			return s, nil
		}
		rec.Text = ev.Original.Text
		rec.IsComplete = ev.Original.IsComplete
		s.Records[ev.ID] = rec
		return s, nil

	case DeleteRequested:
		rec, ok := s.Records[ev.ID]
		if !ok || ev.ID.IsTemporary() || rec.PendingDelete {
			return s, nil
		}
		hidden := rec
		hidden.PendingDelete = true
		s.Records[ev.ID] = hidden
		return s, []Command{DeleteCommand{Record: rec}}

	case DeleteUndone:
		return restore(s, ev.Record), nil

	case DeleteFailed:
		return restore(s, ev.Record), nil

	case Deleted:
		delete(s.Records, ev.ID)
		return s, nil

	case SignedOut:
		next := NewState()
		next.Generation = s.Generation + 1
		next.inFlight = s.inFlight
		return next, []Command{SignOutCommand{}}
	}

	return s, nil
}

func load(s State, reload bool) (State, []Command) {
	if s.Status == Loading {
		return s, nil
	}

	cmd := LoadCommand{Generation: s.Generation}
	if !reload {
		cmd.Cursor = s.Cursor
	}
	if reload || s.Status == Error {
		cmd.MinDuration = MinReloadDuration
	}

	s.Status = Loading
	s.Err = ""
	if s.inFlight {
		s.queued = &cmd
		return s, nil
	}
	s.inFlight = true
	return s, []Command{cmd}
}

// settle records that the running load has reported. It reports whether the
// result belongs to an earlier generation, in which case the result is
// ignored and any queued load is started instead.
func settle(s *State, gen uint64) (bool, []Command) {
	s.inFlight = false
	if gen == s.Generation {
		return false, nil
	}
	if s.queued == nil {
		return true, nil
	}
	cmd := *s.queued
	s.queued = nil
	s.inFlight = true
	return true, []Command{cmd}
}

// restore puts rec back if its record is still waiting on a delete. A record
// that vanished meanwhile, for example on sign out, stays gone.
func restore(s State, rec Record) State {
	cur, ok := s.Records[rec.ID]
	if !ok || !cur.PendingDelete {
		return s
	}
	rec.PendingDelete = false
	s.Records[rec.ID] = rec
	return s
}
