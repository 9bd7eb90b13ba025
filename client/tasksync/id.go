package tasksync

import (
	"cmp"
	"strconv"
	"strings"
	"time"
)

// ID identifies a client record. A Temporary id names a task the server has
// not confirmed yet; a Persistent id carries the server's encoded task id.
// IDs are comparable and usable as map keys.
type ID struct {
	temporary bool
	nanos     int64
	token     string
}

// Temporary returns the id of a task created locally at createdAt.
func Temporary(createdAt time.Time) ID {
	return ID{temporary: true, nanos: createdAt.UnixNano()}
}

// Persistent returns the id of a task the server knows as token.
func Persistent(token string) ID {
	return ID{token: token}
}

func (id ID) IsTemporary() bool {
	return id.temporary
}

// Token returns the server id, or "" for a temporary id.
func (id ID) Token() string {
	return id.token
}

func (id ID) String() string {
	if id.temporary {
		return "tmp-" + strconv.FormatInt(id.nanos, 10)
	}
	return id.token
}

// Compare orders ids for display. Temporary ids come first, newest first,
// then persistent ids by token descending. Server tokens sort in creation
// order, so the whole list is newest first.
func Compare(a, b ID) int {
	switch {
	case a.temporary && b.temporary:
		return cmp.Compare(b.nanos, a.nanos)
	case a.temporary:
		return -1
	case b.temporary:
		return 1
	default:
		return strings.Compare(b.token, a.token)
	}
}
