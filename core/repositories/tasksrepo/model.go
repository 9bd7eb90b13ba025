package tasksrepo

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTextLength bounds a task's text in characters.
const MaxTextLength = 1000

var (
	ErrEmptyText   = errors.New("text must not be empty")
	ErrTextTooLong = errors.New("text is too long")
)

// Task is a single to-do item. TaskID is a UUIDv7, so ordering by it is
// ordering by creation time.
type Task struct {
	TaskID     uuid.UUID `db:"task_id"`
	OwnerID    uuid.UUID `db:"owner_id"`
	Text       string    `db:"text"`
	IsComplete bool      `db:"is_complete"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// CreateTask contains the caller supplied fields for a new task.
type CreateTask struct {
	Text       string
	IsComplete bool
}

func (c CreateTask) Validate() error {
	return validateText(c.Text)
}

// UpdateTask is a partial update; nil fields are left alone.
type UpdateTask struct {
	Text       *string
	IsComplete *bool
}

func (u UpdateTask) Validate() error {
	if u.Text != nil {
		return validateText(*u.Text)
	}
	return nil
}

// Empty reports whether the update changes nothing.
func (u UpdateTask) Empty() bool {
	return u.Text == nil && u.IsComplete == nil
}

func validateText(s string) error {
	if s == "" {
		return ErrEmptyText
	}
	if utf8.RuneCountInString(s) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}
