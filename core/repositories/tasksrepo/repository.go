// Package tasksrepo is the owner-scoped task store. Every method takes the
// caller's user id; a task owned by someone else behaves exactly like a task
// that does not exist.
package tasksrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jrazmi/todolist/core/scaffolding/fop"
	"github.com/jrazmi/todolist/core/scaffolding/ids"
	"github.com/jrazmi/todolist/sdk/logger"
)

// Storer is the storage behind the repository. Implementations return
// repositories.ErrNotFound when no row matches both owner and task id.
type Storer interface {
	Create(ctx context.Context, task Task) error
	Get(ctx context.Context, ownerID, taskID uuid.UUID) (Task, error)
	// List returns up to limit tasks of ownerID in descending task id order,
	// starting at from (inclusive) when it is set.
	List(ctx context.Context, ownerID uuid.UUID, from *uuid.UUID, limit int) ([]Task, error)
	Update(ctx context.Context, ownerID, taskID uuid.UUID, update UpdateTask, now time.Time) (Task, error)
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) error
}

// Repository provides access to task storage.
type Repository struct {
	log    *logger.Logger
	storer Storer
	now    func() time.Time
}

// NewRepository creates a new Task repository
func NewRepository(log *logger.Logger, storer Storer) *Repository {
	return &Repository{
		log:    log,
		storer: storer,
		now:    time.Now,
	}
}

// List returns one page of ownerID's tasks, newest first. The page cursor is
// the encoded id of the first task of the following page.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID, page fop.PageStringCursor) (fop.Page[Task], error) {
	from, err := decodeCursor(page.Cursor)
	if err != nil {
		return fop.Page[Task]{}, err
	}

	rows, err := r.storer.List(ctx, ownerID, from, page.Limit+1)
	if err != nil {
		return fop.Page[Task]{}, fmt.Errorf("list tasks: %w", err)
	}

	return fop.Paginate(rows, page.Limit, func(t Task) string {
		return ids.Encode(t.TaskID)
	})
}

func decodeCursor(token string) (*uuid.UUID, error) {
	cursor, err := fop.DecodeCursor[string](token)
	if err != nil || cursor == nil {
		return nil, err
	}

	id, err := ids.Decode(cursor.PK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fop.ErrInvalidCursor, err)
	}

	return &id, nil
}

// Get returns a single task.
func (r *Repository) Get(ctx context.Context, ownerID, taskID uuid.UUID) (Task, error) {
	task, err := r.storer.Get(ctx, ownerID, taskID)
	if err != nil {
		return Task{}, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// Create stores a new task owned by ownerID and assigns its id.
func (r *Repository) Create(ctx context.Context, ownerID uuid.UUID, input CreateTask) (Task, error) {
	if err := input.Validate(); err != nil {
		return Task{}, err
	}

	taskID, err := ids.New()
	if err != nil {
		return Task{}, err
	}

	now := r.timestamp()
	task := Task{
		TaskID:     taskID,
		OwnerID:    ownerID,
		Text:       input.Text,
		IsComplete: input.IsComplete,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := r.storer.Create(ctx, task); err != nil {
		return Task{}, fmt.Errorf("create task: %w", err)
	}

	r.log.DebugContext(ctx, "task created", "task_id", taskID)
	return task, nil
}

// Update applies the non-nil fields of update and returns the result. An
// empty update returns the task unchanged.
func (r *Repository) Update(ctx context.Context, ownerID, taskID uuid.UUID, update UpdateTask) (Task, error) {
	if err := update.Validate(); err != nil {
		return Task{}, err
	}

	if update.Empty() {
		return r.Get(ctx, ownerID, taskID)
	}

	task, err := r.storer.Update(ctx, ownerID, taskID, update, r.timestamp())
	if err != nil {
		return Task{}, fmt.Errorf("update task: %w", err)
	}

	return task, nil
}

// Delete removes a task immediately.
func (r *Repository) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	if err := r.storer.Delete(ctx, ownerID, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	r.log.DebugContext(ctx, "task deleted", "task_id", taskID)
	return nil
}

// Both stores keep microseconds at most.
func (r *Repository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}
