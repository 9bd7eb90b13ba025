// Package taskspgxstore implements tasksrepo.Storer on PostgreSQL.
package taskspgxstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/todolist/core/repositories"
	"github.com/jrazmi/todolist/core/repositories/tasksrepo"
	"github.com/jrazmi/todolist/infrastructure/postgresdb"
	"github.com/jrazmi/todolist/sdk/logger"
)

const columns = "task_id, owner_id, text, is_complete, created_at, updated_at"

// Store provides database access for Task.
type Store struct {
	log  *logger.Logger
	pool *postgresdb.Pool
}

// NewStore creates a new Task store
func NewStore(log *logger.Logger, pool *postgresdb.Pool) *Store {
	return &Store{
		log:  log,
		pool: pool,
	}
}

func (s *Store) Create(ctx context.Context, task tasksrepo.Task) error {
	const q = `
		INSERT INTO tasks (task_id, owner_id, text, is_complete, created_at, updated_at)
		VALUES (@task_id, @owner_id, @text, @is_complete, @created_at, @updated_at)`

	_, err := s.pool.Exec(ctx, q, pgx.NamedArgs{
		"task_id":     task.TaskID,
		"owner_id":    task.OwnerID,
		"text":        task.Text,
		"is_complete": task.IsComplete,
		"created_at":  task.CreatedAt,
		"updated_at":  task.UpdatedAt,
	})
	if err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, ownerID, taskID uuid.UUID) (tasksrepo.Task, error) {
	q := `SELECT ` + columns + ` FROM tasks WHERE owner_id = @owner_id AND task_id = @task_id`

	rows, err := s.pool.Query(ctx, q, pgx.NamedArgs{"owner_id": ownerID, "task_id": taskID})
	if err != nil {
		return tasksrepo.Task{}, translate(err)
	}

	task, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[tasksrepo.Task])
	if err != nil {
		return tasksrepo.Task{}, translate(err)
	}
	return task, nil
}

func (s *Store) List(ctx context.Context, ownerID uuid.UUID, from *uuid.UUID, limit int) ([]tasksrepo.Task, error) {
	var buf strings.Builder
	buf.WriteString(`SELECT ` + columns + ` FROM tasks WHERE owner_id = @owner_id`)
	args := pgx.NamedArgs{"owner_id": ownerID}

	keyset := postgresdb.Keyset[uuid.UUID]{
		PKField:   "task_id",
		Direction: postgresdb.DESC,
		From:      from,
		Limit:     limit,
	}
	if err := keyset.Apply(&buf, args); err != nil {
		return nil, fmt.Errorf("apply keyset: %w", err)
	}

	rows, err := s.pool.Query(ctx, buf.String(), args)
	if err != nil {
		return nil, translate(err)
	}

	tasks, err := pgx.CollectRows(rows, pgx.RowToStructByName[tasksrepo.Task])
	if err != nil {
		return nil, translate(err)
	}
	return tasks, nil
}

func (s *Store) Update(ctx context.Context, ownerID, taskID uuid.UUID, update tasksrepo.UpdateTask, now time.Time) (tasksrepo.Task, error) {
	sets := []string{"updated_at = @updated_at"}
	args := pgx.NamedArgs{"owner_id": ownerID, "task_id": taskID, "updated_at": now}

	if update.Text != nil {
		sets = append(sets, "text = @text")
		args["text"] = *update.Text
	}
	if update.IsComplete != nil {
		sets = append(sets, "is_complete = @is_complete")
		args["is_complete"] = *update.IsComplete
	}

	q := `UPDATE tasks SET ` + strings.Join(sets, ", ") +
		` WHERE owner_id = @owner_id AND task_id = @task_id RETURNING ` + columns

	rows, err := s.pool.Query(ctx, q, args)
	if err != nil {
		return tasksrepo.Task{}, translate(err)
	}

	task, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[tasksrepo.Task])
	if err != nil {
		return tasksrepo.Task{}, translate(err)
	}
	return task, nil
}

func (s *Store) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	const q = `DELETE FROM tasks WHERE owner_id = @owner_id AND task_id = @task_id`

	tag, err := s.pool.Exec(ctx, q, pgx.NamedArgs{"owner_id": ownerID, "task_id": taskID})
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func translate(err error) error {
	err = postgresdb.HandlePgError(err)
	switch {
	case errors.Is(err, postgresdb.ErrDBNotFound):
		return repositories.ErrNotFound
	case errors.Is(err, postgresdb.ErrDBDuplicatedEntry):
		return repositories.ErrAlreadyExists
	}
	return err
}
