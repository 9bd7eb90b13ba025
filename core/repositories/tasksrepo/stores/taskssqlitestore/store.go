// Package taskssqlitestore implements tasksrepo.Storer on SQLite.
package taskssqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jrazmi/todolist/core/repositories"
	"github.com/jrazmi/todolist/core/repositories/tasksrepo"
	"github.com/jrazmi/todolist/infrastructure/sqlitedb"
	"github.com/jrazmi/todolist/sdk/logger"
)

const columns = "task_id, owner_id, text, is_complete, created_at, updated_at"

// Store provides database access for Task.
type Store struct {
	log *logger.Logger
	db  *sqlx.DB
}

// NewStore creates a new Task store
func NewStore(log *logger.Logger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

func (s *Store) Create(ctx context.Context, task tasksrepo.Task) error {
	const q = `
		INSERT INTO tasks (task_id, owner_id, text, is_complete, created_at, updated_at)
		VALUES (:task_id, :owner_id, :text, :is_complete, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, task); err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, ownerID, taskID uuid.UUID) (tasksrepo.Task, error) {
	q := `SELECT ` + columns + ` FROM tasks WHERE owner_id = ? AND task_id = ?`

	var task tasksrepo.Task
	if err := s.db.GetContext(ctx, &task, q, ownerID, taskID); err != nil {
		return tasksrepo.Task{}, translate(err)
	}
	return task, nil
}

func (s *Store) List(ctx context.Context, ownerID uuid.UUID, from *uuid.UUID, limit int) ([]tasksrepo.Task, error) {
	var buf strings.Builder
	buf.WriteString(`SELECT ` + columns + ` FROM tasks WHERE owner_id = ?`)
	args := []any{ownerID}

	// Canonical UUID text sorts like the UUID bytes.
	if from != nil {
		buf.WriteString(` AND task_id <= ?`)
		args = append(args, *from)
	}
	buf.WriteString(` ORDER BY task_id DESC LIMIT ?`)
	args = append(args, limit)

	tasks := []tasksrepo.Task{}
	if err := s.db.SelectContext(ctx, &tasks, buf.String(), args...); err != nil {
		return nil, translate(err)
	}
	return tasks, nil
}

func (s *Store) Update(ctx context.Context, ownerID, taskID uuid.UUID, update tasksrepo.UpdateTask, now time.Time) (tasksrepo.Task, error) {
	sets := []string{"updated_at = ?"}
	args := []any{now}

	if update.Text != nil {
		sets = append(sets, "text = ?")
		args = append(args, *update.Text)
	}
	if update.IsComplete != nil {
		sets = append(sets, "is_complete = ?")
		args = append(args, *update.IsComplete)
	}
	args = append(args, ownerID, taskID)

	q := `UPDATE tasks SET ` + strings.Join(sets, ", ") +
		` WHERE owner_id = ? AND task_id = ? RETURNING ` + columns

	var task tasksrepo.Task
	if err := s.db.GetContext(ctx, &task, q, args...); err != nil {
		return tasksrepo.Task{}, translate(err)
	}
	return task, nil
}

func (s *Store) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE owner_id = ? AND task_id = ?`, ownerID, taskID)
	if err != nil {
		return translate(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repositories.ErrNotFound
	}
	err = sqlitedb.HandleError(err)
	if errors.Is(err, sqlitedb.ErrDBDuplicatedEntry) {
		return repositories.ErrAlreadyExists
	}
	return err
}
