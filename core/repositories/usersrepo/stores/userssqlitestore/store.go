// Package userssqlitestore implements usersrepo.Storer on SQLite.
package userssqlitestore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jrazmi/todolist/core/repositories"
	"github.com/jrazmi/todolist/core/repositories/usersrepo"
	"github.com/jrazmi/todolist/infrastructure/sqlitedb"
	"github.com/jrazmi/todolist/sdk/logger"
)

const columns = "user_id, email, password_hash, created_at, updated_at"

// Store provides database access for User.
type Store struct {
	log *logger.Logger
	db  *sqlx.DB
}

func NewStore(log *logger.Logger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

func (s *Store) Create(ctx context.Context, user usersrepo.User) error {
	const q = `
		INSERT INTO users (user_id, email, password_hash, created_at, updated_at)
		VALUES (:user_id, :email, :password_hash, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, user); err != nil {
		return translate(err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, userID uuid.UUID) (usersrepo.User, error) {
	var user usersrepo.User
	if err := s.db.GetContext(ctx, &user, `SELECT `+columns+` FROM users WHERE user_id = ?`, userID); err != nil {
		return usersrepo.User{}, translate(err)
	}
	return user, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (usersrepo.User, error) {
	var user usersrepo.User
	if err := s.db.GetContext(ctx, &user, `SELECT `+columns+` FROM users WHERE email = ?`, email); err != nil {
		return usersrepo.User{}, translate(err)
	}
	return user, nil
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
