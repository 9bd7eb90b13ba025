// Package userspgxstore implements usersrepo.Storer on PostgreSQL.
package userspgxstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/todolist/core/repositories"
	"github.com/jrazmi/todolist/core/repositories/usersrepo"
	"github.com/jrazmi/todolist/infrastructure/postgresdb"
	"github.com/jrazmi/todolist/sdk/logger"
)

const columns = "user_id, email, password_hash, created_at, updated_at"

// Store provides database access for User.
type Store struct {
	log  *logger.Logger
	pool *postgresdb.Pool
}

func NewStore(log *logger.Logger, pool *postgresdb.Pool) *Store {
	return &Store{
		log:  log,
		pool: pool,
	}
}

func (s *Store) Create(ctx context.Context, user usersrepo.User) error {
	const q = `
		INSERT INTO users (user_id, email, password_hash, created_at, updated_at)
		VALUES (@user_id, @email, @password_hash, @created_at, @updated_at)`

	_, err := s.pool.Exec(ctx, q, pgx.NamedArgs{
		"user_id":       user.UserID,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	})
	return translate(err)
}

func (s *Store) Get(ctx context.Context, userID uuid.UUID) (usersrepo.User, error) {
	return s.queryOne(ctx, `SELECT `+columns+` FROM users WHERE user_id = @user_id`,
		pgx.NamedArgs{"user_id": userID})
}

func (s *Store) GetByEmail(ctx context.Context, email string) (usersrepo.User, error) {
	return s.queryOne(ctx, `SELECT `+columns+` FROM users WHERE email = @email`,
		pgx.NamedArgs{"email": email})
}

func (s *Store) queryOne(ctx context.Context, q string, args pgx.NamedArgs) (usersrepo.User, error) {
	rows, err := s.pool.Query(ctx, q, args)
	if err != nil {
		return usersrepo.User{}, translate(err)
	}

	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[usersrepo.User])
	if err != nil {
		return usersrepo.User{}, translate(err)
	}
	return user, nil
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
