// Package usersrepo stores user accounts.
package usersrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jrazmi/todolist/core/scaffolding/ids"
	"github.com/jrazmi/todolist/sdk/logger"
)

// Storer is the storage behind the repository. Implementations return
// repositories.ErrNotFound for unknown users and repositories.ErrAlreadyExists
// for a taken email.
type Storer interface {
	Create(ctx context.Context, user User) error
	Get(ctx context.Context, userID uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}

// Repository provides access to user storage.
type Repository struct {
	log    *logger.Logger
	storer Storer
}

// NewRepository creates a new User repository
func NewRepository(log *logger.Logger, storer Storer) *Repository {
	return &Repository{
		log:    log,
		storer: storer,
	}
}

func (r *Repository) Create(ctx context.Context, input CreateUser) (User, error) {
	email, err := NormalizeEmail(input.Email)
	if err != nil {
		return User{}, err
	}

	userID, err := ids.New()
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	user := User{
		UserID:       userID,
		Email:        email,
		PasswordHash: input.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := r.storer.Create(ctx, user); err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}

	r.log.InfoContext(ctx, "user created", "user_id", userID)
	return user, nil
}

func (r *Repository) Get(ctx context.Context, userID uuid.UUID) (User, error) {
	user, err := r.storer.Get(ctx, userID)
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return User{}, err
	}

	user, err := r.storer.GetByEmail(ctx, email)
	if err != nil {
		return User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}
