package commands

import (
	"context"
	"fmt"

	"github.com/jrazmi/todolist/app/todo/config"
	"github.com/jrazmi/todolist/core/auth"
	"github.com/jrazmi/todolist/core/repositories/usersrepo"
	"github.com/jrazmi/todolist/core/scaffolding/ids"
	"github.com/jrazmi/todolist/sdk/logger"
)

// CreateUser registers an account without going through the API. The
// database must already be migrated.
func CreateUser(ctx context.Context, log *logger.Logger, prefix, email, password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	db, err := config.OpenDatastore(prefix, log)
	if err != nil {
		return "", err
	}
	defer db.Close()

	user, err := db.Repositories(log).Users.Create(ctx, usersrepo.CreateUser{
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	return ids.Encode(user.UserID), nil
}
