// Package commands implements the tooling subcommands.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/jrazmi/todolist/app/todo/config"
	"github.com/jrazmi/todolist/sdk/logger"
)

// Migrate applies pending migrations to the configured database.
func Migrate(ctx context.Context, log *logger.Logger, prefix string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	db, err := config.OpenDatastore(prefix, log)
	if err != nil {
		return err
	}
	defer db.Close()

	log.InfoContext(ctx, "migration started", "driver", db.Driver, "step", "checking database status")

	if err := db.StatusCheck(ctx); err != nil {
		return fmt.Errorf("database status check failed: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	log.InfoContext(ctx, "migrations completed successfully")
	return nil
}

// Status reports whether the configured database answers.
func Status(ctx context.Context, log *logger.Logger, prefix string) error {
	db, err := config.OpenDatastore(prefix, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.StatusCheck(ctx); err != nil {
		return fmt.Errorf("database status check failed: %w", err)
	}

	log.InfoContext(ctx, "database reachable", "driver", db.Driver)
	return nil
}
