// Package sqlitedb opens sqlx handles over the pure Go SQLite driver. It backs
// local development and the repository tests.
package sqlitedb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jrazmi/todolist/sdk/environment"
)

// Set of error variables for CRUD operations.
var (
	ErrDBDuplicatedEntry = errors.New("duplicated entry")
	ErrForeignKey        = errors.New("foreign key violation")
)

// Options represents the exportable database configuration.
type Options struct {
	Path string `env:"SQLITE_PATH" default:"todolist.db"`
}

// NewFromEnv opens the database named by <prefix>_SQLITE_PATH.
func NewFromEnv(prefix string) (*sqlx.DB, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing sqlite config: %w", err)
	}
	return Open(cfg.Path)
}

// Open opens (or creates) the database at path with WAL and foreign keys
// enabled. ":memory:" gives a private in-memory database.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every connection to :memory: is a separate database, and WAL writers
	// serialize anyway.
	db.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"}
	if !strings.Contains(path, ":memory:") {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	return db, nil
}

// StatusCheck returns nil if it can successfully talk to the database.
func StatusCheck(ctx context.Context, db *sqlx.DB) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second)
		defer cancel()
	}

	return db.PingContext(ctx)
}

// HandleError converts SQLite constraint errors to the package errors.
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ErrDBDuplicatedEntry
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return ErrForeignKey
		}
		// Primary code only when extended codes are off.
		if serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			msg := serr.Error()
			switch {
			case strings.Contains(msg, "UNIQUE"):
				return ErrDBDuplicatedEntry
			case strings.Contains(msg, "FOREIGN KEY"):
				return ErrForeignKey
			}
		}
	}

	return err
}
