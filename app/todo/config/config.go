// Package config wires the todo service's storage and shared settings.
package config

import (
	"context"
	"fmt"

	"github.com/jrazmi/todolist/core/repositories/tasksrepo"
	"github.com/jrazmi/todolist/core/repositories/tasksrepo/stores/taskspgxstore"
	"github.com/jrazmi/todolist/core/repositories/tasksrepo/stores/taskssqlitestore"
	"github.com/jrazmi/todolist/core/repositories/usersrepo"
	"github.com/jrazmi/todolist/core/repositories/usersrepo/stores/userspgxstore"
	"github.com/jrazmi/todolist/core/repositories/usersrepo/stores/userssqlitestore"
	"github.com/jrazmi/todolist/infrastructure/postgresdb"
	"github.com/jrazmi/todolist/infrastructure/sqlitedb"
	"github.com/jrazmi/todolist/schema"
	"github.com/jrazmi/todolist/sdk/environment"
	"github.com/jrazmi/todolist/sdk/logger"
)

// site wide globals.
const (
	ApiRoute = "/api/v1"
)

// Supported values of DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Database selects the storage backend.
type Database struct {
	Driver string `env:"DB_DRIVER" default:"sqlite"`
}

// Repositories represents the repositories this instance of todo needs.
type Repositories struct {
	Tasks *tasksrepo.Repository
	Users *usersrepo.Repository
}

// Datastore is an open database together with the stores built on it.
type Datastore struct {
	Driver string
	Tasks  tasksrepo.Storer
	Users  usersrepo.Storer

	migrate func(ctx context.Context) error
	check   func(ctx context.Context) error
	close   func()
}

// OpenDatastore connects to the database named by <prefix>_DB_DRIVER and its
// driver specific variables.
func OpenDatastore(prefix string, log *logger.Logger) (*Datastore, error) {
	var cfg Database
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	switch cfg.Driver {
	case DriverPostgres:
		pool, err := postgresdb.NewFromEnv(prefix, postgresdb.WithLogger(log.Logger))
		if err != nil {
			return nil, fmt.Errorf("configuring postgres support: %w", err)
		}
		return &Datastore{
			Driver: cfg.Driver,
			Tasks:  taskspgxstore.NewStore(log, pool),
			Users:  userspgxstore.NewStore(log, pool),
			migrate: func(ctx context.Context) error {
				return postgresdb.Migrate(ctx, log.Logger, pool, schema.MigrationsFS, schema.PostgresDir)
			},
			check: func(ctx context.Context) error {
				return postgresdb.StatusCheck(ctx, pool)
			},
			close: pool.Close,
		}, nil

	case DriverSQLite:
		db, err := sqlitedb.NewFromEnv(prefix)
		if err != nil {
			return nil, fmt.Errorf("configuring sqlite support: %w", err)
		}
		return &Datastore{
			Driver: cfg.Driver,
			Tasks:  taskssqlitestore.NewStore(log, db),
			Users:  userssqlitestore.NewStore(log, db),
			migrate: func(ctx context.Context) error {
				return sqlitedb.Migrate(ctx, log.Logger, db, schema.MigrationsFS, schema.SQLiteDir)
			},
			check: func(ctx context.Context) error {
				return sqlitedb.StatusCheck(ctx, db)
			},
			close: func() { db.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Migrate applies any pending schema migrations.
func (d *Datastore) Migrate(ctx context.Context) error {
	return d.migrate(ctx)
}

// StatusCheck returns nil if the database answers.
func (d *Datastore) StatusCheck(ctx context.Context) error {
	return d.check(ctx)
}

func (d *Datastore) Close() {
	d.close()
}

// Repositories builds the repositories over the datastore's stores.
func (d *Datastore) Repositories(log *logger.Logger) Repositories {
	return Repositories{
		Tasks: tasksrepo.NewRepository(log, d.Tasks),
		Users: usersrepo.NewRepository(log, d.Users),
	}
}

// Todo is the overall configuration for the todo application.
type Todo struct {
	Build        string
	Logger       *logger.Logger
	Repositories Repositories
	StatusCheck  func(ctx context.Context) error
}
