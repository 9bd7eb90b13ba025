package sqlitedb

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Migrate applies the numbered .sql files under dir whose version is above
// the one recorded in schema_version. The version is the file name's numeric
// prefix, so 003_add_index.sql is version 3.
func Migrate(ctx context.Context, log *slog.Logger, db *sqlx.DB, migrations fs.FS, dir string) error {
	const createVersion = `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`
	if _, err := db.ExecContext(ctx, createVersion); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var current int
	if err := db.GetContext(ctx, &current, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	files, err := versionedFiles(migrations, dir)
	if err != nil {
		return err
	}

	for _, f := range files {
		if f.version <= current {
			continue
		}

		content, err := fs.ReadFile(migrations, path.Join(dir, f.name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", f.name, err)
		}

		if err := apply(ctx, db, f.version, string(content)); err != nil {
			return fmt.Errorf("applying migration v%d: %w", f.version, err)
		}
		log.DebugContext(ctx, "migration applied", "version", f.version, "file", f.name)
	}

	return nil
}

func apply(ctx context.Context, db *sqlx.DB, version int, sql string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, sql); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("record version: %w", err)
	}

	return tx.Commit()
}

type versionedFile struct {
	version int
	name    string
}

func versionedFiles(migrations fs.FS, dir string) ([]versionedFile, error) {
	entries, err := fs.ReadDir(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	var files []versionedFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			return nil, fmt.Errorf("migration %s has no version prefix", e.Name())
		}
		v, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %s: bad version prefix: %w", e.Name(), err)
		}
		files = append(files, versionedFile{version: v, name: e.Name()})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}
