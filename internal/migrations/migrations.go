// Package migrations carries the embedded schema for the postgres and sqlite
// store drivers. Every statement is idempotent, so running them again is safe.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed postgres/*.sql sqlite/*.sql
var schemaFS embed.FS

// RunPostgres applies the postgres schema in file order.
func RunPostgres(ctx context.Context, db *sql.DB) error {
	return run(ctx, db, "postgres")
}

// RunSQLite applies the sqlite schema in file order.
func RunSQLite(ctx context.Context, db *sql.DB) error {
	return run(ctx, db, "sqlite")
}

// Files lists the migration files for dialect, in the order they are applied.
func Files(dialect string) ([]string, error) {
	entries, err := fs.ReadDir(schemaFS, dialect)
	if err != nil {
		return nil, fmt.Errorf("read %s migrations: %w", dialect, err)
	}
	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func run(ctx context.Context, db *sql.DB, dialect string) error {
	files, err := Files(dialect)
	if err != nil {
		return err
	}
	for _, file := range files {
		body, err := schemaFS.ReadFile(dialect + "/" + file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}
