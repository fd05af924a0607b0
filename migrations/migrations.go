// Package migrations applies ordered .sql migration files to a database at
// most once each, recording applied files in a schema_migrations table.
package migrations

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const migrationSchema = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	name TEXT PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL
);
`

const isAppliedSql = `
SELECT COUNT(*) FROM schema_migrations WHERE name = $1;
`

const recordAppliedSql = `
INSERT INTO schema_migrations (name, applied_at) VALUES ($1, $2);
`

// Apply executes every .sql file under root in migrationFS, in lexical order,
// skipping files that have already been applied. Each migration runs in its
// own transaction together with its bookkeeping row, so a failed migration
// leaves the database at the last fully applied file.
func Apply(db *sqlx.DB, migrationFS fs.FS, root string) error {
	if root == "" {
		root = "."
	}

	entries, err := fs.ReadDir(migrationFS, root)
	if err != nil {
		return fmt.Errorf("failed to read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := db.Exec(migrationSchema); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	for _, file := range files {
		var count int
		if err := db.Get(&count, isAppliedSql, file); err != nil {
			return fmt.Errorf("failed to check migration %s: %w", file, err)
		}
		if count > 0 {
			continue
		}

		path := file
		if root != "." {
			path = root + "/" + file
		}
		content, err := fs.ReadFile(migrationFS, path)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			continue
		}

		if err := applyOne(db, file, string(content)); err != nil {
			return err
		}
	}

	return nil
}

// Applied returns the names of all migrations recorded as applied, sorted.
func Applied(db *sqlx.DB) ([]string, error) {
	if _, err := db.Exec(migrationSchema); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	names := []string{}
	err := db.Select(&names, "SELECT name FROM schema_migrations ORDER BY name;")
	if err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	return names, nil
}

func applyOne(db *sqlx.DB, name string, content string) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(content); err != nil {
		return fmt.Errorf("failed to apply migration %s: %w", name, err)
	}
	if _, err := tx.Exec(recordAppliedSql, name, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", name, err)
	}
	return tx.Commit()
}
