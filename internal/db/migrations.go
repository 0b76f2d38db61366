package db

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
)

const migrationsTable = `CREATE TABLE IF NOT EXISTS _migrations (
	filename   TEXT PRIMARY KEY,
	applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
)`

// Migrate applies every *.sql file under migrations/ in migrationFS that has
// not been applied yet, in lexical order, each in its own transaction.
func Migrate(database *sql.DB, migrationFS fs.FS) error {
	if _, err := database.Exec(migrationsTable); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	names, err := migrationFiles(migrationFS)
	if err != nil {
		return err
	}
	done, err := AppliedMigrations(database)
	if err != nil {
		return err
	}

	for _, name := range names {
		if slices.Contains(done, name) {
			continue
		}
		content, err := fs.ReadFile(migrationFS, path.Join("migrations", name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := applyMigration(database, name, string(content)); err != nil {
			return err
		}
		slog.Info("applied migration", "file", name)
	}
	return nil
}

// AppliedMigrations lists the applied migration files in order.
func AppliedMigrations(database *sql.DB) ([]string, error) {
	rows, err := database.Query(`SELECT filename FROM _migrations ORDER BY filename`)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func migrationFiles(migrationFS fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func applyMigration(database *sql.DB, name, content string) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("begin tx for %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(content); err != nil {
		return fmt.Errorf("exec migration %s: %w", name, err)
	}
	if _, err := tx.Exec(`INSERT INTO _migrations (filename) VALUES (?)`, name); err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}
