// Package migrations applies the embedded schema files in name order.
// Each file is recorded in schema_migrations once applied.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"
)

//go:embed *.sql
var files embed.FS

const migrationsTable = "schema_migrations"

// Up applies every embedded migration that has not been recorded yet.
func Up(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("db is required")
	}
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return err
	}

	names, err := Names()
	if err != nil {
		return err
	}
	for _, name := range names {
		applied, err := isApplied(ctx, db, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		body, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		// MySQL commits DDL implicitly, so statements run one by one and
		// the file is recorded only after all of them succeed.
		for _, stmt := range Statements(string(body)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil && !isIgnorableMigrationError(err) {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
		}
		if _, err := db.ExecContext(ctx,
			`INSERT IGNORE INTO `+migrationsTable+` (filename) VALUES (?)`, name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}
	return nil
}

// Names lists the embedded migration files in apply order.
func Names() ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list embedded migrations: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Statements splits a migration file on ';' and drops empty statements.
func Statements(body string) []string {
	var out []string
	for _, part := range strings.Split(body, ";") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	const query = `
CREATE TABLE IF NOT EXISTS ` + migrationsTable + ` (
	filename   VARCHAR(255) NOT NULL PRIMARY KEY,
	applied_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure migration table %s: %w", migrationsTable, err)
	}
	return nil
}

func isApplied(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists bool
	if err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+migrationsTable+` WHERE filename = ?)`, name,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check migration %s: %w", name, err)
	}
	return exists, nil
}

func isIgnorableMigrationError(err error) bool {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return false
	}
	switch myErr.Number {
	case 1050, // table already exists
		1060, // duplicate column name
		1061: // duplicate key name
		return true
	default:
		return false
	}
}
