// Package migrations exposes the connector parameter table migrations for
// the supported SQL dialects.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	brevo "github.com/goliatone/go-brevo"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	// SourceLabel names this module's migrations next to other sources
	// registered on the same persistence client.
	SourceLabel = "go-brevo"

	postgresDir = "data/sql/migrations"
	sqliteDir   = "data/sql/migrations/sqlite"
)

// Set is the ordered migration files of one dialect.
type Set struct {
	Dialect string
	Path    string
	FS      fs.FS
	Up      []string
}

type RegisterFunc func(ctx context.Context, set Set) error

// For returns the embedded migration set of dialect. Every up file must
// have its down counterpart.
func For(dialect string) (Set, error) {
	return load(brevo.GetMigrationsFS(), dialect)
}

// Register hands the dialect's migrations to fn, usually a persistence
// client's RegisterSQLMigrations.
func Register(ctx context.Context, dialect string, fn RegisterFunc) (Set, error) {
	if fn == nil {
		return Set{}, fmt.Errorf("migrations: register function is required")
	}
	set, err := For(dialect)
	if err != nil {
		return Set{}, err
	}
	if err := fn(ctx, set); err != nil {
		return set, fmt.Errorf("migrations: register %s (%s): %w", set.Dialect, set.Path, err)
	}
	return set, nil
}

// NormalizeDialect accepts driver names too ("sqlite3", "pgx").
func NormalizeDialect(dialect string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case DialectPostgres, "postgresql", "pg", "pgx":
		return DialectPostgres, nil
	case DialectSQLite, "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
}

func load(root fs.FS, dialect string) (Set, error) {
	normalized, err := NormalizeDialect(dialect)
	if err != nil {
		return Set{}, err
	}
	dir := postgresDir
	if normalized == DialectSQLite {
		dir = sqliteDir
	}
	sub, err := fs.Sub(root, dir)
	if err != nil {
		return Set{}, fmt.Errorf("migrations: resolve %s: %w", dir, err)
	}

	up, err := fs.Glob(sub, "*.up.sql")
	if err != nil {
		return Set{}, fmt.Errorf("migrations: glob %s: %w", dir, err)
	}
	if len(up) == 0 {
		return Set{}, fmt.Errorf("migrations: %s has no *.up.sql files", dir)
	}
	slices.Sort(up)
	for _, name := range up {
		down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
		if _, err := fs.Stat(sub, down); err != nil {
			return Set{}, fmt.Errorf("migrations: %s/%s has no rollback %s", dir, name, down)
		}
	}
	return Set{Dialect: normalized, Path: dir, FS: sub, Up: up}, nil
}
