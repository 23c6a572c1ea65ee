package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	ownership "github.com/goliatone/go-ownership"
	persistence "github.com/goliatone/go-persistence-bun"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const migrationsDir = "data/sql/migrations"

// Migrator is the part of a go-persistence-bun client that applies SQL
// migrations.
type Migrator interface {
	RegisterSQLMigrations(migrations ...fs.FS) *persistence.Migrations
	Migrate(ctx context.Context) error
}

// NormalizeDialect maps driver and dialect names onto DialectPostgres or
// DialectSQLite.
func NormalizeDialect(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pg", "pgx":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("migrations: unsupported dialect %q", name)
	}
}

// Source returns the embedded migration directory for dialect. Postgres files
// live at the root of data/sql/migrations, sqlite files in its sqlite/ child.
func Source(dialect string) (fs.FS, error) {
	normalized, err := NormalizeDialect(dialect)
	if err != nil {
		return nil, err
	}
	dir := migrationsDir
	if normalized == DialectSQLite {
		dir += "/sqlite"
	}
	fsys, err := fs.Sub(ownership.GetMigrationsFS(), dir)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve %s: %w", dir, err)
	}
	if _, err := Versions(fsys); err != nil {
		return nil, fmt.Errorf("migrations: %s: %w", normalized, err)
	}
	return fsys, nil
}

// Versions lists the migration names in fsys, in apply order. Every
// <name>.up.sql must ship with a <name>.down.sql.
func Versions(fsys fs.FS) ([]string, error) {
	ups, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}
	if len(ups) == 0 {
		return nil, fmt.Errorf("no *.up.sql files")
	}
	versions := make([]string, 0, len(ups))
	for _, up := range ups {
		name := strings.TrimSuffix(up, ".up.sql")
		if _, err := fs.Stat(fsys, name+".down.sql"); err != nil {
			return nil, fmt.Errorf("%s has no down migration", up)
		}
		versions = append(versions, name)
	}
	sort.Strings(versions)
	return versions, nil
}

// Apply registers the ownership migrations for dialect on m and runs them.
func Apply(ctx context.Context, m Migrator, dialect string) error {
	if m == nil {
		return fmt.Errorf("migrations: migrator is required")
	}
	fsys, err := Source(dialect)
	if err != nil {
		return err
	}
	m.RegisterSQLMigrations(fsys)
	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("migrations: apply %s: %w", dialect, err)
	}
	return nil
}
