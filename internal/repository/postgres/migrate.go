package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const prefixPlaceholder = "{{prefix}}"

// Migration is one embedded schema step with its rollback.
type Migration struct {
	Version string // file name without the .up.sql suffix
	Up      string
	Down    string
}

// LoadMigrations returns the embedded migrations in version order with the
// table prefix substituted.
func LoadMigrations(prefix string) ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	byVersion := make(map[string]*Migration)
	for _, entry := range entries {
		name := entry.Name()
		var version string
		var up bool
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			version, up = strings.TrimSuffix(name, ".up.sql"), true
		case strings.HasSuffix(name, ".down.sql"):
			version = strings.TrimSuffix(name, ".down.sql")
		default:
			continue
		}

		contents, err := migrationFiles.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		sql := strings.ReplaceAll(string(contents), prefixPlaceholder, prefix)

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version}
			byVersion[version] = m
		}
		if up {
			m.Up = sql
		} else {
			m.Down = sql
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" {
			return nil, fmt.Errorf("migration %s has no up script", m.Version)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// ApplyMigrations runs every embedded migration not yet recorded in the
// prefixed schema_migrations table, each in its own transaction.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, prefix string) ([]string, error) {
	migrations, err := LoadMigrations(prefix)
	if err != nil {
		return nil, err
	}

	table := prefix + "schema_migrations"
	if err := ensureMigrationsTable(ctx, pool, table); err != nil {
		return nil, err
	}

	var applied []string
	for _, m := range migrations {
		done, err := isMigrated(ctx, pool, table, m.Version)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}

		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.Up); err != nil {
				return fmt.Errorf("execute migration %s: %w", m.Version, err)
			}
			recordSQL := fmt.Sprintf(`INSERT INTO %s (version) VALUES ($1)`, table)
			if _, err := tx.Exec(ctx, recordSQL, m.Version); err != nil {
				return fmt.Errorf("record migration %s: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return applied, err
		}
		applied = append(applied, m.Version)
	}

	return applied, nil
}

// RollbackMigrations runs every recorded migration's down script, newest first.
func RollbackMigrations(ctx context.Context, pool *pgxpool.Pool, prefix string) error {
	migrations, err := LoadMigrations(prefix)
	if err != nil {
		return err
	}

	table := prefix + "schema_migrations"
	if err := ensureMigrationsTable(ctx, pool, table); err != nil {
		return err
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		done, err := isMigrated(ctx, pool, table, m.Version)
		if err != nil {
			return err
		}
		if !done || m.Down == "" {
			continue
		}

		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.Down); err != nil {
				return fmt.Errorf("rollback migration %s: %w", m.Version, err)
			}
			deleteSQL := fmt.Sprintf(`DELETE FROM %s WHERE version = $1`, table)
			if _, err := tx.Exec(ctx, deleteSQL, m.Version); err != nil {
				return fmt.Errorf("unrecord migration %s: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureMigrationsTable(ctx context.Context, pool *pgxpool.Pool, table string) error {
	_, err := pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, table))
	if err != nil {
		return fmt.Errorf("ensure %s: %w", table, err)
	}
	return nil
}

func isMigrated(ctx context.Context, pool *pgxpool.Pool, table, version string) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE version = $1)`, table)
	if err := pool.QueryRow(ctx, query, version).Scan(&exists); err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	return exists, nil
}
