package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"time"
)

// ErrNoDownMigration is returned by Rollback when the newest applied
// migration has no down file, or no longer exists in the source.
var ErrNoDownMigration = errors.New("database: migration cannot be rolled back")

// migrationFile matches YYYYMMDD_HHMMSS_name.up.sql and .down.sql.
var migrationFile = regexp.MustCompile(`^(\d{8}_\d{6})_(.+)\.(up|down)\.sql$`)

// Migration is one versioned schema change read from the source.
type Migration struct {
	Version string // YYYYMMDD_HHMMSS from the filename
	Name    string
	Up      string
	Down    string // empty when there is no down file
}

// MigrationStatus describes one migration known to the source or recorded
// in schema_migrations. Name is empty for versions recorded but missing
// from the source.
type MigrationStatus struct {
	Version   string
	Name      string
	Applied   bool
	AppliedAt time.Time
}

// Migrate applies every pending migration, oldest first, each in its own
// transaction. A failing migration is rolled back and stops the run; those
// before it stay applied, so running Migrate again resumes from it.
func (db *DB) Migrate(ctx context.Context) error {
	statuses, source, err := db.migrationState(ctx)
	if err != nil {
		return err
	}
	for _, st := range statuses {
		m, known := source[st.Version]
		if st.Applied || !known {
			continue
		}
		err := db.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.Up); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
				m.Version, time.Now().UTC().Format(time.RFC3339))
			return err
		})
		if err != nil {
			return fmt.Errorf("applying migration %s (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// Rollback reverts the newest applied migration and returns it. ok is
// false when nothing is applied.
func (db *DB) Rollback(ctx context.Context) (m Migration, ok bool, err error) {
	statuses, source, err := db.migrationState(ctx)
	if err != nil {
		return Migration{}, false, err
	}

	var latest *MigrationStatus
	for i := range statuses {
		if statuses[i].Applied {
			latest = &statuses[i]
		}
	}
	if latest == nil {
		return Migration{}, false, nil
	}

	m, known := source[latest.Version]
	if !known || m.Down == "" {
		return Migration{}, false, fmt.Errorf("%w: %s", ErrNoDownMigration, latest.Version)
	}
	err = db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, m.Down); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", m.Version)
		return err
	})
	if err != nil {
		return Migration{}, false, fmt.Errorf("rolling back %s (%s): %w", m.Version, m.Name, err)
	}
	return m, true, nil
}

// MigrationStatus lists every migration, applied or pending, by version.
func (db *DB) MigrationStatus(ctx context.Context) ([]MigrationStatus, error) {
	statuses, _, err := db.migrationState(ctx)
	return statuses, err
}

// migrationState merges the source with schema_migrations.
func (db *DB) migrationState(ctx context.Context) ([]MigrationStatus, map[string]Migration, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`); err != nil {
		return nil, nil, fmt.Errorf("creating migrations table: %w", err)
	}

	source, err := db.readMigrations()
	if err != nil {
		return nil, nil, err
	}
	byVersion := make(map[string]*MigrationStatus, len(source))
	for v, m := range source {
		byVersion[v] = &MigrationStatus{Version: v, Name: m.Name}
	}

	rows, err := db.QueryContext(ctx, "SELECT version, applied_at FROM schema_migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("querying migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var version, appliedAt string
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, nil, fmt.Errorf("scanning migration row: %w", err)
		}
		st, ok := byVersion[version]
		if !ok {
			st = &MigrationStatus{Version: version}
			byVersion[version] = st
		}
		st.Applied = true
		st.AppliedAt, _ = time.Parse(time.RFC3339, appliedAt) //nolint:errcheck // Written by Migrate
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating migrations: %w", err)
	}

	statuses := make([]MigrationStatus, 0, len(byVersion))
	for _, st := range byVersion {
		statuses = append(statuses, *st)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Version < statuses[j].Version })
	return statuses, source, nil
}

// readMigrations loads the source by version. A down file without its up
// file is ignored, as is anything not named like a migration.
func (db *DB) readMigrations() (map[string]Migration, error) {
	out := make(map[string]Migration)
	if db.migrations == nil {
		return out, nil
	}

	entries, err := fs.ReadDir(db.migrations, db.migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", db.migrationsDir, err)
	}

	downs := make(map[string]string)
	for _, entry := range entries {
		version, name, up, ok := parseMigrationFile(entry.Name())
		if !ok || entry.IsDir() {
			continue
		}
		body, err := fs.ReadFile(db.migrations, path.Join(db.migrationsDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		if !up {
			downs[version] = string(body)
			continue
		}
		out[version] = Migration{Version: version, Name: name, Up: string(body)}
	}
	for version, m := range out {
		m.Down = downs[version]
		out[version] = m
	}
	return out, nil
}

func parseMigrationFile(filename string) (version, name string, up, ok bool) {
	m := migrationFile.FindStringSubmatch(filename)
	if m == nil {
		return "", "", false, false
	}
	return m[1], m[2], m[3] == "up", true
}

// inTx runs fn in a transaction, committing only if it succeeds.
func (db *DB) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}
