package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrSchemaTooNew is returned when a store's recorded schema version exceeds
// what this build supports. Opening fails fast rather than misinterpreting
// unknown columns.
var ErrSchemaTooNew = errors.New("store schema is newer than this build supports")

// migration is one forward schema change. Migrations are applied in version
// order inside transactions and recorded in the schema_migrations ledger;
// reapplying an already-applied migration is a no-op.
type migration struct {
	version int
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS results (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				rule        INTEGER NOT NULL,
				seed        INTEGER NOT NULL,
				generations INTEGER NOT NULL,
				score       REAL    NOT NULL,
				created_at  TEXT    NOT NULL
			);`,
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_results_key
				ON results(rule, seed, generations);`,
		},
	},
	{
		version: 2,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS runs (
				id              TEXT PRIMARY KEY,
				strategy        TEXT    NOT NULL,
				seed            INTEGER NOT NULL,
				last_generation INTEGER NOT NULL,
				updated_at      TEXT    NOT NULL
			);`,
		},
	},
	{
		version: 3,
		stmts: []string{
			`ALTER TABLE results ADD COLUMN outcome TEXT NOT NULL DEFAULT '';`,
		},
	},
}

// schemaVersion is the newest migration this build knows how to apply.
const schemaVersion = 3

// migrate brings the database to the current schema version.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	);`); err != nil {
		return fmt.Errorf("create migrations ledger: %w", err)
	}

	current, err := appliedVersion(db)
	if err != nil {
		return err
	}
	if current > schemaVersion {
		return fmt.Errorf("%w: on-disk version %d, supported %d", ErrSchemaTooNew, current, schemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
	}
	return nil
}

func appliedVersion(db *sql.DB) (int, error) {
	var version sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(version.Int64), nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO schema_migrations(version, applied_at) VALUES(?, ?)`,
		m.version, nowUTC(),
	); err != nil {
		return err
	}
	return tx.Commit()
}
