package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"pagepack/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps the shared SQLite database holding page metadata, weekly packs,
// and the domain rebuild lock table.
type DB struct {
	sql *sql.DB
}

// DefaultPath returns the database location: the working directory so the
// file is stable across go run / go build, falling back to the executable
// directory for deployed builds.
func DefaultPath() string {
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "pagepack.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "pagepack.db")
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Try to read current version
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS metadata_store (
				domain          TEXT NOT NULL,
				url             TEXT NOT NULL,
				pack_hash       TEXT,
				etag            TEXT,
				last_modified   TEXT,
				text_hash       TEXT,
				last_checked_at REAL,
				updated_at      REAL NOT NULL,
				PRIMARY KEY (domain, url)
			);

			CREATE TABLE IF NOT EXISTS pack_store (
				domain     TEXT PRIMARY KEY,
				pack_json  TEXT NOT NULL,
				pack_hash  TEXT NOT NULL,
				fetched_at REAL NOT NULL,
				expires_at REAL NOT NULL
			);

			CREATE TABLE IF NOT EXISTS domain_lock (
				domain    TEXT PRIMARY KEY,
				locked_at REAL NOT NULL
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	return nil
}

// Ping verifies the connection is still usable (used by the status endpoint).
func (d *DB) Ping() error {
	return d.sql.Ping()
}
