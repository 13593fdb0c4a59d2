package repository

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// DB wraps the local job store connection
type DB struct {
	*sql.DB
	Driver string
}

// NewDB opens the store named by databaseURL and applies the schema.
// Accepted forms: sqlite://path, :memory:, file:..., postgres://...
func NewDB(databaseURL string) (*DB, error) {
	driver, dsn, err := parseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one connection keeps :memory: databases shared and serializes writers
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	db := &DB{DB: conn, Driver: driver}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func parseDatabaseURL(databaseURL string) (string, string, error) {
	switch {
	case databaseURL == ":memory:":
		return DriverSQLite, databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite url %q has no path", databaseURL)
		}
		return DriverSQLite, path, nil
	case strings.HasPrefix(databaseURL, "file:"):
		return DriverSQLite, databaseURL, nil
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return DriverPostgres, databaseURL, nil
	}
	return "", "", fmt.Errorf("unsupported database url %q", databaseURL)
}

func (db *DB) migrate() error {
	for _, stmt := range db.schema() {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (db *DB) schema() []string {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	timestamp := "TIMESTAMP"
	if db.Driver == DriverPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
		timestamp = "TIMESTAMPTZ"
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			config_json TEXT NOT NULL,
			logs_json TEXT NOT NULL,
			artifacts_path TEXT,
			created_at ` + timestamp + ` NOT NULL,
			updated_at ` + timestamp + `,
			observed_at ` + timestamp + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS job_events (
			id ` + serial + `,
			job_id TEXT NOT NULL,
			at ` + timestamp + ` NOT NULL,
			from_status TEXT,
			to_status TEXT NOT NULL,
			reason TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS job_events_job_id ON job_events (job_id)`,
		`CREATE TABLE IF NOT EXISTS job_artifacts (
			id ` + serial + `,
			job_id TEXT NOT NULL,
			type TEXT NOT NULL,
			uri TEXT NOT NULL,
			created_at ` + timestamp + ` NOT NULL,
			UNIQUE (job_id, type, uri)
		)`,
	}
}
