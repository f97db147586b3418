// Package sqlite accesses the workflow service's embedded SQLite store.
// The store is created and migrated by the service itself; this adapter
// only reads and writes the user_api_keys table through the TokenStore port.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a single connection to the service's store. The writer is limited
// to one connection to avoid "database is locked" errors against a store the
// service may hold open concurrently. The journal mode is left alone: the
// store belongs to the service, not to this engine.
type DB struct {
	Conn *sql.DB
	path string
}

// NewDB opens the service's store file with a busy timeout and foreign keys
// enabled. The file must already exist; a missing store means the service
// never booted, which is an operator error this engine cannot recover from.
func NewDB(storePath string) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)",
		storePath,
	)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}

	return &DB{Conn: conn, path: storePath}, nil
}

// Close closes the store connection.
func (db *DB) Close() error {
	if err := db.Conn.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
