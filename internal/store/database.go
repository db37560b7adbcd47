package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS auction_snapshot (
	position      INTEGER PRIMARY KEY,
	id            TEXT NOT NULL UNIQUE,
	title         TEXT NOT NULL,
	start_price   REAL NOT NULL,
	end_time      TIMESTAMP NOT NULL,
	image_url     TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	creator_id    TEXT NOT NULL DEFAULT '',
	creator_name  TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL,
	current_bid   REAL,
	winner_user   TEXT,
	winner_amount REAL
);`

// Database wraps the embedded snapshot cache connection
type Database struct {
	db *sqlx.DB
}

// NewDatabase opens (and if needed initializes) the snapshot cache at
// path.
func NewDatabase(path string) (*Database, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot cache: %w", err)
	}
	// modernc sqlite serializes access through a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init snapshot schema: %w", err)
	}
	return &Database{db: db}, nil
}

// Close closes the cache connection
func (d *Database) Close() error {
	return d.db.Close()
}

// GetDB returns the sqlx.DB instance
func (d *Database) GetDB() *sqlx.DB {
	return d.db
}
