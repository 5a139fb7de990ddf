// Package manifest keeps a small sqlite record of pipeline progress:
// which month stages have finished and which timesteps have been merged.
// Reruns consult it to skip work that is already done.
package manifest

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Stage names recorded per month.
const (
	StageDownloaded = "downloaded"
	StageSplit      = "split"
)

const schema = `
CREATE TABLE IF NOT EXISTS stages (
	month        TEXT NOT NULL,
	stage        TEXT NOT NULL,
	path         TEXT,
	completed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (month, stage)
);
CREATE TABLE IF NOT EXISTS merges (
	key       TEXT PRIMARY KEY,
	variables INTEGER NOT NULL,
	path      TEXT,
	merged_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// DB wraps the manifest database connection.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the manifest at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping manifest: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create manifest schema: %w", err)
	}
	return &DB{db}, nil
}

// StageDone reports whether a month stage has been recorded.
func (d *DB) StageDone(month, stage string) (bool, error) {
	var n int
	err := d.QueryRow(`SELECT COUNT(*) FROM stages WHERE month = ? AND stage = ?`, month, stage).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkStage records a finished month stage, replacing any earlier record.
func (d *DB) MarkStage(month, stage, path string) error {
	_, err := d.Exec(`INSERT OR REPLACE INTO stages (month, stage, path) VALUES (?, ?, ?)`, month, stage, path)
	return err
}

// RecordMerge records one merged timestep.
func (d *DB) RecordMerge(key string, variables int, path string) error {
	_, err := d.Exec(`INSERT OR REPLACE INTO merges (key, variables, path) VALUES (?, ?, ?)`, key, variables, path)
	return err
}

// MergedKeys lists the recorded merge keys in key order.
func (d *DB) MergedKeys() ([]string, error) {
	rows, err := d.Query(`SELECT key FROM merges ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
