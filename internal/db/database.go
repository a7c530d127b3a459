package db

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when no row matches a lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID is returned when inserting a report whose id already exists.
	ErrDuplicateID = errors.New("duplicate report id")
	// ErrUserExists is returned when registering an email that is already taken.
	ErrUserExists = errors.New("user already exists")
)

type Connection struct {
	*sql.DB
}

// NewConnection creates and initializes a new database connection with schema
func NewConnection(dbPath string) (*Connection, error) {
	db, err := sql.Open("sqlite", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
    CREATE TABLE IF NOT EXISTS reports (
        id TEXT PRIMARY KEY,
        url TEXT NOT NULL,
        original_input TEXT NOT NULL,
        status TEXT NOT NULL,
        created_at INTEGER NOT NULL,
        performance INTEGER NOT NULL,
        accessibility INTEGER NOT NULL,
        best_practices INTEGER NOT NULL,
        seo INTEGER NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_reports_url ON reports(url, created_at);
    CREATE TABLE IF NOT EXISTS issues (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        report_id TEXT NOT NULL,
        seq INTEGER NOT NULL,
        rule_id TEXT NOT NULL,
        title TEXT NOT NULL,
        description TEXT NOT NULL,
        impact TEXT NOT NULL,
        wcag_criteria TEXT NOT NULL,
        affected_elements TEXT NOT NULL,
        recommendation TEXT NOT NULL,
        FOREIGN KEY(report_id) REFERENCES reports(id) ON DELETE CASCADE
    );
    CREATE TABLE IF NOT EXISTS users (
        email TEXT PRIMARY KEY,
        password_hash TEXT NOT NULL
    );`

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Connection{db}, nil
}

// ClearAllData removes all data from the database tables
func (c *Connection) ClearAllData() error {
	_, err := c.Exec("DELETE FROM issues; DELETE FROM reports; DELETE FROM users;")
	return err
}
