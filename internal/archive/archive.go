// Package archive writes completed exchanges to a local SQLite database for
// audit. It is write-only: live sessions are never restored from it, so the
// in-memory-only session model holds across restarts.
package archive

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Archive is a write-only transcript log.
type Archive struct {
	mu     sync.Mutex
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the archive database at path.
func Open(path string, logger *slog.Logger) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createSessionsTable := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at DATETIME
	);`

	createExchangesTable := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		user_text TEXT,
		assistant_text TEXT,
		provider TEXT,
		severity TEXT,
		timestamp DATETIME,
		FOREIGN KEY(session_id) REFERENCES sessions(id)
	);`

	if _, err := db.Exec(createSessionsTable); err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}
	if _, err := db.Exec(createExchangesTable); err != nil {
		return nil, fmt.Errorf("failed to create exchanges table: %w", err)
	}

	return &Archive{db: db, logger: logger}, nil
}

// RecordExchange appends one completed exchange for a session.
func (a *Archive) RecordExchange(sessionID, userText, assistantText, provider, severity string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT OR IGNORE INTO sessions (id, created_at) VALUES (?, ?)",
		sessionID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}

	_, err = tx.Exec(
		"INSERT INTO exchanges (session_id, user_text, assistant_text, provider, severity, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		sessionID, userText, assistantText, provider, severity, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to record exchange: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	a.logger.Info("exchange archived", "session_id", sessionID, "provider", provider, "severity", severity)
	return nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
