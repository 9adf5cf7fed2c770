package assistant

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// History persists the conversation transcript in SQLite so past answers
// about a file survive restarts.
type History struct {
	db *sql.DB
}

// Exchange is one question/answer pair about a file.
type Exchange struct {
	ID       int64
	Path     string
	Question string
	Answer   string
	AskedAt  time.Time
}

// OpenHistory opens (or creates) the history database.
func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS exchanges (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			asked_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_exchanges_path ON exchanges(path, asked_at DESC);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history table: %w", err)
	}

	return &History{db: db}, nil
}

// Append records one exchange.
func (h *History) Append(ctx context.Context, path, question, answer string) error {
	_, err := h.db.ExecContext(ctx,
		"INSERT INTO exchanges (path, question, answer, asked_at) VALUES (?, ?, ?, ?)",
		path, question, answer, time.Now())
	if err != nil {
		return fmt.Errorf("recording exchange: %w", err)
	}
	return nil
}

// Recent returns up to limit exchanges for a path, newest first.
func (h *History) Recent(ctx context.Context, path string, limit int) ([]Exchange, error) {
	rows, err := h.db.QueryContext(ctx,
		"SELECT id, path, question, answer, asked_at FROM exchanges WHERE path = ? ORDER BY asked_at DESC, id DESC LIMIT ?",
		path, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var e Exchange
		if err := rows.Scan(&e.ID, &e.Path, &e.Question, &e.Answer, &e.AskedAt); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the history database.
func (h *History) Close() error { return h.db.Close() }
