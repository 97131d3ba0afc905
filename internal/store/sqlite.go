// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Opens the database, enables WAL, and creates the schema on first use

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Every pooled connection to :memory: would see its own empty database
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS menu_items (
			id              TEXT PRIMARY KEY,
			name            TEXT NOT NULL,
			description     TEXT NOT NULL DEFAULT '',
			price           REAL NOT NULL,
			category        TEXT NOT NULL,
			is_best_selling INTEGER NOT NULL DEFAULT 0,
			image_url       TEXT NOT NULL DEFAULT '',
			ingredients     TEXT NOT NULL DEFAULT '[]',
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_menu_items_category ON menu_items(category);

		CREATE TABLE IF NOT EXISTS reservations (
			id               TEXT PRIMARY KEY,
			customer_name    TEXT NOT NULL DEFAULT '',
			party_size       INTEGER NOT NULL,
			date             TEXT NOT NULL,
			time             TEXT NOT NULL,
			special_requests TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL,
			created_at       TEXT NOT NULL,

			CHECK (party_size > 0)
		);

		CREATE INDEX IF NOT EXISTS idx_reservations_date ON reservations(date, time);

		CREATE TABLE IF NOT EXISTS tool_calls (
			id           TEXT PRIMARY KEY,
			tool_call_id TEXT NOT NULL,
			agent_type   TEXT NOT NULL,
			tool_name    TEXT NOT NULL,
			kind         TEXT NOT NULL,
			category     TEXT NOT NULL DEFAULT '',
			error        TEXT NOT NULL DEFAULT '',
			content      TEXT NOT NULL,
			level        TEXT NOT NULL DEFAULT '',
			duration_ms  INTEGER NOT NULL,
			created_at   TEXT NOT NULL,

			CHECK (kind IN ('tool_response', 'tool_error'))
		);

		CREATE INDEX IF NOT EXISTS idx_tool_calls_created ON tool_calls(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_tool_calls_agent ON tool_calls(agent_type, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_tool_calls_call_id ON tool_calls(tool_call_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Ping verifies the database is reachable
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// timeLayout is fixed width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
